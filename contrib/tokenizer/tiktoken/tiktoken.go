package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when a model name is not known to tiktoken.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts prompt tokens for capability accounting.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer resolves name as a model first, then as an encoding.
func NewTiktokenTokenizer(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("tiktoken: unknown model or encoding %q: %w", name, err)
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Encode returns the token ids of text
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// CountTokens returns the number of tokens in text
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}

// DecodeIds maps token ids back to text
func (t *Tokenizer) DecodeIds(ids []int) string {
	return t.enc.Decode(ids)
}
