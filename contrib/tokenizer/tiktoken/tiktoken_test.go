package tiktoken

import "testing"

// The BPE ranks are fetched on first use, so these tests skip when offline.
func newTestTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := NewTiktokenTokenizer("gpt-3.5-turbo")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tok
}

func TestCountTokens(t *testing.T) {
	tok := newTestTokenizer(t)

	text := "Question: Who lived longer, Muhammad Ali or Alan Turing?"
	ids := tok.Encode(text)
	if got := tok.CountTokens(text); got != len(ids) || got == 0 {
		t.Errorf("CountTokens() = %d, want %d", got, len(ids))
	}
	if tok.CountTokens("") != 0 {
		t.Error("empty text should have no tokens")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tok := newTestTokenizer(t)

	text := "So the final answer is: Muhammad Ali"
	if got := tok.DecodeIds(tok.Encode(text)); got != text {
		t.Errorf("DecodeIds() = %q, want %q", got, text)
	}
}

func TestUnknownEncoding(t *testing.T) {
	if _, err := NewTiktokenTokenizer("no-such-encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
