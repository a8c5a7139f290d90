package memory

import (
	"context"
	"strings"
)

// DefaultKey is the variable name used when a caller supplies no session.
const DefaultKey = "memory"

// DefaultPreamble seeds a transcript that has never been written.
const DefaultPreamble = "\nHere is the history of the chat with the human you are assisting\n"

// VarStore persists named byte blobs. Get reports ok=false for a key that was
// never set. Implementations do not serialize access to a single key; callers
// that share a key across sessions must do that themselves.
type VarStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key returns the variable name for a session. Named sessions live under
// the "memory:" prefix so no session name collides with DefaultKey.
func Key(session string) string {
	if strings.TrimSpace(session) == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + session
}

// AppendTurn returns transcript extended by one human/assistant exchange.
func AppendTurn(transcript, input, output string) string {
	var b strings.Builder
	b.Grow(len(transcript) + len(input) + len(output) + 20)
	b.WriteString(transcript)
	b.WriteString("Human: ")
	b.WriteString(input)
	b.WriteString("\nAssistant: ")
	b.WriteString(output)
	b.WriteString("\n")
	return b.String()
}
