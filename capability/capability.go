package capability

import (
	"context"
	"strings"
)

// Kind names the class of a remote capability.
type Kind string

const (
	KindGenerate Kind = "generate"
	KindExecute  Kind = "execute"
	KindDelegate Kind = "delegate"
)

// GenerationRequest is one LLM invocation. Stop sequences make the generator
// halt before emitting any listed substring.
type GenerationRequest struct {
	Name          string   `json:"name"`
	SystemPrompt  string   `json:"systemprompt"`
	UserPrompt    string   `json:"inputprompt"`
	StopSequences []string `json:"stop"`
}

// Clone returns a copy safe to hand to a capability while the caller keeps mutating the original.
func (r *GenerationRequest) Clone() *GenerationRequest {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.StopSequences = append([]string(nil), r.StopSequences...)
	return &cloned
}

// ToolRequest is one external tool invocation.
type ToolRequest struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// DelegateRequest is a sub-agent invocation.
type DelegateRequest struct {
	Name    string `json:"name"`
	Input   string `json:"input"`
	Session string `json:"session,omitempty"`
}

// ActionReply is the uniform response envelope for all capability kinds.
type ActionReply struct {
	Output string `json:"output"`
}

// AgentRequest is the top-level entry contract of an agent.
// Session selects the conversation memory key; empty means the default key.
type AgentRequest struct {
	Name    string `json:"name"`
	Input   string `json:"input"`
	Session string `json:"session,omitempty"`
}

// Client invokes named capabilities synchronously. Failures are reported as
// *errors.CapabilityError. Retries and timeouts belong to the transport.
type Client interface {
	Generate(ctx context.Context, req *GenerationRequest) (*ActionReply, error)
	Execute(ctx context.Context, req *ToolRequest) (*ActionReply, error)
	Delegate(ctx context.Context, req *DelegateRequest) (*ActionReply, error)
}

// Generator is implemented by LLM backends reachable through a Client.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req *GenerationRequest) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	return f(ctx, req)
}

// TrimAtStop cuts text at the earliest occurrence of any stop sequence.
// Backends that cannot enforce every stop sequence server-side use it so the
// generator contract holds regardless of provider limits.
func TrimAtStop(text string, stops []string) string {
	cut := len(text)
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if i := strings.Index(text, stop); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}

type callerKey struct{}

// WithCaller records the agent on whose behalf capability calls in ctx are made.
func WithCaller(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callerKey{}, name)
}

// CallerFrom returns the caller recorded by WithCaller, or "".
func CallerFrom(ctx context.Context) string {
	name, _ := ctx.Value(callerKey{}).(string)
	return name
}
