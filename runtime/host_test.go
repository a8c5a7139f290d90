package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sweetpotato0/chainsocket/agent"
	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/middleware"
	"github.com/sweetpotato0/chainsocket/tool"
)

type countingTokenizer struct{}

func (countingTokenizer) CountTokens(text string) int { return len(strings.Fields(text)) }

func echoGenerator(prefix string) capability.Generator {
	return capability.GeneratorFunc(func(ctx context.Context, req *capability.GenerationRequest) (string, error) {
		return prefix + req.UserPrompt, nil
	})
}

func TestHostGenerate(t *testing.T) {
	h := NewHost()
	if err := h.RegisterGenerator("openai", echoGenerator("echo:")); err != nil {
		t.Fatalf("RegisterGenerator failed: %v", err)
	}

	reply, err := h.Generate(context.Background(), &capability.GenerationRequest{Name: "openai", UserPrompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply.Output != "echo:hi" {
		t.Errorf("unexpected output %q", reply.Output)
	}

	if err := h.RegisterGenerator("openai", echoGenerator("")); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestHostUnknownCapabilityIsUnavailable(t *testing.T) {
	h := NewHost()
	ctx := context.Background()

	_, err := h.Generate(ctx, &capability.GenerationRequest{Name: "missing"})
	if !errors.Is(err, errorskg.ErrCapabilityUnavailable) {
		t.Errorf("generate: expected unavailable, got %v", err)
	}
	_, err = h.Execute(ctx, &capability.ToolRequest{Name: "missing"})
	if !errors.Is(err, errorskg.ErrCapabilityUnavailable) {
		t.Errorf("execute: expected unavailable, got %v", err)
	}
	_, err = h.Delegate(ctx, &capability.DelegateRequest{Name: "missing"})
	if !errors.Is(err, errorskg.ErrCapabilityUnavailable) {
		t.Errorf("delegate: expected unavailable, got %v", err)
	}
}

func TestHostTargetFailureIsCapabilityError(t *testing.T) {
	h := NewHost()
	boom := errors.New("quota exceeded")
	h.RegisterGenerator("openai", capability.GeneratorFunc(func(context.Context, *capability.GenerationRequest) (string, error) {
		return "", boom
	}))

	_, err := h.Generate(context.Background(), &capability.GenerationRequest{Name: "openai"})
	if !errors.Is(err, errorskg.ErrCapabilityError) {
		t.Fatalf("expected capability error, got %v", err)
	}
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected the target's error to be kept, got %v", err)
	}
}

func TestHostExecute(t *testing.T) {
	h := NewHost()
	h.Tools().Register(&tool.Tool{
		Name: "google_search",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "answer to " + input, nil
		},
	})

	reply, err := h.Execute(context.Background(), &capability.ToolRequest{Name: "google_search", Input: "q?"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if reply.Output != "answer to q?" {
		t.Errorf("unexpected output %q", reply.Output)
	}
}

func TestHostDelegateSetsCaller(t *testing.T) {
	var caller string
	h := NewHost()
	h.RegisterGenerator("llm", capability.GeneratorFunc(func(ctx context.Context, req *capability.GenerationRequest) (string, error) {
		caller = capability.CallerFrom(ctx)
		return "ok", nil
	}))
	h.RegisterAgent("helper", agent.Func(func(ctx context.Context, req *capability.AgentRequest) (string, error) {
		reply, err := h.Generate(ctx, &capability.GenerationRequest{Name: "llm", UserPrompt: req.Input})
		if err != nil {
			return "", err
		}
		return reply.Output + " for " + req.Session, nil
	}))

	reply, err := h.Delegate(context.Background(), &capability.DelegateRequest{Name: "helper", Input: "x", Session: "s1"})
	if err != nil {
		t.Fatalf("Delegate failed: %v", err)
	}
	if reply.Output != "ok for s1" {
		t.Errorf("unexpected output %q", reply.Output)
	}
	if caller != "helper" {
		t.Errorf("expected caller helper, got %q", caller)
	}
}

func TestHostMiddlewareSeesCalls(t *testing.T) {
	var seen []string
	recorder := middleware.Func{ID: "recorder", Fn: func(ctx *middleware.Context, next middleware.Handler) error {
		err := next(ctx)
		seen = append(seen, string(ctx.Kind)+":"+ctx.Name+"="+ctx.Output)
		return err
	}}
	h := NewHost(WithMiddleware(recorder))
	h.RegisterGenerator("openai", echoGenerator(""))

	h.Generate(context.Background(), &capability.GenerationRequest{Name: "openai", UserPrompt: "hi"})
	if len(seen) != 1 || seen[0] != "generate:openai=hi" {
		t.Errorf("unexpected middleware record %v", seen)
	}
}

func TestHostMiddlewareErrorIsCapabilityError(t *testing.T) {
	deny := middleware.Func{ID: "deny", Fn: func(ctx *middleware.Context, next middleware.Handler) error {
		return errors.New("denied")
	}}
	h := NewHost(WithMiddleware(deny))
	h.RegisterGenerator("openai", echoGenerator(""))

	_, err := h.Generate(context.Background(), &capability.GenerationRequest{Name: "openai"})
	if !errors.Is(err, errorskg.ErrCapabilityError) {
		t.Errorf("expected capability error, got %v", err)
	}
}

func TestHostSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	h := NewHost(WithTracer(tp.Tracer("test")), WithTokenizer(countingTokenizer{}))
	h.RegisterGenerator("openai", echoGenerator(""))

	ctx := capability.WithCaller(context.Background(), "self-ask")
	h.Generate(ctx, &capability.GenerationRequest{Name: "openai", SystemPrompt: "a b ", UserPrompt: "c"})
	h.Execute(ctx, &capability.ToolRequest{Name: "missing"})

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "capability.generate" || spans[1].Name() != "capability.execute" {
		t.Errorf("unexpected span names %s, %s", spans[0].Name(), spans[1].Name())
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["capability.caller"].AsString() != "self-ask" {
		t.Errorf("expected caller attribute, got %v", attrs["capability.caller"])
	}
	if attrs["capability.prompt_tokens"].AsInt64() != 3 {
		t.Errorf("expected 3 prompt tokens, got %v", attrs["capability.prompt_tokens"])
	}
	if spans[1].Status().Code.String() != "Error" {
		t.Errorf("expected error status for missing tool, got %v", spans[1].Status())
	}
}

func TestHostClose(t *testing.T) {
	h := NewHost()
	var order []int
	h.OnClose(func() error { order = append(order, 1); return nil })
	h.OnClose(func() error { order = append(order, 2); return errors.New("close failed") })

	if err := h.Close(); err == nil {
		t.Error("expected close error to be reported")
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("expected closers in reverse order, got %v", order)
	}
}
