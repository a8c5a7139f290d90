package capability

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerationRequestWireNames(t *testing.T) {
	req := &GenerationRequest{
		Name:          "openai",
		SystemPrompt:  "sys",
		UserPrompt:    "user",
		StopSequences: []string{"\nIntermediate answer:"},
	}

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{`"name"`, `"systemprompt"`, `"inputprompt"`, `"stop"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("expected field %s in %s", field, raw)
		}
	}
}

func TestGenerationRequestClone(t *testing.T) {
	req := &GenerationRequest{Name: "llm", StopSequences: []string{"a"}}
	cloned := req.Clone()
	req.StopSequences[0] = "b"

	if cloned.StopSequences[0] != "a" {
		t.Errorf("clone shares stop sequences with original")
	}

	var nilReq *GenerationRequest
	if nilReq.Clone() != nil {
		t.Errorf("expected nil clone of nil request")
	}
}

func TestTrimAtStop(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stops []string
		want  string
	}{
		{"no stops", "a\nb", nil, "a\nb"},
		{"newline", "Ali.\nextra", []string{"\n"}, "Ali."},
		{"earliest wins", "x So the final answer is: y\nFollow up: z", []string{"\nFollow up:", "So the final answer is:"}, "x "},
		{"absent", "plain", []string{"\n"}, "plain"},
		{"empty stop ignored", "abc", []string{""}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAtStop(tt.text, tt.stops); got != tt.want {
				t.Errorf("TrimAtStop() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaller(t *testing.T) {
	ctx := context.Background()
	if got := CallerFrom(ctx); got != "" {
		t.Errorf("expected no caller, got %q", got)
	}
	ctx = WithCaller(ctx, "self-ask")
	if got := CallerFrom(ctx); got != "self-ask" {
		t.Errorf("expected caller self-ask, got %q", got)
	}
}
