package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sweetpotato0/chainsocket/config"
	"github.com/sweetpotato0/chainsocket/memory/store"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// fakeOpenAI serves scripted chat completions and records the messages it received.
type fakeOpenAI struct {
	mu       sync.Mutex
	replies  []string
	requests [][]chatMessage
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []chatMessage `json:"messages"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, body.Messages)
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-3.5-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": reply},
		}},
	})
}

func startOpenAI(t *testing.T, replies ...string) (*fakeOpenAI, string) {
	t.Helper()
	f := &fakeOpenAI{replies: replies}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func startSerpAPI(t *testing.T, answer string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"answer_box": map[string]any{"answer": answer}})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

var testSecrets = config.Secrets{OpenAIAPIKey: "test", GoogleAPIKey: "test"}

func TestBuildSelfAskEndToEnd(t *testing.T) {
	_, llmURL := startOpenAI(t,
		"Yes.\nFollow up: How old was Muhammad Ali when he died?",
		"So the final answer is: Muhammad Ali",
	)
	app := &config.App{
		Entry: "researcher",
		LLMs:  []config.Plugin{{Name: "openai", Plugin: "openai", Options: map[string]string{"base_url": llmURL}}},
		Tools: []config.Plugin{{Name: "google_search", Plugin: "serpapi", Options: map[string]string{
			"url":                 startSerpAPI(t, "74 years"),
			"requests_per_second": "0",
		}}},
		Agents: []config.Agent{{Name: "researcher", Plugin: "self-ask", LLMs: []string{"openai"}, Tools: []string{"google_search"}}},
	}

	h, err := Build(context.Background(), app, testSecrets)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer h.Close()

	result, err := NewAgentExecutor(h, app.Entry).Execute(context.Background(), &Request{
		SessionID: "s1",
		Input:     "Who lived longer, Muhammad Ali or Alan Turing?",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Output != "Muhammad Ali" {
		t.Errorf("expected Muhammad Ali, got %q", result.Output)
	}
}

func TestBuildConversationKeepsHistory(t *testing.T) {
	fake, llmURL := startOpenAI(t, "Hello Ada.", "Your name is Ada.")
	app := &config.App{
		Entry: "chat",
		LLMs:  []config.Plugin{{Name: "openai", Plugin: "openai", Options: map[string]string{"base_url": llmURL}}},
		Agents: []config.Agent{{
			Name:   "chat",
			Plugin: "conversation",
			Prompt: "You are a helpful assistant.",
			LLMs:   []string{"openai"},
		}},
	}

	h, err := Build(context.Background(), app, testSecrets, WithMemoryStore(store.NewInMemoryStore()))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer h.Close()

	exec := NewAgentExecutor(h, app.Entry)
	for _, input := range []string{"Hi, I am Ada.", "What is my name?"} {
		if _, err := exec.Execute(context.Background(), &Request{SessionID: "s1", Input: input}); err != nil {
			t.Fatalf("Execute(%q) failed: %v", input, err)
		}
	}

	if len(fake.requests) != 2 {
		t.Fatalf("expected 2 llm calls, got %d", len(fake.requests))
	}
	system := fake.requests[1][0]
	if system.Role != "system" || !strings.Contains(system.Content, "Human: Hi, I am Ada.\nAssistant: Hello Ada.") {
		t.Errorf("second turn should carry the first in its system prompt, got %q", system.Content)
	}
}

func TestBuildSkipsBrokenPlugins(t *testing.T) {
	_, llmURL := startOpenAI(t, "So the final answer is: ok")
	app := &config.App{
		Entry: "researcher",
		LLMs: []config.Plugin{
			{Name: "openai", Plugin: "openai", Options: map[string]string{"base_url": llmURL}},
			{Name: "gemini", Plugin: "gemini"},
			{Name: "mystery", Plugin: "unknown"},
		},
		Tools: []config.Plugin{{Name: "files", Plugin: "mcp"}},
		Agents: []config.Agent{
			{Name: "researcher", Plugin: "self-ask", LLMs: []string{"openai"}},
			{Name: "other", Plugin: "unknown"},
		},
	}

	h, err := Build(context.Background(), app, testSecrets)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer h.Close()

	if _, ok := h.Agent("other"); ok {
		t.Error("unknown agent plugin should be skipped")
	}
	if len(h.Tools().List()) != 0 {
		t.Error("mcp tool without endpoint should be skipped")
	}
}

func TestBuildFailsWithoutEntryAgent(t *testing.T) {
	app := &config.App{
		Entry:  "chat",
		Agents: []config.Agent{{Name: "chat", Plugin: "unknown"}},
	}
	if _, err := Build(context.Background(), app, testSecrets); err == nil {
		t.Error("expected error when the entry agent cannot be loaded")
	}
}
