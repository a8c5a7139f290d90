package mcp

import (
	"context"
	"errors"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/chainsocket/tool"
)

type searchInput struct {
	Query string `json:"query" jsonschema:"the question to answer"`
}

type searchOutput struct {
	Answer string `json:"answer"`
}

// connectTestServer serves one search tool over an in-memory transport.
func connectTestServer(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "search", Version: "1.0.0"}, nil)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "web_search", Description: "answers questions"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in searchInput) (*sdkmcp.CallToolResult, searchOutput, error) {
			if in.Query == "fail?" {
				return &sdkmcp.CallToolResult{
					IsError: true,
					Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "no results"}},
				}, searchOutput{}, nil
			}
			return &sdkmcp.CallToolResult{
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "answer: " + in.Query}},
			}, searchOutput{Answer: in.Query}, nil
		})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect failed: %v", err)
	}

	client, err := NewClient(ctx, clientTransport)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestProviderTools(t *testing.T) {
	ctx := context.Background()
	client := connectTestServer(t)

	provider, err := NewProviderFromClient(ctx, client)
	if err != nil {
		t.Fatalf("NewProviderFromClient failed: %v", err)
	}

	registry := tool.NewRegistry()
	if err := registry.AddProvider(ctx, provider); err != nil {
		t.Fatalf("AddProvider failed: %v", err)
	}
	defer registry.Close()

	search, err := registry.Get("web_search")
	if err != nil {
		t.Fatalf("expected web_search tool: %v", err)
	}
	if search.InputParameter() != "query" {
		t.Errorf("expected input bound to query, got %q", search.InputParameter())
	}

	got, err := registry.Execute(ctx, "web_search", "Who founded craigslist?")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "answer: Who founded craigslist?" {
		t.Errorf("unexpected answer %q", got)
	}

	_, err = registry.Execute(ctx, "web_search", "fail?")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Message != "no results" {
		t.Errorf("expected ToolError with message, got %v", err)
	}
}

func TestClientServerName(t *testing.T) {
	client := connectTestServer(t)
	if got := client.ServerName(); got != "search" {
		t.Errorf("expected server name search, got %q", got)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := client.Call(context.Background(), "web_search", nil); !errors.Is(err, ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
}

func TestNewProviderValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewProvider(ctx, Config{Transport: TransportStreamable}); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := NewProvider(ctx, Config{Transport: TransportCommand}); err == nil {
		t.Error("expected error for missing command")
	}
	if _, err := NewProvider(ctx, Config{Transport: "carrier-pigeon", Endpoint: "x"}); err == nil {
		t.Error("expected error for unsupported transport")
	}
	if _, err := NewProviderFromClient(ctx, nil); err == nil {
		t.Error("expected error for nil client")
	}
}
