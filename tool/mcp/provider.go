package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sweetpotato0/chainsocket/tool"
)

// Transport names how a Provider reaches its MCP server.
type Transport string

const (
	// TransportStreamable connects to an HTTP endpoint.
	TransportStreamable Transport = "streamable"
	// TransportCommand starts a local server process and talks over stdio.
	TransportCommand Transport = "command"
)

// Config describes an MCP server to load tools from.
type Config struct {
	// Transport defaults to command when Command is set, streamable otherwise.
	Transport Transport
	Endpoint  string
	Command   string
	Args      []string
}

// Provider feeds a tool.Registry with the tools of one MCP server and keeps
// them current when the server's tool list changes.
type Provider struct {
	client *Client
}

var _ tool.Provider = (*Provider)(nil)

// NewProvider connects to the server described by cfg and checks that its
// tools can be listed.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	transport := cfg.Transport
	if transport == "" {
		transport = TransportStreamable
		if cfg.Command != "" {
			transport = TransportCommand
		}
	}

	var (
		client *Client
		err    error
	)
	switch transport {
	case TransportStreamable:
		if strings.TrimSpace(cfg.Endpoint) == "" {
			return nil, errors.New("mcp: streamable transport needs an endpoint")
		}
		client, err = NewStreamableClient(ctx, cfg.Endpoint, opts...)
	case TransportCommand:
		if strings.TrimSpace(cfg.Command) == "" {
			return nil, errors.New("mcp: command transport needs a command")
		}
		client, err = NewStdioClient(ctx, cfg.Command, append(opts, WithCommandArgs(cfg.Args...))...)
	default:
		return nil, fmt.Errorf("mcp: unsupported transport %q", transport)
	}
	if err != nil {
		return nil, err
	}
	return NewProviderFromClient(ctx, client)
}

// NewProviderFromClient wraps a connected client. The client is closed if
// its tools cannot be listed.
func NewProviderFromClient(ctx context.Context, client *Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("mcp: client is nil")
	}
	if _, err := client.Tools(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Client returns the underlying MCP client.
func (p *Provider) Client() *Client { return p.client }

// Tools returns the server's current tools.
func (p *Provider) Tools(ctx context.Context) ([]*tool.Tool, error) {
	return p.client.BuildTools(ctx)
}

// ToolsChanged fires when the server announces a new tool list.
func (p *Provider) ToolsChanged() <-chan struct{} {
	return p.client.ToolsChanged()
}

// Close ends the MCP session.
func (p *Provider) Close() error {
	return p.client.Close()
}
