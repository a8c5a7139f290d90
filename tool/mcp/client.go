package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
)

// ErrClientClosed is returned by calls made after Close.
var ErrClientClosed = errors.New("mcp client closed")

// terminateWait is how long a command server gets to exit before it is killed.
const terminateWait = 5 * time.Second

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	logger *slog.Logger
	args   []string
}

// WithLogger sets the logger receiving server log messages and stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithCommandArgs appends arguments for a command server.
func WithCommandArgs(args ...string) Option {
	return func(cfg *clientConfig) {
		cfg.args = append(cfg.args, args...)
	}
}

// Client is a connected MCP session whose tools chainsocket can call.
type Client struct {
	session *sdkmcp.ClientSession
	logger  *slog.Logger

	toolsChanged chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewStdioClient starts command and talks MCP over its stdin and stdout.
func NewStdioClient(ctx context.Context, command string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("mcp: command cannot be empty")
	}
	cfg := newConfig(opts)

	cmd := exec.Command(command, cfg.args...)
	cmd.Stderr = stderrLogger{logger: cfg.logger}
	return connect(ctx, cfg, &sdkmcp.CommandTransport{Command: cmd, TerminateDuration: terminateWait})
}

// NewStreamableClient connects to an MCP server over streamable HTTP.
func NewStreamableClient(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("mcp: endpoint cannot be empty")
	}
	return connect(ctx, newConfig(opts), &sdkmcp.StreamableClientTransport{Endpoint: endpoint})
}

// NewClient connects over an existing transport, such as an in-memory pipe
// to an embedded server.
func NewClient(ctx context.Context, transport sdkmcp.Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("mcp: transport cannot be nil")
	}
	return connect(ctx, newConfig(opts), transport)
}

func connect(ctx context.Context, cfg clientConfig, transport sdkmcp.Transport) (*Client, error) {
	c := &Client{
		logger:       cfg.logger,
		toolsChanged: make(chan struct{}, 1),
	}

	sdkClient := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "chainsocket", Version: "1.0.0"}, &sdkmcp.ClientOptions{
		ToolListChangedHandler: func(context.Context, *sdkmcp.ToolListChangedRequest) {
			select {
			case c.toolsChanged <- struct{}{}:
			default:
			}
		},
		LoggingMessageHandler: func(_ context.Context, req *sdkmcp.LoggingMessageRequest) {
			if req != nil && req.Params != nil {
				c.logger.Debug("mcp server log", "level", req.Params.Level, "data", req.Params.Data)
			}
		},
	})

	session, err := sdkClient.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect failed: %w", err)
	}
	c.session = session
	go c.watch()
	return c, nil
}

// ServerName returns the name the server announced during initialization.
func (c *Client) ServerName() string {
	if res := c.session.InitializeResult(); res != nil && res.ServerInfo != nil {
		return res.ServerInfo.Name
	}
	return ""
}

// ToolsChanged fires when the server announces a new tool list.
func (c *Client) ToolsChanged() <-chan struct{} {
	return c.toolsChanged
}

// Close ends the session. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// watch logs an abnormal end of the session and marks the client closed.
func (c *Client) watch() {
	err := c.session.Wait()
	if err != nil && !errors.Is(err, sdkmcp.ErrConnectionClosed) && !c.isClosed() {
		c.logger.Warn("mcp session ended", "error", err)
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func newConfig(opts []Option) clientConfig {
	cfg := clientConfig{logger: logging.WithComponent("mcp")}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type stderrLogger struct {
	logger *slog.Logger
}

func (w stderrLogger) Write(p []byte) (int, error) {
	if line := strings.TrimSpace(string(p)); line != "" {
		w.logger.Debug("mcp server stderr", "line", line)
	}
	return len(p), nil
}
