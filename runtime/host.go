package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/chainsocket/agent"
	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/memory"
	"github.com/sweetpotato0/chainsocket/middleware"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
	"github.com/sweetpotato0/chainsocket/pkg/telemetry"
	"github.com/sweetpotato0/chainsocket/tool"
)

// TokenCounter counts the tokens of a prompt.
type TokenCounter interface {
	CountTokens(text string) int
}

// Host routes capability calls to the generators, tools and agents
// registered with it. It implements capability.Client.
type Host struct {
	mu         sync.RWMutex
	generators map[string]capability.Generator
	agents     map[string]agent.Agent
	closers    []func() error

	tools     *tool.Registry
	chain     *middleware.MiddlewareChain
	tracer    trace.Tracer
	tokenizer TokenCounter
	store     memory.VarStore
	logger    *slog.Logger
}

var _ capability.Client = (*Host)(nil)

// Option configures a Host
type Option func(*Host)

// WithMiddleware appends middlewares to the capability call chain
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(h *Host) {
		for _, mw := range m {
			if mw != nil {
				h.chain.Add(mw)
			}
		}
	}
}

// WithTracer sets the tracer for capability spans
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Host) {
		if tracer != nil {
			h.tracer = tracer
		}
	}
}

// WithTokenizer records prompt token counts on generate spans
func WithTokenizer(t TokenCounter) Option {
	return func(h *Host) {
		h.tokenizer = t
	}
}

// WithToolRegistry sets the registry tools are resolved from
func WithToolRegistry(r *tool.Registry) Option {
	return func(h *Host) {
		if r != nil {
			h.tools = r
		}
	}
}

// WithMemoryStore sets the store conversation agents keep transcripts in
func WithMemoryStore(s memory.VarStore) Option {
	return func(h *Host) {
		h.store = s
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHost creates an empty host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		generators: make(map[string]capability.Generator),
		agents:     make(map[string]agent.Agent),
		tools:      tool.NewRegistry(),
		chain:      middleware.NewChain(),
		tracer:     telemetry.Tracer(),
		logger:     logging.WithComponent("host"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterGenerator makes g reachable as the llm called name.
func (h *Host) RegisterGenerator(name string, g capability.Generator) error {
	if name == "" || g == nil {
		return fmt.Errorf("generator name and implementation are required: %w", errorskg.ErrInvalidInput)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.generators[name]; exists {
		return fmt.Errorf("llm %s already registered", name)
	}
	h.generators[name] = g
	return nil
}

// RegisterAgent makes a reachable as a delegate target.
func (h *Host) RegisterAgent(name string, a agent.Agent) error {
	if name == "" || a == nil {
		return fmt.Errorf("agent name and implementation are required: %w", errorskg.ErrInvalidInput)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.agents[name]; exists {
		return fmt.Errorf("agent %s already registered", name)
	}
	h.agents[name] = a
	return nil
}

// Tools returns the host's tool registry.
func (h *Host) Tools() *tool.Registry {
	return h.tools
}

// Agent returns the agent registered under name.
func (h *Host) Agent(name string) (agent.Agent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.agents[name]
	return a, ok
}

// OnClose registers fn to run when the host is closed.
func (h *Host) OnClose(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closers = append(h.closers, fn)
}

// Close closes the tool registry and everything registered with OnClose.
func (h *Host) Close() error {
	h.mu.Lock()
	closers := h.closers
	h.closers = nil
	h.mu.Unlock()

	errs := []error{h.tools.Close()}
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

// Generate runs the named llm.
func (h *Host) Generate(ctx context.Context, req *capability.GenerationRequest) (*capability.ActionReply, error) {
	if req == nil {
		return nil, unavailable(capability.KindGenerate, "", errorskg.ErrInvalidInput)
	}
	h.mu.RLock()
	g, ok := h.generators[req.Name]
	h.mu.RUnlock()

	var attrs []attribute.KeyValue
	if h.tokenizer != nil {
		attrs = append(attrs, telemetry.AttrPromptTokens.Int(h.tokenizer.CountTokens(req.SystemPrompt+req.UserPrompt)))
	}
	return h.call(ctx, capability.KindGenerate, req.Name, req.UserPrompt, ok, attrs, func(ctx context.Context) (string, error) {
		return g.Generate(ctx, req.Clone())
	})
}

// Execute runs the named tool.
func (h *Host) Execute(ctx context.Context, req *capability.ToolRequest) (*capability.ActionReply, error) {
	if req == nil {
		return nil, unavailable(capability.KindExecute, "", errorskg.ErrInvalidInput)
	}
	t, err := h.tools.Get(req.Name)
	return h.call(ctx, capability.KindExecute, req.Name, req.Input, err == nil, nil, func(ctx context.Context) (string, error) {
		return t.Execute(ctx, req.Input)
	})
}

// Delegate runs the named agent. Calls it makes carry its name as caller.
func (h *Host) Delegate(ctx context.Context, req *capability.DelegateRequest) (*capability.ActionReply, error) {
	if req == nil {
		return nil, unavailable(capability.KindDelegate, "", errorskg.ErrInvalidInput)
	}
	a, ok := h.Agent(req.Name)
	return h.call(ctx, capability.KindDelegate, req.Name, req.Input, ok, nil, func(ctx context.Context) (string, error) {
		return a.Call(capability.WithCaller(ctx, req.Name), &capability.AgentRequest{
			Name:    req.Name,
			Input:   req.Input,
			Session: req.Session,
		})
	})
}

func (h *Host) call(ctx context.Context, kind capability.Kind, name, input string, found bool, attrs []attribute.KeyValue, fn func(context.Context) (string, error)) (*capability.ActionReply, error) {
	ctx, span := telemetry.StartCapability(ctx, h.tracer, string(kind), name, capability.CallerFrom(ctx), attrs...)

	if !found {
		err := unavailable(kind, name, errorskg.ErrNotFound)
		h.logger.Warn("capability not found", "kind", kind, "name", name)
		telemetry.EndCapability(span, "", err)
		return nil, err
	}

	mctx := middleware.NewContext(ctx, kind, name, input)
	err := h.chain.Execute(mctx, func(c *middleware.Context) error {
		out, err := fn(c.Context())
		if err != nil {
			return err
		}
		c.Output = out
		return nil
	})
	if err != nil {
		err = &errorskg.CapabilityError{Kind: string(kind), Name: name, Err: err}
		telemetry.EndCapability(span, "", err)
		return nil, err
	}
	telemetry.EndCapability(span, mctx.Output, nil)
	return &capability.ActionReply{Output: mctx.Output}, nil
}

func unavailable(kind capability.Kind, name string, err error) error {
	return &errorskg.CapabilityError{Kind: string(kind), Name: name, Unavailable: true, Err: err}
}
