package agent

import (
	"context"
	"log/slog"

	"github.com/sweetpotato0/chainsocket/capability"
	"github.com/sweetpotato0/chainsocket/memory"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
)

// DefaultMaxIterations bounds the number of follow-up rounds of a self-ask session.
const DefaultMaxIterations = 10

// DefaultSearchTool is the tool a self-ask session consults for follow-up questions.
const DefaultSearchTool = "google_search"

// Agent is the top-level entry contract: one call returns the final answer
// or a propagated failure.
type Agent interface {
	Call(ctx context.Context, req *capability.AgentRequest) (string, error)
}

// Func adapts a function to the Agent interface.
type Func func(ctx context.Context, req *capability.AgentRequest) (string, error)

// Call calls f.
func (f Func) Call(ctx context.Context, req *capability.AgentRequest) (string, error) {
	return f(ctx, req)
}

type settings struct {
	maxIterations int
	searchTool    string
	store         memory.VarStore
	preamble      string
	logger        *slog.Logger
}

func newSettings(opts []Option) *settings {
	s := &settings{
		maxIterations: DefaultMaxIterations,
		searchTool:    DefaultSearchTool,
		preamble:      memory.DefaultPreamble,
		logger:        logging.WithComponent("agent"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option is a function that configures an agent
type Option func(*settings)

// WithMaxIterations sets the maximum number of follow-up rounds
func WithMaxIterations(max int) Option {
	return func(s *settings) {
		if max > 0 {
			s.maxIterations = max
		}
	}
}

// WithSearchTool sets the tool consulted for follow-up questions
func WithSearchTool(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.searchTool = name
		}
	}
}

// WithMemory sets the store holding conversation transcripts
func WithMemory(store memory.VarStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithPreamble sets the text seeding a new transcript
func WithPreamble(preamble string) Option {
	return func(s *settings) {
		s.preamble = preamble
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
