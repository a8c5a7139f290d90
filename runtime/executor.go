package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
)

// Request captures the inputs required to execute a turn.
type Request struct {
	SessionID string
	Input     string
}

// TurnResult captures the outcome of a single executor run.
type TurnResult struct {
	SessionID string
	Output    string
	Duration  time.Duration
}

// Executor defines the contract for runtime executors.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*TurnResult, error)
}

// AgentExecutor runs each turn as a delegate call to the entry agent.
type AgentExecutor struct {
	client capability.Client
	entry  string
	logger *slog.Logger
}

// NewAgentExecutor constructs an executor delegating to the agent named entry.
func NewAgentExecutor(client capability.Client, entry string) *AgentExecutor {
	if client == nil {
		panic("runtime: capability client cannot be nil")
	}
	return &AgentExecutor{
		client: client,
		entry:  entry,
		logger: logging.WithComponent("executor").With("entry", entry),
	}
}

// Execute runs one turn. The session id selects the conversation memory.
func (e *AgentExecutor) Execute(ctx context.Context, req *Request) (*TurnResult, error) {
	if req == nil {
		return nil, fmt.Errorf("runtime: request cannot be nil: %w", errorskg.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Input) == "" {
		return nil, fmt.Errorf("runtime: input cannot be empty: %w", errorskg.ErrInvalidInput)
	}

	e.logger.Info("executor running turn", "session_id", req.SessionID)
	start := time.Now()
	reply, err := e.client.Delegate(ctx, &capability.DelegateRequest{
		Name:    e.entry,
		Input:   req.Input,
		Session: req.SessionID,
	})
	if err != nil {
		e.logger.Error("executor run failed", "session_id", req.SessionID, "error", err)
		return nil, err
	}
	duration := time.Since(start)
	e.logger.Info("executor run completed", "session_id", req.SessionID, "duration_ms", duration.Milliseconds())

	return &TurnResult{
		SessionID: req.SessionID,
		Output:    reply.Output,
		Duration:  duration,
	}, nil
}
