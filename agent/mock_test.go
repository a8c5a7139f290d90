package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// scriptedClient replays canned generate replies and records every call.
// Once the script is exhausted the last reply repeats.
type scriptedClient struct {
	mu          sync.Mutex
	generations []string
	generateErr error
	execute     func(req *capability.ToolRequest) (*capability.ActionReply, error)
	delegate    func(req *capability.DelegateRequest) (*capability.ActionReply, error)

	generateCalls []*capability.GenerationRequest
	executeCalls  []*capability.ToolRequest
	delegateCalls []*capability.DelegateRequest
}

func (c *scriptedClient) Generate(ctx context.Context, req *capability.GenerationRequest) (*capability.ActionReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generateCalls = append(c.generateCalls, req.Clone())
	if c.generateErr != nil {
		return nil, c.generateErr
	}
	i := len(c.generateCalls) - 1
	if i >= len(c.generations) {
		i = len(c.generations) - 1
	}
	return &capability.ActionReply{Output: c.generations[i]}, nil
}

func (c *scriptedClient) Execute(ctx context.Context, req *capability.ToolRequest) (*capability.ActionReply, error) {
	c.mu.Lock()
	c.executeCalls = append(c.executeCalls, req)
	execute := c.execute
	c.mu.Unlock()

	if execute == nil {
		return &capability.ActionReply{}, nil
	}
	return execute(req)
}

func (c *scriptedClient) Delegate(ctx context.Context, req *capability.DelegateRequest) (*capability.ActionReply, error) {
	c.mu.Lock()
	c.delegateCalls = append(c.delegateCalls, req)
	delegate := c.delegate
	c.mu.Unlock()

	if delegate == nil {
		return &capability.ActionReply{}, nil
	}
	return delegate(req)
}

func toolReply(output string) func(*capability.ToolRequest) (*capability.ActionReply, error) {
	return func(*capability.ToolRequest) (*capability.ActionReply, error) {
		return &capability.ActionReply{Output: output}, nil
	}
}

// failingTool fails its first n calls, then answers. A negative n fails forever.
func failingTool(n int, answer string) func(*capability.ToolRequest) (*capability.ActionReply, error) {
	var calls int
	return func(req *capability.ToolRequest) (*capability.ActionReply, error) {
		calls++
		if n < 0 || calls <= n {
			return nil, &errorskg.CapabilityError{Kind: "execute", Name: req.Name, Err: errors.New("no answer")}
		}
		return &capability.ActionReply{Output: answer}, nil
	}
}
