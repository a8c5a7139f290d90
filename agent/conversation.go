package agent

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/chainsocket/capability"
	"github.com/sweetpotato0/chainsocket/config"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/memory"
	"github.com/sweetpotato0/chainsocket/memory/store"
	"github.com/sweetpotato0/chainsocket/prompt"
)

// Conversation answers each turn with one generate call whose system prompt
// carries the persona prompt and the transcript of earlier turns.
//
// When the delegate value is set the turn is forwarded to that agent instead
// of the model; the transcript is kept either way.
type Conversation struct {
	client capability.Client
	values config.Values
	*settings
}

// NewConversation creates a conversation agent. Without WithMemory the
// transcript lives in process memory.
func NewConversation(client capability.Client, values config.Values, opts ...Option) *Conversation {
	c := &Conversation{
		client:   client,
		values:   values,
		settings: newSettings(opts),
	}
	if c.store == nil {
		c.store = store.NewInMemoryStore()
	}
	return c
}

// Call runs one turn and persists the extended transcript under the request's session.
func (c *Conversation) Call(ctx context.Context, req *capability.AgentRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("conversation turn: %w", errorskg.ErrInvalidInput)
	}
	delegate, delegated := c.values.Get(config.KeyDelegate)

	var persona, llm string
	if !delegated {
		var err error
		if persona, err = c.values.Require(config.KeyPrompt); err != nil {
			return "", err
		}
		if llm, err = c.values.Require(config.KeyLLMName); err != nil {
			return "", err
		}
	}
	logger := c.logger.With("agent", c.values.GetOr(config.KeyName, "conversation"))

	key := memory.Key(req.Session)
	history := c.preamble
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation memory: %w", err)
	}
	if ok {
		history = string(data)
	}

	var output string
	if delegated {
		logger.Debug("calling delegate", "delegate", delegate)
		reply, err := c.client.Delegate(ctx, &capability.DelegateRequest{
			Name:    delegate,
			Input:   req.Input,
			Session: req.Session,
		})
		if err != nil {
			return "", fmt.Errorf("conversation delegate: %w", err)
		}
		output = reply.Output
	} else {
		system, err := prompt.ConversationSystem.Render(map[string]any{"Prompt": persona, "Memory": history})
		if err != nil {
			return "", err
		}
		logger.Debug("calling llm", "llm", llm)
		reply, err := c.client.Generate(ctx, &capability.GenerationRequest{
			Name:          llm,
			SystemPrompt:  system,
			UserPrompt:    req.Input,
			StopSequences: []string{},
		})
		if err != nil {
			return "", fmt.Errorf("conversation generate: %w", err)
		}
		output = reply.Output
	}

	history = memory.AppendTurn(history, req.Input, output)
	if err := c.store.Set(ctx, key, []byte(history)); err != nil {
		return "", fmt.Errorf("failed to save conversation memory: %w", err)
	}
	return output, nil
}
