package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweetpotato0/chainsocket/agent"
	"github.com/sweetpotato0/chainsocket/capability"
	"github.com/sweetpotato0/chainsocket/config"
	"github.com/sweetpotato0/chainsocket/contrib/provider/claude"
	"github.com/sweetpotato0/chainsocket/contrib/provider/cohere"
	"github.com/sweetpotato0/chainsocket/contrib/provider/gemini"
	"github.com/sweetpotato0/chainsocket/contrib/provider/groq"
	"github.com/sweetpotato0/chainsocket/contrib/provider/openai"
	"github.com/sweetpotato0/chainsocket/contrib/search/duckduckgo"
	"github.com/sweetpotato0/chainsocket/contrib/search/serpapi"
	"github.com/sweetpotato0/chainsocket/tool"
	"github.com/sweetpotato0/chainsocket/tool/mcp"
)

// LLMFactory creates the generator for one llm manifest entry. The returned
// close function may be nil.
type LLMFactory func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error)

// ToolFactory registers the tools of one tool manifest entry with the host.
type ToolFactory func(ctx context.Context, h *Host, p config.Plugin, secrets config.Secrets) error

// AgentFactory creates the agent for one agent manifest entry.
type AgentFactory func(h *Host, a config.Agent, secrets config.Secrets) (agent.Agent, error)

// LLMPlugins maps llm plugin names to their factories. Every factory
// accepts the model and temperature options; openai also takes base_url.
var LLMPlugins = map[string]LLMFactory{
	"openai": func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error) {
		cfg := openai.DefaultConfig().WithAPIKey(secrets.OpenAIAPIKey)
		if url := p.Options["base_url"]; url != "" {
			cfg.WithBaseURL(url)
		}
		if err := llmOptions(p, &cfg.Model, &cfg.Temperature, cfg.APIKey); err != nil {
			return nil, nil, err
		}
		return openai.New(cfg), nil, nil
	},
	"groq": func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error) {
		cfg := groq.DefaultConfig(secrets.GroqAPIKey)
		if err := llmOptions(p, &cfg.Model, &cfg.Temperature, cfg.APIKey); err != nil {
			return nil, nil, err
		}
		return groq.New(cfg), nil, nil
	},
	"claude": func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error) {
		cfg := claude.DefaultConfig(secrets.AnthropicAPIKey, p.Options["base_url"])
		if err := llmOptions(p, &cfg.Model, &cfg.Temperature, cfg.APIKey); err != nil {
			return nil, nil, err
		}
		return claude.New(cfg), nil, nil
	},
	"gemini": func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error) {
		cfg := gemini.DefaultConfig(secrets.GeminiAPIKey)
		temperature := float64(cfg.Temperature)
		if err := llmOptions(p, &cfg.Model, &temperature, cfg.APIKey); err != nil {
			return nil, nil, err
		}
		cfg.Temperature = float32(temperature)
		provider, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return provider, provider.Close, nil
	},
	"cohere": func(ctx context.Context, p config.Plugin, secrets config.Secrets) (capability.Generator, func() error, error) {
		cfg := cohere.DefaultConfig(secrets.CohereAPIKey)
		if err := llmOptions(p, &cfg.Model, &cfg.Temperature, cfg.APIKey); err != nil {
			return nil, nil, err
		}
		return cohere.New(cfg), nil, nil
	},
}

// llmOptions applies the model and temperature options of p and validates
// the result.
func llmOptions(p config.Plugin, model *string, temperature *float64, apiKey string) error {
	if m := p.Options["model"]; m != "" {
		*model = m
	}
	if t := p.Options["temperature"]; t != "" {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", t, err)
		}
		*temperature = v
	}
	return config.ValidateLLMConfig(apiKey, *model, *temperature)
}

// ToolPlugins maps tool plugin names to their factories.
var ToolPlugins = map[string]ToolFactory{
	"serpapi": func(ctx context.Context, h *Host, p config.Plugin, secrets config.Secrets) error {
		cfg := serpapi.DefaultConfig(secrets.GoogleAPIKey)
		if url := p.Options["url"]; url != "" {
			cfg.URL = url
		}
		if rps := p.Options["requests_per_second"]; rps != "" {
			v, err := strconv.ParseFloat(rps, 64)
			if err != nil {
				return fmt.Errorf("invalid requests_per_second %q: %w", rps, err)
			}
			cfg.RequestsPerSecond = v
		}
		return registerAs(h, p.Name, serpapi.New(cfg).Tool())
	},
	"duckduckgo": func(ctx context.Context, h *Host, p config.Plugin, secrets config.Secrets) error {
		cfg := duckduckgo.DefaultConfig()
		if url := p.Options["url"]; url != "" {
			cfg.URL = url
		}
		return registerAs(h, p.Name, duckduckgo.New(cfg).Tool())
	},
	"mcp": func(ctx context.Context, h *Host, p config.Plugin, secrets config.Secrets) error {
		provider, err := mcp.NewProvider(ctx, mcp.Config{
			Transport: mcp.Transport(p.Options["transport"]),
			Endpoint:  p.Options["endpoint"],
			Command:   p.Options["command"],
			Args:      strings.Fields(p.Options["args"]),
		}, mcp.WithLogger(h.logger.With("mcp", p.Name)))
		if err != nil {
			return err
		}
		return h.Tools().AddProvider(ctx, provider)
	},
}

// AgentPlugins maps agent plugin names to their factories.
var AgentPlugins = map[string]AgentFactory{
	"self-ask": func(h *Host, a config.Agent, secrets config.Secrets) (agent.Agent, error) {
		opts := []agent.Option{
			agent.WithMaxIterations(a.MaxIterations),
			agent.WithLogger(h.logger.With("agent", a.Name)),
		}
		if len(a.Tools) > 0 {
			opts = append(opts, agent.WithSearchTool(a.Tools[0]))
		}
		return agent.NewSelfAsk(h, a.Values(secrets), opts...), nil
	},
	"conversation": func(h *Host, a config.Agent, secrets config.Secrets) (agent.Agent, error) {
		return agent.NewConversation(h, a.Values(secrets),
			agent.WithMemory(h.store),
			agent.WithLogger(h.logger.With("agent", a.Name)),
		), nil
	},
}

// Build creates a host serving every capability the manifest declares. A
// capability whose plugin is unknown or fails to load is logged and skipped;
// Build fails only when the entry agent is unavailable.
func Build(ctx context.Context, app *config.App, secrets config.Secrets, opts ...Option) (*Host, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}
	h := NewHost(opts...)

	for _, p := range app.LLMs {
		factory, ok := LLMPlugins[p.Plugin]
		if !ok {
			h.logger.Error("unknown llm plugin", "name", p.Name, "plugin", p.Plugin)
			continue
		}
		g, closeFn, err := factory(ctx, p, secrets)
		if err == nil {
			err = h.RegisterGenerator(p.Name, g)
		}
		if err != nil {
			h.logger.Error("failed to load llm", "name", p.Name, "plugin", p.Plugin, "error", err)
			continue
		}
		if closeFn != nil {
			h.OnClose(closeFn)
		}
		h.logger.Info("loaded llm", "name", p.Name, "plugin", p.Plugin)
	}

	for _, p := range app.Tools {
		factory, ok := ToolPlugins[p.Plugin]
		if !ok {
			h.logger.Error("unknown tool plugin", "name", p.Name, "plugin", p.Plugin)
			continue
		}
		if err := factory(ctx, h, p, secrets); err != nil {
			h.logger.Error("failed to load tool", "name", p.Name, "plugin", p.Plugin, "error", err)
			continue
		}
		h.logger.Info("loaded tool", "name", p.Name, "plugin", p.Plugin)
	}

	for _, a := range app.Agents {
		factory, ok := AgentPlugins[a.Plugin]
		if !ok {
			h.logger.Error("unknown agent plugin", "name", a.Name, "plugin", a.Plugin)
			continue
		}
		ag, err := factory(h, a, secrets)
		if err == nil {
			err = h.RegisterAgent(a.Name, ag)
		}
		if err != nil {
			h.logger.Error("failed to load agent", "name", a.Name, "plugin", a.Plugin, "error", err)
			continue
		}
		h.logger.Info("loaded agent", "name", a.Name, "plugin", a.Plugin)
	}

	if _, ok := h.Agent(app.Entry); !ok {
		h.Close()
		return nil, fmt.Errorf("entry agent %q could not be loaded", app.Entry)
	}
	return h, nil
}

// registerAs registers t under the manifest name when one is given.
func registerAs(h *Host, name string, t *tool.Tool) error {
	if name != "" {
		t.Name = name
	}
	return h.Tools().Register(t)
}
