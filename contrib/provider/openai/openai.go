package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// maxStops is the number of stop sequences the chat completions API accepts.
const maxStops = 4

// Config holds OpenAI provider configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	// MaxRetries overrides the SDK retry count when non-negative.
	MaxRetries int
}

// WithBaseURL set BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithAPIKey set api key.
func (cfg *Config) WithAPIKey(apiKey string) *Config {
	cfg.APIKey = apiKey
	return cfg
}

// WithModel set model.
func (cfg *Config) WithModel(model string) *Config {
	cfg.Model = model
	return cfg
}

// DefaultConfig returns default OpenAI configuration. Temperature is zero so
// reasoning transcripts stay reproducible.
func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		MaxRetries: -1,
	}
}

var _ capability.Generator = (*Provider)(nil)

// Provider generates text with the OpenAI chat completions API, or any API
// compatible with it when BaseURL is set.
type Provider struct {
	config *Config
	client openai.Client
}

// New creates a new OpenAI provider using official SDK
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	if config.MaxRetries >= 0 {
		options = append(options, option.WithMaxRetries(config.MaxRetries))
	}

	return &Provider{
		config: config,
		client: openai.NewClient(options...),
	}
}

// Generate sends the system and user prompts as one chat turn.
func (p *Provider) Generate(ctx context.Context, req *capability.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("generate request: %w", errorskg.ErrInvalidInput)
	}

	completion, err := p.client.Chat.Completions.New(ctx, p.params(req))
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return capability.TrimAtStop(completion.Choices[0].Message.Content, req.StopSequences), nil
}

func (p *Provider) params(req *capability.GenerationRequest) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.config.Model),
		Messages:    messages,
		Temperature: openai.Float(p.config.Temperature),
	}
	if p.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(p.config.MaxTokens)
	}
	if stops := req.StopSequences; len(stops) > 0 {
		if len(stops) > maxStops {
			stops = stops[:maxStops]
		}
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: stops}
	}
	return params
}
