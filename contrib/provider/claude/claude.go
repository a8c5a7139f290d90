package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Config holds Claude provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
	// MaxRetries overrides the SDK retry count when non-negative.
	MaxRetries int
}

// DefaultConfig returns default Claude configuration
func DefaultConfig(apiKey, baseURL string) *Config {
	return &Config{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      DefaultModel,
		MaxTokens:  1024,
		MaxRetries: -1,
	}
}

var _ capability.Generator = (*Provider)(nil)

// Provider generates text with the Anthropic messages API.
type Provider struct {
	config *Config
	client anthropic.Client
}

// New creates a new Claude provider using official SDK
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("", "")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}

	options := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithAuthToken(""),
	}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	if config.MaxRetries >= 0 {
		options = append(options, option.WithMaxRetries(config.MaxRetries))
	}

	return &Provider{
		config: config,
		client: anthropic.NewClient(options...),
	}
}

// Generate sends the user prompt with the system prompt as the message system block.
func (p *Provider) Generate(ctx context.Context, req *capability.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("generate request: %w", errorskg.ErrInvalidInput)
	}

	msg, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return capability.TrimAtStop(b.String(), req.StopSequences), nil
}

func (p *Provider) params(req *capability.GenerationRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.config.Model),
		MaxTokens:   p.config.MaxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt))},
		Temperature: param.NewOpt(p.config.Temperature),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	params.StopSequences = serverStops(req.StopSequences)
	return params
}

// serverStops drops whitespace-only sequences, which the API rejects.
// Generate enforces them on the returned text instead.
func serverStops(stops []string) []string {
	var out []string
	for _, stop := range stops {
		if strings.TrimSpace(stop) != "" {
			out = append(out, stop)
		}
	}
	return out
}
