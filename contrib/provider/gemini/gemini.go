package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"google.golang.org/api/option"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// maxStops is the number of stop sequences the API accepts.
const maxStops = 5

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	MaxTokens   int32
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  DefaultModel,
	}
}

var _ capability.Generator = (*Provider)(nil)

// Provider generates text with Google Gemini models.
type Provider struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini provider. Close releases its connection.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured: %w", errorskg.ErrInvalidInput)
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{config: config, client: client}, nil
}

// Generate sends the user prompt with the system prompt as the system instruction.
func (p *Provider) Generate(ctx context.Context, req *capability.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("generate request: %w", errorskg.ErrInvalidInput)
	}

	// A model value carries per-call settings, so each call gets its own.
	model := p.client.GenerativeModel(p.config.Model)
	configure(model, p.config, req)

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return capability.TrimAtStop(responseText(resp), req.StopSequences), nil
}

// Close closes the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

func configure(model *genai.GenerativeModel, cfg *Config, req *capability.GenerationRequest) {
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxTokens)
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	stops := req.StopSequences
	if len(stops) > maxStops {
		stops = stops[:maxStops]
	}
	model.StopSequences = stops
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
