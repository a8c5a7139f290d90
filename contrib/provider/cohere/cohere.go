package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sweetpotato0/chainsocket/capability"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// DefaultURL is the Cohere chat endpoint.
const DefaultURL = "https://api.cohere.ai/v1/chat"

// DefaultModel is the model used when none is configured.
const DefaultModel = "command-r"

// Config holds Cohere provider configuration
type Config struct {
	APIKey      string
	URL         string
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns default Cohere configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		URL:    DefaultURL,
		Model:  DefaultModel,
	}
}

var _ capability.Generator = (*Provider)(nil)

// Provider generates text with the Cohere chat API.
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Cohere provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	return &Provider{
		config: config,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model         string   `json:"model"`
	Message       string   `json:"message"`
	Preamble      string   `json:"preamble,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
	MaxTokens     int      `json:"max_tokens,omitempty"`
	Temperature   float64  `json:"temperature"`
}

type chatResponse struct {
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
}

// Generate sends the user prompt as the chat message and the system prompt as its preamble.
func (p *Provider) Generate(ctx context.Context, req *capability.GenerationRequest) (string, error) {
	if p.config.APIKey == "" {
		return "", fmt.Errorf("cohere API key not configured: %w", errorskg.ErrInvalidInput)
	}
	if req == nil {
		return "", fmt.Errorf("generate request: %w", errorskg.ErrInvalidInput)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:         p.config.Model,
		Message:       req.UserPrompt,
		Preamble:      req.SystemPrompt,
		StopSequences: req.StopSequences,
		MaxTokens:     p.config.MaxTokens,
		Temperature:   p.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "chainsocket-client")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cohere API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return capability.TrimAtStop(resp.Text, req.StopSequences), nil
}
