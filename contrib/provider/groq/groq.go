// Package groq serves Groq models through their OpenAI compatible endpoint.
package groq

import (
	"github.com/sweetpotato0/chainsocket/contrib/provider/openai"
)

// BaseURL is Groq's OpenAI compatible API root.
const BaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is the model used when none is configured.
const DefaultModel = "llama-3.1-8b-instant"

// DefaultConfig returns default Groq configuration
func DefaultConfig(apiKey string) *openai.Config {
	cfg := openai.DefaultConfig().WithAPIKey(apiKey).WithBaseURL(BaseURL).WithModel(DefaultModel)
	return cfg
}

// New creates a Groq provider. A nil config uses DefaultConfig with no key.
func New(cfg *openai.Config) *openai.Provider {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return openai.New(cfg)
}
