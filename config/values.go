package config

import (
	"fmt"
	"strings"

	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// Well-known configuration keys handed to agents.
const (
	KeyPrompt       = "prompt"
	KeyLLMName      = "llm_name"
	KeyName         = "name"
	KeyDelegate     = "delegate"
	KeyOpenAIAPIKey = "openai_apikey"
	KeyGoogleAPIKey = "google_apikey"
)

// Values is a set of named static string values, such as API keys, model
// names and fixed prompt text.
type Values map[string]string

// Get returns the value for key and whether it was set to a non-empty string.
func (v Values) Get(key string) (string, bool) {
	value, ok := v[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// GetOr returns the value for key or def when absent.
func (v Values) GetOr(key, def string) string {
	if value, ok := v.Get(key); ok {
		return value
	}
	return def
}

// Require returns the value for key or an error matching ErrConfigurationMissing.
func (v Values) Require(key string) (string, error) {
	value, ok := v.Get(key)
	if !ok {
		return "", fmt.Errorf("config key %q: %w", key, errorskg.ErrConfigurationMissing)
	}
	return value, nil
}

// Merge returns a copy of v overlaid with other.
func (v Values) Merge(other Values) Values {
	merged := make(Values, len(v)+len(other))
	for k, val := range v {
		merged[k] = val
	}
	for k, val := range other {
		merged[k] = val
	}
	return merged
}
