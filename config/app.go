package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plugin describes one llm or tool entry of the application manifest.
type Plugin struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Plugin      string            `yaml:"plugin"`
	Options     map[string]string `yaml:"options,omitempty"`
}

// Agent describes one agent entry of the application manifest.
type Agent struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Plugin        string   `yaml:"plugin"`
	Prompt        string   `yaml:"prompt"`
	Tools         []string `yaml:"tools"`
	LLMs          []string `yaml:"llms"`
	Delegate      string   `yaml:"delegate,omitempty"`
	MaxIterations int      `yaml:"max_iterations,omitempty"`
}

// Values returns the named configuration the agent reads at call time.
func (a Agent) Values(secrets Secrets) Values {
	values := Values{
		KeyName:         a.Name,
		KeyPrompt:       a.Prompt,
		KeyDelegate:     a.Delegate,
		KeyOpenAIAPIKey: secrets.OpenAIAPIKey,
	}
	if len(a.LLMs) > 0 {
		values[KeyLLMName] = a.LLMs[0]
	}
	return values
}

// App is the application manifest: the capabilities to load and the entry agent.
type App struct {
	Entry  string   `yaml:"entry"`
	LLMs   []Plugin `yaml:"llms"`
	Tools  []Plugin `yaml:"tools"`
	Agents []Agent  `yaml:"agents"`
}

// ParseApp decodes a YAML manifest and validates it.
func ParseApp(data []byte) (*App, error) {
	var app App
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("failed to decode app manifest: %w", err)
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}
	return &app, nil
}

// LoadApp reads and parses the manifest at path.
func LoadApp(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app manifest: %w", err)
	}
	return ParseApp(data)
}

// Validate checks the manifest for missing names, duplicates and a resolvable entry agent.
func (a *App) Validate() error {
	v := NewValidator()
	v.RequireNonEmpty("entry", a.Entry)

	var llms, tools, agents []string
	for i, p := range a.LLMs {
		v.RequireNonEmpty(fmt.Sprintf("llms[%d].name", i), p.Name)
		v.RequireNonEmpty(fmt.Sprintf("llms[%d].plugin", i), p.Plugin)
		llms = append(llms, p.Name)
	}
	for i, p := range a.Tools {
		v.RequireNonEmpty(fmt.Sprintf("tools[%d].name", i), p.Name)
		v.RequireNonEmpty(fmt.Sprintf("tools[%d].plugin", i), p.Plugin)
		tools = append(tools, p.Name)
	}
	for i, ag := range a.Agents {
		v.RequireNonEmpty(fmt.Sprintf("agents[%d].name", i), ag.Name)
		v.RequireNonEmpty(fmt.Sprintf("agents[%d].plugin", i), ag.Plugin)
		if ag.MaxIterations < 0 {
			v.RequirePositive(fmt.Sprintf("agents[%d].max_iterations", i), float64(ag.MaxIterations))
		}
		agents = append(agents, ag.Name)
	}
	v.ValidateUnique("llms", llms)
	v.ValidateUnique("tools", tools)
	v.ValidateUnique("agents", agents)

	if a.Entry != "" {
		if _, ok := a.Agent(a.Entry); !ok {
			v.add("entry", "agent %q is not defined", a.Entry)
		}
	}
	return v.Error()
}

// Agent returns the agent entry with the given name.
func (a *App) Agent(name string) (Agent, bool) {
	for _, ag := range a.Agents {
		if ag.Name == name {
			return ag, true
		}
	}
	return Agent{}, false
}

// Secrets holds the API keys handed to the external collaborators.
type Secrets struct {
	OpenAIAPIKey    string `yaml:"openai_apikey"`
	GoogleAPIKey    string `yaml:"google_apikey"`
	AnthropicAPIKey string `yaml:"anthropic_apikey"`
	GeminiAPIKey    string `yaml:"gemini_apikey"`
	GroqAPIKey      string `yaml:"groq_apikey"`
	CohereAPIKey    string `yaml:"cohere_apikey"`
}

// SecretsFromEnv loads secrets from the conventional environment variables.
func SecretsFromEnv() Secrets {
	return Secrets{
		OpenAIAPIKey:    GetEnv("OPENAI_API_KEY", ""),
		GoogleAPIKey:    GetEnv("SERPAPI_API_KEY", ""),
		AnthropicAPIKey: GetEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    GetEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:      GetEnv("GROQ_API_KEY", ""),
		CohereAPIKey:    GetEnv("COHERE_API_KEY", ""),
	}
}

// LoadSecrets reads a YAML secrets file; values it leaves empty fall back to the environment.
func LoadSecrets(path string) (Secrets, error) {
	secrets := SecretsFromEnv()
	if path == "" {
		return secrets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return secrets, fmt.Errorf("failed to read secrets: %w", err)
	}
	var fromFile Secrets
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return secrets, fmt.Errorf("failed to decode secrets: %w", err)
	}

	if fromFile.OpenAIAPIKey != "" {
		secrets.OpenAIAPIKey = fromFile.OpenAIAPIKey
	}
	if fromFile.GoogleAPIKey != "" {
		secrets.GoogleAPIKey = fromFile.GoogleAPIKey
	}
	if fromFile.AnthropicAPIKey != "" {
		secrets.AnthropicAPIKey = fromFile.AnthropicAPIKey
	}
	if fromFile.GeminiAPIKey != "" {
		secrets.GeminiAPIKey = fromFile.GeminiAPIKey
	}
	if fromFile.GroqAPIKey != "" {
		secrets.GroqAPIKey = fromFile.GroqAPIKey
	}
	if fromFile.CohereAPIKey != "" {
		secrets.CohereAPIKey = fromFile.CohereAPIKey
	}
	return secrets, nil
}
