package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	errorskg "github.com/sweetpotato0/chainsocket/errors"
)

// Parameter describes one argument a remote tool accepts
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // string, number, boolean, object, array
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Tool is a named capability that turns a text input into a text answer
type Tool struct {
	Name        string                                                  `json:"name"`
	Description string                                                  `json:"description"`
	Parameters  []Parameter                                             `json:"parameters,omitempty"`
	Handler     func(ctx context.Context, input string) (string, error) `json:"-"`
}

// Execute runs the tool with the given input
func (t *Tool) Execute(ctx context.Context, input string) (string, error) {
	if t.Handler == nil {
		return "", fmt.Errorf("tool %s has no handler", t.Name)
	}
	return t.Handler(ctx, input)
}

// InputParameter returns the name of the argument that receives the text
// input: the first required string parameter, else the first string
// parameter, else "input".
func (t *Tool) InputParameter() string {
	for _, p := range t.Parameters {
		if p.Required && (p.Type == "" || p.Type == "string") {
			return p.Name
		}
	}
	for _, p := range t.Parameters {
		if p.Type == "" || p.Type == "string" {
			return p.Name
		}
	}
	return "input"
}

// Registry manages a collection of tools
// All operations are thread-safe using RWMutex protection
type Registry struct {
	mu        sync.RWMutex // Protects tools map
	tools     map[string]*Tool
	providers providerSet
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool *Tool) error {
	if tool == nil || strings.TrimSpace(tool.Name) == "" {
		return fmt.Errorf("tool name cannot be empty: %w", errorskg.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Upsert adds or replaces a tool definition in the registry.
func (r *Registry) Upsert(tool *Tool) error {
	if tool == nil || strings.TrimSpace(tool.Name) == "" {
		return fmt.Errorf("tool name cannot be empty: %w", errorskg.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
	return nil
}

// Remove deletes a tool by name
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %s: %w", name, errorskg.ErrNotFound)
	}
	return tool, nil
}

// List returns all registered tools ordered by name
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Execute runs a tool by name with the given input
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	tool, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return tool.Execute(ctx, input)
}
