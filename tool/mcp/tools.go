package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/chainsocket/tool"
)

// ToolError is a failure the remote tool reported in its result. A self-ask
// session treats it like any other tool failure.
type ToolError struct {
	Name    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("mcp tool %s: %s", e.Name, e.Message)
}

// Tools lists every tool the server offers, following pagination.
func (c *Client) Tools(ctx context.Context) ([]*sdkmcp.Tool, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	var defs []*sdkmcp.Tool
	for def, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcp: list tools: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Call invokes a remote tool and returns its text answer.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if c.isClosed() {
		return "", ErrClientClosed
	}
	res, err := c.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}
	text := contentText(res.Content)
	if res.IsError {
		if text == "" {
			text = "tool failed without a message"
		}
		return "", &ToolError{Name: name, Message: text}
	}
	return text, nil
}

// BuildTools wraps each remote tool as a local one. The text input is sent
// as the tool's input parameter unless it is itself a JSON object.
func (c *Client) BuildTools(ctx context.Context) ([]*tool.Tool, error) {
	defs, err := c.Tools(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]*tool.Tool, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		t := &tool.Tool{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  schemaParameters(def.InputSchema),
		}
		if t.Description == "" && def.Annotations != nil {
			t.Description = def.Annotations.Title
		}

		remote, param := def.Name, t.InputParameter()
		t.Handler = func(ctx context.Context, input string) (string, error) {
			return c.Call(ctx, remote, arguments(param, input))
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// RegisterTools adds the server's tools to registry.
func (c *Client) RegisterTools(ctx context.Context, registry *tool.Registry) error {
	tools, err := c.BuildTools(ctx)
	if err != nil {
		return err
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("register tool %s: %w", t.Name, err)
		}
	}
	return nil
}

func arguments(param, input string) map[string]any {
	if trimmed := strings.TrimSpace(input); strings.HasPrefix(trimmed, "{") {
		var args map[string]any
		if json.Unmarshal([]byte(trimmed), &args) == nil {
			return args
		}
	}
	return map[string]any{param: input}
}

// contentText joins text parts; other content kinds are kept as JSON.
func contentText(content []sdkmcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
			continue
		}
		if data, err := json.Marshal(c); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

type objectSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]propertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

type propertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum"`
	Default     any      `json:"default"`
}

// schemaParameters reads the properties of an object input schema, sorted by
// name. The schema arrives as whatever the SDK decoded, so it is
// round-tripped through JSON into a typed form.
func schemaParameters(schema any) []tool.Parameter {
	if schema == nil {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var s objectSchema
	if json.Unmarshal(data, &s) != nil || !strings.EqualFold(s.Type, "object") {
		return nil
	}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	params := make([]tool.Parameter, 0, len(s.Properties))
	for name, prop := range s.Properties {
		typ := prop.Type
		if typ == "" {
			typ = "string"
		}
		params = append(params, tool.Parameter{
			Name:        name,
			Type:        typ,
			Description: prop.Description,
			Required:    required[name],
			Enum:        prop.Enum,
			Default:     prop.Default,
		})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}
