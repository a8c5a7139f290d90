package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweetpotato0/chainsocket/tool"
)

// QueryInput is the argument set of every tool served by NewServer.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the text input of the tool, such as a question"`
}

// NewServer returns an MCP server exposing tools, so agents in other
// processes can reach them through the mcp tool plugin.
func NewServer(name, version string, tools ...*tool.Tool) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: name, Version: version}, nil)
	for _, t := range tools {
		if t != nil {
			addTool(server, t)
		}
	}
	return server
}

func addTool(server *sdkmcp.Server, t *tool.Tool) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        t.Name,
		Description: t.Description,
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in QueryInput) (*sdkmcp.CallToolResult, any, error) {
		out, err := t.Execute(ctx, in.Query)
		if err != nil {
			return &sdkmcp.CallToolResult{
				IsError: true,
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
			}, nil, nil
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: out}},
		}, nil, nil
	})
}
