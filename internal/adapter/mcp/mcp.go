// Package mcp exposes toolkit tools as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/tool"
	"hedera-agent-kit/pkg/toolkit"
)

// Implementation identifies the server to MCP clients.
var Implementation = &mcpsdk.Implementation{Name: "hedera-agent-kit", Version: "1.0.0"}

// NewServer returns an MCP server with one tool per toolkit tool.
func NewServer(kit *toolkit.Toolkit) *mcpsdk.Server {
	server := mcpsdk.NewServer(Implementation, nil)
	Register(server, kit)
	return server
}

// Register adds every toolkit tool to server.
func Register(server *mcpsdk.Server, kit *toolkit.Toolkit) {
	for _, t := range kit.Tools() {
		def := t.Describe()
		server.AddTool(&mcpsdk.Tool{
			Name:        def.Method,
			Title:       def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		}, handler(kit, def.Method))
	}
}

func handler(kit *toolkit.Toolkit, method string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		res := kit.Invoke(ctx, method, args)
		return toResult(method, res), nil
	}
}

func toResult(method string, res tool.Result) *mcpsdk.CallToolResult {
	body, err := json.Marshal(res)
	if err != nil {
		logger.Named("mcp").Error("encode tool result", slog.String("method", method), slog.Any("error", err))
		body, _ = json.Marshal(tool.Failure(res.Text()))
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(body)}},
		IsError: res.Failed(),
	}
}

// ServeStdio serves kit over stdin/stdout until ctx ends or the client
// disconnects.
func ServeStdio(ctx context.Context, kit *toolkit.Toolkit) error {
	logger.Named("mcp").Info("serving MCP over stdio", slog.Int("tools", len(kit.Tools())))
	return NewServer(kit).Run(ctx, &mcpsdk.StdioTransport{})
}
