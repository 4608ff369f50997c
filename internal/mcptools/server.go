package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

// NewServer creates an MCP server with the content studio tools registered:
// generate_post, get_run and list_runs.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "contentstudio",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_post",
		Description: "Run the full content pipeline for a topic. Returns the ranked post variants with hashtags and recommendations.",
	}, svc.GeneratePost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_run",
		Description: "Fetch the full result of a previously recorded run by its id.",
	}, svc.GetRun)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded pipeline runs, newest first.",
	}, svc.ListRuns)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
