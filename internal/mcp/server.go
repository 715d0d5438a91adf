// ABOUTME: MCP server setup for the liftlog workout history.
// ABOUTME: Wraps the MCP server around a history coordinator.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/liftlog/internal/history"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with history access.
type Server struct {
	mcpServer *mcp.Server
	history   *history.Coordinator
}

// NewServer creates a new MCP server over a loaded coordinator.
func NewServer(coord *history.Coordinator) (*Server, error) {
	if coord == nil {
		return nil, fmt.Errorf("history coordinator required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "liftlog",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		history:   coord,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
