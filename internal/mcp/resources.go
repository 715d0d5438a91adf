// ABOUTME: MCP resource implementations for the workout history.
// ABOUTME: Provides liftlog://history and liftlog://catalog resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/liftlog/internal/export"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	historyURI = "liftlog://history"
	catalogURI = "liftlog://catalog"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "Workout History",
		Description: "Combined history of logged exercises and separators, top first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "Exercise Catalog",
		Description: "Exercises loaded from the remote catalog this session",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)
}

// Resource handlers

func (s *Server) handleHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := export.Build(s.history).Encode(export.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return jsonResource(historyURI, data), nil
}

func (s *Server) handleCatalogResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	exercises := s.history.Catalog()
	result := map[string]interface{}{
		"count":     len(exercises),
		"exercises": exercises,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return jsonResource(catalogURI, data), nil
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}
