// ABOUTME: MCP tool implementations for the workout history.
// ABOUTME: Each tool maps onto one history coordinator operation.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/liftlog/internal/catalog"
	"github.com/harperreed/liftlog/internal/export"
	"github.com/harperreed/liftlog/internal/history"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_exercise",
		Description: "Log a performed exercise (sets, reps, weight) at the top of the history",
	}, s.handleLogExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_catalog_exercise",
		Description: "Log an exercise from the catalog by catalog ID",
	}, s.handleLogCatalogExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_exercise",
		Description: "Edit a logged exercise in place",
	}, s.handleUpdateExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_exercise",
		Description: "Delete a logged exercise",
	}, s.handleDeleteExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_separator",
		Description: "Add a separator label (e.g. Leg Day) at the top of the history",
	}, s.handleAddSeparator)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_separator",
		Description: "Rename a separator",
	}, s.handleUpdateSeparator)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_separator",
		Description: "Delete a separator",
	}, s.handleDeleteSeparator)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "move_item",
		Description: "Move a history item from one position to another (0 is the top)",
	}, s.handleMoveItem)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_history",
		Description: "List the combined history of exercises and separators, top first",
	}, s.handleListHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_catalog",
		Description: "Search the exercise catalog by name, body part or target muscle",
	}, s.handleListCatalog)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_all",
		Description: "Delete every logged exercise and separator. Irreversible.",
	}, s.handleClearAll)
}

// Tool input/output types

type exerciseInput struct {
	Name   string   `json:"name" jsonschema:"exercise name"`
	Muscle *string  `json:"muscle,omitempty" jsonschema:"target muscle"`
	Sets   *int     `json:"sets,omitempty" jsonschema:"number of sets"`
	Reps   *int     `json:"reps,omitempty" jsonschema:"repetitions per set"`
	Weight *float64 `json:"weight,omitempty" jsonschema:"weight lifted"`
}

func (in exerciseInput) toHistory() history.ExerciseInput {
	return history.ExerciseInput{
		Name:   in.Name,
		Muscle: in.Muscle,
		Sets:   in.Sets,
		Reps:   in.Reps,
		Weight: in.Weight,
	}
}

type logCatalogInput struct {
	CatalogID string   `json:"catalog_id" jsonschema:"catalog exercise ID"`
	Sets      *int     `json:"sets,omitempty" jsonschema:"number of sets"`
	Reps      *int     `json:"reps,omitempty" jsonschema:"repetitions per set"`
	Weight    *float64 `json:"weight,omitempty" jsonschema:"weight lifted"`
}

type updateExerciseInput struct {
	ID     int64    `json:"id" jsonschema:"logged exercise ID"`
	Name   string   `json:"name" jsonschema:"exercise name"`
	Muscle *string  `json:"muscle,omitempty" jsonschema:"target muscle"`
	Sets   *int     `json:"sets,omitempty" jsonschema:"number of sets"`
	Reps   *int     `json:"reps,omitempty" jsonschema:"repetitions per set"`
	Weight *float64 `json:"weight,omitempty" jsonschema:"weight lifted"`
}

func (in updateExerciseInput) toHistory() history.ExerciseInput {
	return exerciseInput{
		Name:   in.Name,
		Muscle: in.Muscle,
		Sets:   in.Sets,
		Reps:   in.Reps,
		Weight: in.Weight,
	}.toHistory()
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"item ID"`
}

type separatorInput struct {
	Text string `json:"text" jsonschema:"separator label"`
}

type updateSeparatorInput struct {
	ID   int64  `json:"id" jsonschema:"separator ID"`
	Text string `json:"text" jsonschema:"new label"`
}

type moveInput struct {
	From int `json:"from" jsonschema:"current position"`
	To   int `json:"to" jsonschema:"new position"`
}

type listHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max results (default all)"`
}

type listCatalogInput struct {
	Query string `json:"query,omitempty" jsonschema:"substring of the exercise name, body part or target"`
	Limit int    `json:"limit,omitempty" jsonschema:"max results (default 20)"`
}

type clearInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true to clear everything"`
}

type itemOutput struct {
	ID      int64  `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type historyOutput struct {
	Count int            `json:"count"`
	Items []export.Entry `json:"items"`
}

type catalogOutput struct {
	Count     int                      `json:"count"`
	Exercises []models.CatalogExercise `json:"exercises"`
}

// Tool handlers

func (s *Server) handleLogExercise(ctx context.Context, req *mcp.CallToolRequest, input exerciseInput) (*mcp.CallToolResult, itemOutput, error) {
	id, err := s.history.LogExercise(ctx, input.toHistory())
	if err != nil {
		return nil, itemOutput{}, fmt.Errorf("failed to log exercise: %w", err)
	}

	return nil, itemOutput{
		ID:      id,
		Kind:    string(models.KindExercise),
		Message: fmt.Sprintf("Logged %s (ID: %d)", strings.TrimSpace(input.Name), id),
	}, nil
}

func (s *Server) handleLogCatalogExercise(ctx context.Context, req *mcp.CallToolRequest, input logCatalogInput) (*mcp.CallToolResult, itemOutput, error) {
	id, err := s.history.LogFromCatalog(ctx, input.CatalogID, input.Sets, input.Reps, input.Weight)
	if err != nil {
		return nil, itemOutput{}, fmt.Errorf("failed to log catalog exercise: %w", err)
	}

	rec, _ := s.history.LogRecord(id)
	return nil, itemOutput{
		ID:      id,
		Kind:    string(models.KindExercise),
		Message: fmt.Sprintf("Logged %s (ID: %d)", rec.ExerciseName, id),
	}, nil
}

func (s *Server) handleUpdateExercise(ctx context.Context, req *mcp.CallToolRequest, input updateExerciseInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.history.UpdateExercise(ctx, input.ID, input.toHistory()); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update exercise: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Updated exercise %d", input.ID),
	}, nil
}

func (s *Server) handleDeleteExercise(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.history.DeleteExercise(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete exercise: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted exercise %d", input.ID),
	}, nil
}

func (s *Server) handleAddSeparator(ctx context.Context, req *mcp.CallToolRequest, input separatorInput) (*mcp.CallToolResult, itemOutput, error) {
	id, err := s.history.AddSeparator(ctx, input.Text)
	if err != nil {
		return nil, itemOutput{}, fmt.Errorf("failed to add separator: %w", err)
	}

	return nil, itemOutput{
		ID:      id,
		Kind:    string(models.KindSeparator),
		Message: fmt.Sprintf("Added separator %q (ID: %d)", input.Text, id),
	}, nil
}

func (s *Server) handleUpdateSeparator(ctx context.Context, req *mcp.CallToolRequest, input updateSeparatorInput) (*mcp.CallToolResult, simpleOutput, error) {
	if _, err := s.history.Separator(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("separator not found: %d", input.ID)
	}
	if err := s.history.UpdateSeparator(ctx, input.ID, input.Text); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update separator: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Renamed separator %d to %q", input.ID, input.Text),
	}, nil
}

func (s *Server) handleDeleteSeparator(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.history.DeleteSeparator(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete separator: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted separator %d", input.ID),
	}, nil
}

func (s *Server) handleMoveItem(ctx context.Context, req *mcp.CallToolRequest, input moveInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.history.Move(ctx, input.From, input.To); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to move item: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Moved item from %d to %d", input.From, input.To),
	}, nil
}

func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, input listHistoryInput) (*mcp.CallToolResult, historyOutput, error) {
	entries := export.Build(s.history).History
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}

	return nil, historyOutput{
		Count: len(entries),
		Items: entries,
	}, nil
}

func (s *Server) handleListCatalog(ctx context.Context, req *mcp.CallToolRequest, input listCatalogInput) (*mcp.CallToolResult, catalogOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	matches := catalog.Filter(s.history.Catalog(), input.Query)
	if len(matches) > input.Limit {
		matches = matches[:input.Limit]
	}

	return nil, catalogOutput{
		Count:     len(matches),
		Exercises: matches,
	}, nil
}

func (s *Server) handleClearAll(ctx context.Context, req *mcp.CallToolRequest, input clearInput) (*mcp.CallToolResult, simpleOutput, error) {
	if !input.Confirm {
		return nil, simpleOutput{}, fmt.Errorf("clear_all requires confirm=true")
	}
	if err := s.history.ClearAll(ctx); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to clear history: %w", err)
	}

	return nil, simpleOutput{Message: "Cleared all exercises and separators"}, nil
}
