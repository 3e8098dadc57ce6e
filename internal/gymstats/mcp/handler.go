package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// ExercisesInput is the input for get_exercises.
type ExercisesInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category (Chest, Back, Legs, Shoulders, Arms)"`
}

func (h *Handler) GetExercisesTool() func(context.Context, *mcp.CallToolRequest, ExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExercisesInput) (*mcp.CallToolResult, any, error) {
		catalog, err := h.service.ListExercises(ctx, in.Category)
		if err != nil {
			return errorResult("Error listing exercises: " + err.Error()), nil, nil
		}
		return jsonResult(catalog), nil, nil
	}
}

// ExerciseInput is the input for the tools working on a single exercise.
type ExerciseInput struct {
	ExerciseID int `json:"exercise_id" jsonschema:"Exercise id from get_exercises"`
}

func (h *Handler) GetProgressTool() func(context.Context, *mcp.CallToolRequest, ExerciseInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseInput) (*mcp.CallToolResult, any, error) {
		progress, err := h.service.GetProgress(ctx, in.ExerciseID)
		if err != nil {
			return errorResult("Error fetching progress: " + err.Error()), nil, nil
		}
		return jsonResult(progress), nil, nil
	}
}

func (h *Handler) GetBestPerformanceTool() func(context.Context, *mcp.CallToolRequest, ExerciseInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseInput) (*mcp.CallToolResult, any, error) {
		best, err := h.service.GetBestPerformance(ctx, in.ExerciseID)
		if err != nil {
			return errorResult("Error fetching best performance: " + err.Error()), nil, nil
		}
		return jsonResult(best), nil, nil
	}
}

// OneRepMaxInput is the input for estimate_one_rep_max.
type OneRepMaxInput struct {
	Weight float64 `json:"weight" jsonschema:"Lifted weight"`
	Reps   int     `json:"reps" jsonschema:"Repetitions done with that weight"`
}

func (h *Handler) EstimateOneRepMaxTool() func(context.Context, *mcp.CallToolRequest, OneRepMaxInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in OneRepMaxInput) (*mcp.CallToolResult, any, error) {
		orm, err := h.service.EstimateOneRepMax(ctx, in.Weight, in.Reps)
		if err != nil {
			return errorResult("Error estimating one-rep max: " + err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{
				Text: fmt.Sprintf("Estimated one-rep max for %g x %d: %d", in.Weight, in.Reps, orm),
			}},
		}, nil, nil
	}
}

// TrainingPlanInput is the input for generate_training_plan.
type TrainingPlanInput struct {
	Category string `json:"category" jsonschema:"Category to train (Chest, Back, Legs, Shoulders, Arms)"`
}

func (h *Handler) GenerateTrainingPlanTool() func(context.Context, *mcp.CallToolRequest, TrainingPlanInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TrainingPlanInput) (*mcp.CallToolResult, any, error) {
		items, err := h.service.GenerateTrainingPlan(ctx, in.Category)
		if err != nil {
			return errorResult("Error generating plan: " + err.Error()), nil, nil
		}
		return jsonResult(items), nil, nil
	}
}
