package mcp

import (
	"github.com/2beens/gymtracker/internal/gymstats"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with gymstats tools: exercises, progress, best performance,
// one-rep max estimate and training plan generation.
func NewServer(tracker *gymstats.Tracker) *mcp.Server {
	h := NewHandler(NewContextService(tracker))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymtracker",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercises",
		Description: "Returns the exercise catalog (id, name, category). Optional filter: category (Chest, Back, Legs, Shoulders, Arms). Use it to find the exercise_id for the other tools.",
	}, h.GetExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_progress",
		Description: "Returns all logged sets of an exercise in chronological order, plus per-day stats (avg weight, avg reps, sets, best one-rep max). Arg: exercise_id. Use when you need progression over time.",
	}, h.GetProgressTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_best_performance",
		Description: "Returns the set with the highest estimated one-rep max for an exercise. Arg: exercise_id.",
	}, h.GetBestPerformanceTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "estimate_one_rep_max",
		Description: "Estimates the one-rep max with the Epley formula, weight * (1 + reps/30), rounded to the nearest integer. Args: weight, reps.",
	}, h.EstimateOneRepMaxTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "generate_training_plan",
		Description: "Generates a random training plan for a category: every exercise of the category with 3-5 sets of 6-10 reps. Replaces the current plan. Arg: category.",
	}, h.GenerateTrainingPlanTool())

	return s
}
