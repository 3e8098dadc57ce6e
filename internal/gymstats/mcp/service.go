package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtracker/internal/gymstats/exercises"
	"github.com/2beens/gymtracker/internal/gymstats/plan"
)

var (
	ErrNoSets          = errors.New("no sets logged for exercise")
	ErrInvalidEstimate = errors.New("invalid estimate input")
)

// tracker is the part of gymstats.Tracker the MCP tools read from.
type tracker interface {
	Catalog() exercises.Catalog
	FindExercise(exerciseID int) (exercises.Exercise, bool)
	ProgressHistory(exerciseID int) []exercises.LoggedSet
	BestPerformance(exerciseID int) (exercises.LoggedSet, bool)
	ExerciseHistory(exerciseID int) exercises.ExerciseHistory
	GeneratePlan(ctx context.Context, category string) []plan.Item
}

// contextService provides gymstats data for the tools. Used by Handler for testability.
type contextService interface {
	ListExercises(ctx context.Context, category string) (exercises.Catalog, error)
	GetProgress(ctx context.Context, exerciseID int) (*Progress, error)
	GetBestPerformance(ctx context.Context, exerciseID int) (*BestPerformance, error)
	EstimateOneRepMax(ctx context.Context, weight float64, reps int) (int, error)
	GenerateTrainingPlan(ctx context.Context, category string) ([]plan.Item, error)
}

type Progress struct {
	Exercise exercises.Exercise    `json:"exercise"`
	Sets     []exercises.LoggedSet `json:"sets"`
	Days     []exercises.DayStats  `json:"days"`
}

type BestPerformance struct {
	Exercise  exercises.Exercise  `json:"exercise"`
	Set       exercises.LoggedSet `json:"set"`
	OneRepMax int                 `json:"oneRepMax"`
}

// ContextService implements the gymstats context business logic on top of the tracker.
type ContextService struct {
	tracker tracker
}

func NewContextService(t tracker) *ContextService {
	return &ContextService{
		tracker: t,
	}
}

// ListExercises returns the catalog, optionally only the exercises of one category.
// Categories outside the fixed list are matched as given.
func (s *ContextService) ListExercises(_ context.Context, category string) (exercises.Catalog, error) {
	catalog := s.tracker.Catalog()
	if category == "" {
		return catalog, nil
	}
	c, ok := exercises.ParseCategory(category)
	if !ok {
		c = exercises.Category(category)
	}
	return catalog.ByCategory(c), nil
}

// GetProgress returns the chronological sets and per-day stats of an exercise.
func (s *ContextService) GetProgress(_ context.Context, exerciseID int) (*Progress, error) {
	ex, ok := s.tracker.FindExercise(exerciseID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", exercises.ErrExerciseNotFound, exerciseID)
	}
	return &Progress{
		Exercise: ex,
		Sets:     s.tracker.ProgressHistory(exerciseID),
		Days:     s.tracker.ExerciseHistory(exerciseID).Days,
	}, nil
}

func (s *ContextService) GetBestPerformance(_ context.Context, exerciseID int) (*BestPerformance, error) {
	ex, ok := s.tracker.FindExercise(exerciseID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", exercises.ErrExerciseNotFound, exerciseID)
	}
	best, found := s.tracker.BestPerformance(exerciseID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoSets, ex.Name)
	}
	return &BestPerformance{
		Exercise:  ex,
		Set:       best,
		OneRepMax: best.OneRepMax(),
	}, nil
}

func (s *ContextService) EstimateOneRepMax(_ context.Context, weight float64, reps int) (int, error) {
	if err := exercises.ValidateEstimate(weight, reps); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidEstimate, err)
	}
	return exercises.OneRepMax(weight, reps), nil
}

// GenerateTrainingPlan replaces the current plan of the tracker with a new one.
// A category no exercise belongs to gives an empty plan.
func (s *ContextService) GenerateTrainingPlan(ctx context.Context, category string) ([]plan.Item, error) {
	return s.tracker.GeneratePlan(ctx, category), nil
}
