package exercises

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Upper bounds for user input, well above anything lifted by a human.
const (
	MaxWeight = 10000
	MaxReps   = 1000
)

// LoggedSet is a single recorded set. Once created it is never mutated.
type LoggedSet struct {
	ID           int64   `json:"id"`
	ExerciseID   int     `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName,omitempty"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
	Timestamp    int64   `json:"timestamp"`
}

func (s LoggedSet) CreatedAt() time.Time {
	return time.UnixMilli(s.Timestamp).UTC()
}

func (s LoggedSet) OneRepMax() int {
	return OneRepMax(s.Weight, s.Reps)
}

// Log is the append-only workout log, in creation order.
type Log []LoggedSet

var (
	ErrMissingInput     = errors.New("missing input")
	ErrInvalidWeight    = errors.New("invalid weight")
	ErrInvalidReps      = errors.New("invalid reps")
	ErrExerciseNotFound = errors.New("exercise not found")
)

type RejectReason string

const (
	ReasonMissing     RejectReason = "missing"
	ReasonNotANumber  RejectReason = "not a number"
	ReasonNotPositive RejectReason = "not positive"
	ReasonTooLarge    RejectReason = "too large"
	ReasonUnknown     RejectReason = "unknown exercise"
)

// Rejection is returned when an add-workout request is refused.
// Nothing has been appended to the log when a Rejection is returned.
type Rejection struct {
	Field  string       `json:"field"`
	Reason RejectReason `json:"reason"`
	err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("workout rejected: %s: %s", r.Field, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.err
}

func reject(field string, reason RejectReason, err error) *Rejection {
	return &Rejection{Field: field, Reason: reason, err: err}
}

// WorkoutInput is a parsed add-workout request.
type WorkoutInput struct {
	ExerciseID int
	Weight     float64
	Reps       int
}

// ParseWorkoutInput validates the raw strings entered by the user.
func ParseWorkoutInput(exerciseID, weight, reps string) (WorkoutInput, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	weight = strings.TrimSpace(weight)
	reps = strings.TrimSpace(reps)

	if exerciseID == "" {
		return WorkoutInput{}, reject("exerciseId", ReasonMissing, ErrMissingInput)
	}
	if weight == "" {
		return WorkoutInput{}, reject("weight", ReasonMissing, ErrMissingInput)
	}
	if reps == "" {
		return WorkoutInput{}, reject("reps", ReasonMissing, ErrMissingInput)
	}

	exID, err := strconv.Atoi(exerciseID)
	if err != nil {
		return WorkoutInput{}, reject("exerciseId", ReasonNotANumber, ErrExerciseNotFound)
	}

	w, err := strconv.ParseFloat(weight, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return WorkoutInput{}, reject("weight", ReasonNotANumber, ErrInvalidWeight)
	}
	if w <= 0 {
		return WorkoutInput{}, reject("weight", ReasonNotPositive, ErrInvalidWeight)
	}
	if w > MaxWeight {
		return WorkoutInput{}, reject("weight", ReasonTooLarge, ErrInvalidWeight)
	}

	r, err := strconv.Atoi(reps)
	if err != nil {
		return WorkoutInput{}, reject("reps", ReasonNotANumber, ErrInvalidReps)
	}
	if r <= 0 {
		return WorkoutInput{}, reject("reps", ReasonNotPositive, ErrInvalidReps)
	}
	if r > MaxReps {
		return WorkoutInput{}, reject("reps", ReasonTooLarge, ErrInvalidReps)
	}

	return WorkoutInput{
		ExerciseID: exID,
		Weight:     w,
		Reps:       r,
	}, nil
}

// AddWorkout appends a new set to the log. The returned log never shares its
// backing array with the given one, so callers holding the old log keep seeing it unchanged.
// On rejection the given log is returned as is.
func AddWorkout(catalog Catalog, log Log, input WorkoutInput, now time.Time) (LoggedSet, Log, error) {
	if input.Weight <= 0 || math.IsNaN(input.Weight) || math.IsInf(input.Weight, 0) {
		return LoggedSet{}, log, reject("weight", ReasonNotPositive, ErrInvalidWeight)
	}
	if input.Weight > MaxWeight {
		return LoggedSet{}, log, reject("weight", ReasonTooLarge, ErrInvalidWeight)
	}
	if input.Reps <= 0 {
		return LoggedSet{}, log, reject("reps", ReasonNotPositive, ErrInvalidReps)
	}
	if input.Reps > MaxReps {
		return LoggedSet{}, log, reject("reps", ReasonTooLarge, ErrInvalidReps)
	}

	exercise, ok := catalog.Find(input.ExerciseID)
	if !ok {
		return LoggedSet{}, log, reject("exerciseId", ReasonUnknown, ErrExerciseNotFound)
	}

	nowMs := now.UnixMilli()
	id := nowMs
	if n := len(log); n > 0 && log[n-1].ID >= id {
		id = log[n-1].ID + 1
	}

	set := LoggedSet{
		ID:           id,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
		Weight:       input.Weight,
		Reps:         input.Reps,
		Date:         now.UTC().Format(DateLayout),
		Timestamp:    nowMs,
	}

	return set, append(log[:len(log):len(log)], set), nil
}

// RecentWorkouts returns up to n most recently added sets, newest first.
func RecentWorkouts(log Log, n int) []LoggedSet {
	if n <= 0 || len(log) == 0 {
		return []LoggedSet{}
	}
	if n > len(log) {
		n = len(log)
	}
	recent := make([]LoggedSet, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		recent = append(recent, log[i])
	}
	return recent
}
