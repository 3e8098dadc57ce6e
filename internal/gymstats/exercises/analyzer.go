package exercises

import (
	"fmt"
	"math"
	"sort"
)

// OneRepMax estimates the one-rep max with the Epley formula,
// rounded to the nearest integer with ties going up.
// Estimates outside the int range saturate, NaN estimates to 0.
func OneRepMax(weight float64, reps int) int {
	orm := math.Floor(weight*(1+float64(reps)/30) + 0.5)
	switch {
	case math.IsNaN(orm):
		return 0
	case orm >= math.MaxInt:
		return math.MaxInt
	case orm <= math.MinInt:
		return math.MinInt
	}
	return int(orm)
}

// ValidateEstimate checks the inputs of a standalone estimate.
// Unlike a logged set, zero reps is accepted: the estimate is then the weight itself.
func ValidateEstimate(weight float64, reps int) error {
	if math.IsNaN(weight) || weight <= 0 || weight > MaxWeight {
		return fmt.Errorf("%w: must be in (0, %d]", ErrInvalidWeight, MaxWeight)
	}
	if reps < 0 || reps > MaxReps {
		return fmt.Errorf("%w: must be in [0, %d]", ErrInvalidReps, MaxReps)
	}
	return nil
}

// BestPerformance returns the set of the given exercise with the highest
// one-rep max estimate. The earliest set in the log wins ties.
func BestPerformance(log Log, exerciseID int) (LoggedSet, bool) {
	var best LoggedSet
	bestORM := 0
	found := false
	for _, set := range log {
		if set.ExerciseID != exerciseID {
			continue
		}
		orm := set.OneRepMax()
		if !found || orm > bestORM {
			best = set
			bestORM = orm
			found = true
		}
	}
	return best, found
}

// ProgressHistory returns the sets of the given exercise ordered by timestamp.
// Sets sharing a timestamp keep their log order.
func ProgressHistory(log Log, exerciseID int) []LoggedSet {
	history := make([]LoggedSet, 0)
	for _, set := range log {
		if set.ExerciseID == exerciseID {
			history = append(history, set)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})
	return history
}

// DayStats holds the aggregated sets of one exercise for a single calendar day.
type DayStats struct {
	Date          string  `json:"date"`
	AvgWeight     float64 `json:"avgWeight"`
	AvgReps       float64 `json:"avgReps"`
	Sets          int     `json:"sets"`
	BestOneRepMax int     `json:"bestOneRepMax"`
}

type ExerciseHistory struct {
	ExerciseID int        `json:"exerciseId"`
	Days       []DayStats `json:"days"`
}

// ExerciseHistoryFor groups the sets of an exercise by calendar day,
// so that for each day we get the average weight and reps per set.
func ExerciseHistoryFor(log Log, exerciseID int) ExerciseHistory {
	history := ExerciseHistory{
		ExerciseID: exerciseID,
		Days:       make([]DayStats, 0),
	}

	day2sets := make(map[string][]LoggedSet)
	var days []string
	for _, set := range ProgressHistory(log, exerciseID) {
		if _, ok := day2sets[set.Date]; !ok {
			days = append(days, set.Date)
		}
		day2sets[set.Date] = append(day2sets[set.Date], set)
	}
	// dates are YYYY-MM-DD, so lexical order is chronological
	sort.Strings(days)

	for _, day := range days {
		daySets := day2sets[day]
		var totalWeight float64
		var totalReps, bestORM int
		for _, set := range daySets {
			totalWeight += set.Weight
			totalReps += set.Reps
			if orm := set.OneRepMax(); orm > bestORM {
				bestORM = orm
			}
		}
		n := float64(len(daySets))
		history.Days = append(history.Days, DayStats{
			Date:          day,
			AvgWeight:     roundTo2(totalWeight / n),
			AvgReps:       roundTo2(float64(totalReps) / n),
			Sets:          len(daySets),
			BestOneRepMax: bestORM,
		})
	}

	return history
}

type ExerciseProgress struct {
	Exercise Exercise    `json:"exercise"`
	Best     LoggedSet   `json:"best"`
	Recent   []LoggedSet `json:"recent"`
}

// Overview lists, in catalog order, every exercise with at least one logged set,
// together with its best performance and the last lastN sets of its history.
func Overview(catalog Catalog, log Log, lastN int) []ExerciseProgress {
	overview := make([]ExerciseProgress, 0)
	for _, ex := range catalog {
		history := ProgressHistory(log, ex.ID)
		if len(history) == 0 {
			continue
		}
		best, _ := BestPerformance(log, ex.ID)
		recent := history
		if lastN >= 0 && len(recent) > lastN {
			recent = recent[len(recent)-lastN:]
		}
		overview = append(overview, ExerciseProgress{
			Exercise: ex,
			Best:     best,
			Recent:   recent,
		})
	}
	return overview
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
