package plan

import (
	"github.com/2beens/gymtracker/internal/gymstats/exercises"
)

const (
	MinSets = 3
	MaxSets = 5
	MinReps = 6
	MaxReps = 10
)

// Item is a single entry of a daily training plan.
type Item struct {
	ExerciseID int    `json:"exerciseId"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       int    `json:"reps"`
}

type Generator struct {
	rnd RandomSource
}

func NewGenerator(rnd RandomSource) *Generator {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	return &Generator{
		rnd: rnd,
	}
}

// UniformInt returns an int uniformly distributed in [lo, hi].
func (g *Generator) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.IntN(hi-lo+1)
}

// Generate builds a fresh plan for every exercise of the given category, in catalog order.
// Sets and reps are drawn independently for each exercise, sets first.
func (g *Generator) Generate(catalog exercises.Catalog, category exercises.Category) []Item {
	selected := catalog.ByCategory(category)
	items := make([]Item, 0, len(selected))
	for _, ex := range selected {
		sets := g.UniformInt(MinSets, MaxSets)
		reps := g.UniformInt(MinReps, MaxReps)
		items = append(items, Item{
			ExerciseID: ex.ID,
			Name:       ex.Name,
			Sets:       sets,
			Reps:       reps,
		})
	}
	return items
}
