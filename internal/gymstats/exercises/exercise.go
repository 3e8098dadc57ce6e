package exercises

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryChest     Category = "Chest"
	CategoryBack      Category = "Back"
	CategoryLegs      Category = "Legs"
	CategoryShoulders Category = "Shoulders"
	CategoryArms      Category = "Arms"
)

var categories = []Category{
	CategoryChest,
	CategoryBack,
	CategoryLegs,
	CategoryShoulders,
	CategoryArms,
}

// Categories returns the fixed list of muscle groups, in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches a muscle group name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

type Exercise struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Catalog is the ordered list of known exercises.
type Catalog []Exercise

func DefaultCatalog() Catalog {
	return Catalog{
		{ID: 1, Name: "Bench Press", Category: CategoryChest},
		{ID: 2, Name: "Squat", Category: CategoryLegs},
		{ID: 3, Name: "Deadlift", Category: CategoryBack},
		{ID: 4, Name: "Overhead Press", Category: CategoryShoulders},
		{ID: 5, Name: "Pull-ups", Category: CategoryBack},
		{ID: 6, Name: "Barbell Row", Category: CategoryBack},
		{ID: 7, Name: "Incline Bench Press", Category: CategoryChest},
		{ID: 8, Name: "Lunges", Category: CategoryLegs},
	}
}

func (c Catalog) Find(id int) (Exercise, bool) {
	for _, ex := range c {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}

// ByCategory returns the exercises of the given muscle group, preserving catalog order.
func (c Catalog) ByCategory(category Category) []Exercise {
	matching := make([]Exercise, 0)
	for _, ex := range c {
		if ex.Category == category {
			matching = append(matching, ex)
		}
	}
	return matching
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate does presence checks only; categories outside the fixed list are
// tolerated since a persisted catalog may carry user-defined groups.
func (c Catalog) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for i, ex := range c {
		if ex.ID == 0 {
			return fmt.Errorf("%w: exercise at %d has no id", ErrInvalidCatalog, i)
		}
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("%w: exercise %d has no name", ErrInvalidCatalog, ex.ID)
		}
		if _, ok := seen[ex.ID]; ok {
			return fmt.Errorf("%w: duplicate exercise id %d", ErrInvalidCatalog, ex.ID)
		}
		seen[ex.ID] = struct{}{}
	}
	return nil
}
