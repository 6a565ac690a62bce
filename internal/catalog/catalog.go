package catalog

import (
	"fmt"
	"sort"

	"sqldrill/internal/models"
)

// Catalog is the immutable ordered set of exercises. It is loaded once at
// startup and only ever read after that.
type Catalog struct {
	exercises []models.Exercise
	byID      map[int]int
}

// New builds a catalog from exercises, ordering them by ID
func New(exercises []models.Exercise) (*Catalog, error) {
	sorted := make([]models.Exercise, len(exercises))
	copy(sorted, exercises)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int]int, len(sorted))
	for i, ex := range sorted {
		if _, dup := byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %d", ex.ID)
		}
		if len(ex.SetupStatements) == 0 {
			return nil, fmt.Errorf("exercise %d has no setup statements", ex.ID)
		}
		if ex.SolutionQuery == "" {
			return nil, fmt.Errorf("exercise %d has no solution query", ex.ID)
		}
		if ex.Prompt == "" {
			return nil, fmt.Errorf("exercise %d has no prompt", ex.ID)
		}
		byID[ex.ID] = i
	}

	return &Catalog{exercises: sorted, byID: byID}, nil
}

// First returns the exercise with the smallest ID; ok is false when the
// catalog is empty.
func (c *Catalog) First() (models.Exercise, bool) {
	if len(c.exercises) == 0 {
		return models.Exercise{}, false
	}
	return c.exercises[0], true
}

// ByID looks up an exercise by its ID
func (c *Catalog) ByID(id int) (models.Exercise, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Exercise{}, false
	}
	return c.exercises[i], true
}

// After returns the exercise with the next-greater ID strictly after id.
// ok is false when the learner has exhausted the set; that is a terminal
// condition, not an error.
func (c *Catalog) After(id int) (models.Exercise, bool) {
	i := sort.Search(len(c.exercises), func(i int) bool {
		return c.exercises[i].ID > id
	})
	if i == len(c.exercises) {
		return models.Exercise{}, false
	}
	return c.exercises[i], true
}

// All returns a copy of the exercises in ascending ID order
func (c *Catalog) All() []models.Exercise {
	out := make([]models.Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Count returns the number of exercises
func (c *Catalog) Count() int {
	return len(c.exercises)
}
