package catalog

import (
	"testing"

	"sqldrill/internal/models"
)

func sampleExercises() []models.Exercise {
	return []models.Exercise{
		{
			ID:              3,
			Prompt:          "third",
			SetupStatements: []string{"CREATE TABLE c (id INTEGER)"},
			SolutionQuery:   "SELECT * FROM c",
			Difficulty:      models.DifficultyAdvanced,
			Category:        "joins",
			OrderSensitive:  true,
		},
		{
			ID:              1,
			Prompt:          "first",
			SetupStatements: []string{"CREATE TABLE a (id INTEGER)"},
			SolutionQuery:   "SELECT * FROM a",
			Difficulty:      models.DifficultyBeginner,
			Category:        "basics",
			OrderSensitive:  true,
		},
		{
			ID:              2,
			Prompt:          "second",
			SetupStatements: []string{"CREATE TABLE b (id INTEGER)"},
			SolutionQuery:   "SELECT * FROM b",
			Difficulty:      models.DifficultyIntermediate,
			Category:        "filtering",
			OrderSensitive:  false,
		},
	}
}

func TestCatalogOrdering(t *testing.T) {
	cat, err := New(sampleExercises())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cat.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", cat.Count())
	}

	// Walking First then After must visit every exercise in ascending ID
	// order and then report exhaustion.
	ex, ok := cat.First()
	if !ok {
		t.Fatal("First() reported empty catalog")
	}

	var visited []int
	for {
		visited = append(visited, ex.ID)
		next, more := cat.After(ex.ID)
		if !more {
			break
		}
		ex = next
	}

	want := []int{1, 2, 3}
	if len(visited) != len(want) {
		t.Fatalf("Visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("Visited %v, want %v", visited, want)
		}
	}
}

func TestCatalogByID(t *testing.T) {
	cat, err := New(sampleExercises())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ex, ok := cat.ByID(2)
	if !ok {
		t.Fatal("ByID(2) not found")
	}
	if ex.Prompt != "second" {
		t.Errorf("ByID(2).Prompt = %q, want %q", ex.Prompt, "second")
	}
	if ex.OrderSensitive {
		t.Error("ByID(2).OrderSensitive = true, want false")
	}

	if _, ok := cat.ByID(99); ok {
		t.Error("ByID(99) found a nonexistent exercise")
	}
}

func TestCatalogAfterGaps(t *testing.T) {
	// IDs need not be dense; After must jump over gaps.
	exercises := []models.Exercise{
		{ID: 10, Prompt: "a", SetupStatements: []string{"x"}, SolutionQuery: "y", Difficulty: models.DifficultyBeginner},
		{ID: 50, Prompt: "b", SetupStatements: []string{"x"}, SolutionQuery: "y", Difficulty: models.DifficultyBeginner},
	}
	cat, err := New(exercises)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	next, ok := cat.After(10)
	if !ok || next.ID != 50 {
		t.Errorf("After(10) = (%d, %v), want (50, true)", next.ID, ok)
	}

	if _, ok := cat.After(50); ok {
		t.Error("After(50) returned an exercise past the end")
	}
}

func TestCatalogEmptyFirst(t *testing.T) {
	cat, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := cat.First(); ok {
		t.Error("First() on empty catalog reported an exercise")
	}
}

func TestCatalogValidation(t *testing.T) {
	valid := models.Exercise{
		ID:              1,
		Prompt:          "p",
		SetupStatements: []string{"CREATE TABLE t (id INTEGER)"},
		SolutionQuery:   "SELECT * FROM t",
		Difficulty:      models.DifficultyBeginner,
	}

	tests := []struct {
		name    string
		mutate  func(models.Exercise) models.Exercise
		wantErr bool
	}{
		{
			name:    "valid exercise",
			mutate:  func(ex models.Exercise) models.Exercise { return ex },
			wantErr: false,
		},
		{
			name: "missing prompt",
			mutate: func(ex models.Exercise) models.Exercise {
				ex.Prompt = ""
				return ex
			},
			wantErr: true,
		},
		{
			name: "missing setup",
			mutate: func(ex models.Exercise) models.Exercise {
				ex.SetupStatements = nil
				return ex
			},
			wantErr: true,
		},
		{
			name: "missing solution",
			mutate: func(ex models.Exercise) models.Exercise {
				ex.SolutionQuery = ""
				return ex
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]models.Exercise{tt.mutate(valid)})
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogDuplicateIDs(t *testing.T) {
	exercises := []models.Exercise{
		{ID: 1, Prompt: "a", SetupStatements: []string{"x"}, SolutionQuery: "y", Difficulty: models.DifficultyBeginner},
		{ID: 1, Prompt: "b", SetupStatements: []string{"x"}, SolutionQuery: "y", Difficulty: models.DifficultyBeginner},
	}
	if _, err := New(exercises); err == nil {
		t.Error("New() accepted duplicate exercise IDs")
	}
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
exercises:
  - id: 2
    prompt: "Count the rows."
    difficulty: beginner
    category: basics
    setup:
      - "CREATE TABLE t (id INTEGER)"
      - "INSERT INTO t VALUES (1); -- a literal ; inside"
    solution: "SELECT COUNT(*) FROM t"
    explanation:
      - "COUNT(*) counts rows."
  - id: 1
    prompt: "List everything, any order."
    difficulty: intermediate
    category: basics
    order_sensitive: false
    setup:
      - "CREATE TABLE u (id INTEGER)"
    solution: "SELECT * FROM u"
`)

	cat, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cat.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", cat.Count())
	}

	first, _ := cat.First()
	if first.ID != 1 {
		t.Errorf("First().ID = %d, want 1", first.ID)
	}
	if first.OrderSensitive {
		t.Error("Exercise 1 should have order_sensitive false")
	}

	second, _ := cat.ByID(2)
	if !second.OrderSensitive {
		t.Error("Exercise 2 should default to order sensitive")
	}
	// Setup statements are taken verbatim; no semicolon splitting
	if len(second.SetupStatements) != 2 {
		t.Fatalf("Exercise 2 has %d setup statements, want 2", len(second.SetupStatements))
	}
	if second.SetupStatements[1] != "INSERT INTO t VALUES (1); -- a literal ; inside" {
		t.Errorf("Setup statement was altered: %q", second.SetupStatements[1])
	}
	if len(second.ExplanationSteps) != 1 {
		t.Errorf("Exercise 2 has %d explanation steps, want 1", len(second.ExplanationSteps))
	}
}

func TestLoadRejectsBadDifficulty(t *testing.T) {
	data := []byte(`
exercises:
  - id: 1
    prompt: "p"
    difficulty: impossible
    category: basics
    setup: ["CREATE TABLE t (id INTEGER)"]
    solution: "SELECT 1"
`)
	if _, err := Load(data); err == nil {
		t.Error("Load accepted an unknown difficulty")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	if _, err := Load([]byte("exercises: [not: valid")); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}
