package models

import "fmt"

// Difficulty classifies how hard an exercise is
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty converts a string to a Difficulty, rejecting unknown values
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Exercise is one SQL challenge with its own setup statements, prompt and
// canonical solution. Exercises are created at catalog load time and never
// mutated; ID is the stable ordering key.
type Exercise struct {
	ID               int
	Prompt           string
	SetupStatements  []string
	SolutionQuery    string
	ExplanationSteps []string
	Difficulty       Difficulty
	Category         string

	// OrderSensitive controls whether grading compares result rows
	// position-by-position (true, the default) or as a multiset.
	// Exercises that require an ORDER BY keep this true.
	OrderSensitive bool
}
