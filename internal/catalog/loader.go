package catalog

import (
	"fmt"
	"os"

	"sqldrill/internal/models"

	"gopkg.in/yaml.v3"
)

// catalogFile mirrors the on-disk YAML layout. Setup is an explicit list of
// statements; scripts are never split on semicolons, so literals containing
// ';' are safe.
type catalogFile struct {
	Exercises []exerciseEntry `yaml:"exercises"`
}

type exerciseEntry struct {
	ID             int      `yaml:"id"`
	Prompt         string   `yaml:"prompt"`
	Difficulty     string   `yaml:"difficulty"`
	Category       string   `yaml:"category"`
	Setup          []string `yaml:"setup"`
	Solution       string   `yaml:"solution"`
	Explanation    []string `yaml:"explanation"`
	OrderSensitive *bool    `yaml:"order_sensitive"`
}

// LoadFile reads a YAML catalog file and builds the catalog
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Load(data)
}

// Load parses YAML catalog data and builds the catalog
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	exercises := make([]models.Exercise, 0, len(file.Exercises))
	for _, entry := range file.Exercises {
		difficulty, err := models.ParseDifficulty(entry.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("exercise %d: %w", entry.ID, err)
		}

		// Grading is row-order-sensitive unless the exercise opts out.
		orderSensitive := true
		if entry.OrderSensitive != nil {
			orderSensitive = *entry.OrderSensitive
		}

		exercises = append(exercises, models.Exercise{
			ID:               entry.ID,
			Prompt:           entry.Prompt,
			SetupStatements:  entry.Setup,
			SolutionQuery:    entry.Solution,
			ExplanationSteps: entry.Explanation,
			Difficulty:       difficulty,
			Category:         entry.Category,
			OrderSensitive:   orderSensitive,
		})
	}

	return New(exercises)
}
