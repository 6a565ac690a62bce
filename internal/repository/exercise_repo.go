package repository

import (
	"sqldrill/internal/database"
	"sqldrill/internal/models"
)

// ExerciseRepository maintains the read-only exercise reference table. The
// catalog file is the source of truth; rows are re-seeded from it at
// startup so progress reporting can join on them.
type ExerciseRepository struct {
	db database.DBTX
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db database.DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Seed upserts the catalog's exercises into the reference table. Setup
// statements and solutions stay in the catalog only; the table carries the
// descriptive fields.
func (r *ExerciseRepository) Seed(exercises []models.Exercise) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ex := range exercises {
		result, err := tx.Exec(`
			UPDATE exercises
			SET prompt = ?, difficulty = ?, category = ?, order_sensitive = ?
			WHERE id = ?
		`, ex.Prompt, string(ex.Difficulty), ex.Category, ex.OrderSensitive, ex.ID)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected > 0 {
			continue
		}

		_, err = tx.Exec(`
			INSERT INTO exercises (id, prompt, difficulty, category, order_sensitive)
			VALUES (?, ?, ?, ?, ?)
		`, ex.ID, ex.Prompt, string(ex.Difficulty), ex.Category, ex.OrderSensitive)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of seeded exercises
func (r *ExerciseRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM exercises").Scan(&count)
	return count, err
}
