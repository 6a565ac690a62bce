package repository

import (
	"database/sql"
	"time"

	"sqldrill/internal/database"
	"sqldrill/internal/models"
)

// SessionRepository tracks each learner's current exercise pointer and
// active flag. One row per learner; writes are last-writer-wins upserts.
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves a learner's session, or nil if none exists yet
func (r *SessionRepository) Get(learnerID int64) (*models.Session, error) {
	session := &models.Session{}
	var currentExercise sql.NullInt64

	err := r.db.QueryRow(`
		SELECT learner_id, current_exercise_id, practice_active, last_activity
		FROM sessions
		WHERE learner_id = ?
	`, learnerID).Scan(
		&session.LearnerID,
		&currentExercise,
		&session.PracticeActive,
		&session.LastActivity,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if currentExercise.Valid {
		id := int(currentExercise.Int64)
		session.CurrentExerciseID = &id
	}

	return session, nil
}

// Activate marks the learner's practice as active, creating the session row
// if needed. An existing current-exercise pointer is left untouched so a
// returning learner resumes where they stopped.
func (r *SessionRepository) Activate(learnerID int64) error {
	return r.upsert(learnerID, func(tx *database.Tx, exists bool) error {
		now := time.Now().UTC()
		if exists {
			_, err := tx.Exec(
				"UPDATE sessions SET practice_active = ?, last_activity = ? WHERE learner_id = ?",
				true, now, learnerID)
			return err
		}
		_, err := tx.Exec(
			"INSERT INTO sessions (learner_id, current_exercise_id, practice_active, last_activity) VALUES (?, NULL, ?, ?)",
			learnerID, true, now)
		return err
	})
}

// Deactivate marks the learner's practice as inactive. The current-exercise
// pointer is deliberately kept so resuming returns to the same exercise.
func (r *SessionRepository) Deactivate(learnerID int64) error {
	return r.upsert(learnerID, func(tx *database.Tx, exists bool) error {
		now := time.Now().UTC()
		if exists {
			_, err := tx.Exec(
				"UPDATE sessions SET practice_active = ?, last_activity = ? WHERE learner_id = ?",
				false, now, learnerID)
			return err
		}
		_, err := tx.Exec(
			"INSERT INTO sessions (learner_id, current_exercise_id, practice_active, last_activity) VALUES (?, NULL, ?, ?)",
			learnerID, false, now)
		return err
	})
}

// SetCurrentExercise moves the learner's pointer, creating the session row
// if needed.
func (r *SessionRepository) SetCurrentExercise(learnerID int64, exerciseID int) error {
	return r.upsert(learnerID, func(tx *database.Tx, exists bool) error {
		now := time.Now().UTC()
		if exists {
			_, err := tx.Exec(
				"UPDATE sessions SET current_exercise_id = ?, last_activity = ? WHERE learner_id = ?",
				exerciseID, now, learnerID)
			return err
		}
		_, err := tx.Exec(
			"INSERT INTO sessions (learner_id, current_exercise_id, practice_active, last_activity) VALUES (?, ?, ?, ?)",
			learnerID, exerciseID, false, now)
		return err
	})
}

// upsert runs fn inside a transaction, telling it whether the session row
// already exists. A concurrent insert of the same row loses to the primary
// key and is retried once as an update; last writer wins.
func (r *SessionRepository) upsert(learnerID int64, fn func(tx *database.Tx, exists bool) error) error {
	attempt := func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM sessions WHERE learner_id = ?", learnerID).Scan(&count); err != nil {
			return err
		}

		if err := fn(tx, count > 0); err != nil {
			return err
		}

		return tx.Commit()
	}

	err := attempt()
	if err != nil && r.db.GetDialect().IsUniqueViolation(err) {
		// Lost an insert race; the row exists now, retry as an update.
		return attempt()
	}
	return err
}
