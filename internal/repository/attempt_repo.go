package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"sqldrill/internal/database"
	"sqldrill/internal/models"
)

const (
	// recordMaxRetries bounds the retry loop for sequence-number races
	// from other processes sharing the database.
	recordMaxRetries = 5
	recordRetryBase  = 10 * time.Millisecond
)

// AttemptRepository is the append-only ledger of submissions. Sequence
// numbers for a (learner, exercise) pair are contiguous from 1; assignment
// is serialized per pair in-process and backed by a unique constraint so a
// cross-process race surfaces as a retryable conflict instead of a gap or
// duplicate.
type AttemptRepository struct {
	db database.DBTX

	mu    sync.Mutex
	pairs map[pairKey]*sync.Mutex
}

type pairKey struct {
	learnerID  int64
	exerciseID int
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{
		db:    db,
		pairs: make(map[pairKey]*sync.Mutex),
	}
}

// pairLock returns the mutex serializing sequence assignment for one pair
func (r *AttemptRepository) pairLock(learnerID int64, exerciseID int) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{learnerID: learnerID, exerciseID: exerciseID}
	lock, ok := r.pairs[key]
	if !ok {
		lock = &sync.Mutex{}
		r.pairs[key] = lock
	}
	return lock
}

// Record appends a new attempt, assigning the next contiguous sequence
// number for the (learner, exercise) pair. A conflicting concurrent insert
// is retried internally with the same data; callers never see a different
// verdict because of a race.
func (r *AttemptRepository) Record(learnerID int64, exerciseID int, submittedQuery string, isCorrect bool, elapsedSeconds *int) (*models.Attempt, error) {
	lock := r.pairLock(learnerID, exerciseID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for try := 0; try < recordMaxRetries; try++ {
		attempt, err := r.tryRecord(learnerID, exerciseID, submittedQuery, isCorrect, elapsedSeconds)
		if err == nil {
			return attempt, nil
		}
		if !r.db.GetDialect().IsUniqueViolation(err) {
			return nil, err
		}

		// Another writer took our sequence number; back off and re-read.
		lastErr = err
		time.Sleep(recordRetryBase + time.Duration(rand.Int63n(int64(recordRetryBase))))
	}

	return nil, fmt.Errorf("sequence assignment conflicted %d times for learner %d exercise %d: %w",
		recordMaxRetries, learnerID, exerciseID, lastErr)
}

func (r *AttemptRepository) tryRecord(learnerID int64, exerciseID int, submittedQuery string, isCorrect bool, elapsedSeconds *int) (*models.Attempt, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM attempts WHERE learner_id = ? AND exercise_id = ?",
		learnerID, exerciseID,
	).Scan(&count)
	if err != nil {
		return nil, err
	}

	sequence := count + 1
	submittedAt := time.Now().UTC()

	var elapsed sql.NullInt64
	if elapsedSeconds != nil {
		elapsed = sql.NullInt64{Int64: int64(*elapsedSeconds), Valid: true}
	}

	id, err := tx.ExecReturningID(`
		INSERT INTO attempts (learner_id, exercise_id, submitted_query, is_correct, sequence_number, elapsed_seconds, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, learnerID, exerciseID, submittedQuery, isCorrect, sequence, elapsed, submittedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Attempt{
		ID:             id,
		LearnerID:      learnerID,
		ExerciseID:     exerciseID,
		SubmittedQuery: submittedQuery,
		IsCorrect:      isCorrect,
		SequenceNumber: sequence,
		ElapsedSeconds: elapsedSeconds,
		SubmittedAt:    submittedAt,
	}, nil
}

// AttemptsFor retrieves all attempts for a (learner, exercise) pair, most
// recent first.
func (r *AttemptRepository) AttemptsFor(learnerID int64, exerciseID int) ([]models.Attempt, error) {
	rows, err := r.db.Query(`
		SELECT id, learner_id, exercise_id, submitted_query, is_correct,
		       sequence_number, elapsed_seconds, submitted_at
		FROM attempts
		WHERE learner_id = ? AND exercise_id = ?
		ORDER BY sequence_number DESC
	`, learnerID, exerciseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// RecentAttempts retrieves a learner's latest attempts across all
// exercises, most recent first.
func (r *AttemptRepository) RecentAttempts(learnerID int64, limit int) ([]models.Attempt, error) {
	rows, err := r.db.Query(`
		SELECT id, learner_id, exercise_id, submitted_query, is_correct,
		       sequence_number, elapsed_seconds, submitted_at
		FROM attempts
		WHERE learner_id = ?
		ORDER BY submitted_at DESC, id DESC
		LIMIT ?
	`, learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// HasCorrectAttempt reports whether at least one recorded attempt for the
// pair succeeded. Once true it stays true; later incorrect attempts never
// revert it.
func (r *AttemptRepository) HasCorrectAttempt(learnerID int64, exerciseID int) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM attempts
		WHERE learner_id = ? AND exercise_id = ? AND is_correct
	`, learnerID, exerciseID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForPair returns how many attempts the learner has made on the exercise
func (r *AttemptRepository) CountForPair(learnerID int64, exerciseID int) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM attempts WHERE learner_id = ? AND exercise_id = ?",
		learnerID, exerciseID,
	).Scan(&count)
	return count, err
}

// LearnerStats aggregates a learner's full ledger in one pass
type LearnerStats struct {
	TotalAttempts         int
	ExercisesAttempted    int
	CorrectAttempts       int
	AverageElapsedSeconds float64
}

// StatsForLearner computes attempt totals for one learner
func (r *AttemptRepository) StatsForLearner(learnerID int64) (*LearnerStats, error) {
	stats := &LearnerStats{}
	var avgElapsed sql.NullFloat64

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT exercise_id),
		       COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0),
		       AVG(elapsed_seconds)
		FROM attempts
		WHERE learner_id = ?
	`, learnerID).Scan(
		&stats.TotalAttempts,
		&stats.ExercisesAttempted,
		&stats.CorrectAttempts,
		&avgElapsed,
	)
	if err != nil {
		return nil, err
	}

	if avgElapsed.Valid {
		stats.AverageElapsedSeconds = avgElapsed.Float64
	}

	return stats, nil
}

// CompletedExercises returns the IDs of exercises with at least one correct
// attempt, ascending.
func (r *AttemptRepository) CompletedExercises(learnerID int64) ([]int, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT exercise_id FROM attempts
		WHERE learner_id = ? AND is_correct
		ORDER BY exercise_id
	`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ProgressByExercise returns the per-exercise rollup for a learner
func (r *AttemptRepository) ProgressByExercise(learnerID int64) (map[int]models.ExerciseProgress, error) {
	rows, err := r.db.Query(`
		SELECT exercise_id,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		FROM attempts
		WHERE learner_id = ?
		GROUP BY exercise_id
	`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make(map[int]models.ExerciseProgress)
	for rows.Next() {
		var p models.ExerciseProgress
		var correct int
		if err := rows.Scan(&p.ExerciseID, &p.Attempts, &correct); err != nil {
			return nil, err
		}
		p.Completed = correct > 0
		progress[p.ExerciseID] = p
	}

	return progress, rows.Err()
}

func scanAttempts(rows *sql.Rows) ([]models.Attempt, error) {
	var attempts []models.Attempt
	for rows.Next() {
		var attempt models.Attempt
		var elapsed sql.NullInt64

		err := rows.Scan(
			&attempt.ID,
			&attempt.LearnerID,
			&attempt.ExerciseID,
			&attempt.SubmittedQuery,
			&attempt.IsCorrect,
			&attempt.SequenceNumber,
			&elapsed,
			&attempt.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}

		if elapsed.Valid {
			seconds := int(elapsed.Int64)
			attempt.ElapsedSeconds = &seconds
		}

		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}
