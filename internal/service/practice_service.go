package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"sqldrill/internal/catalog"
	"sqldrill/internal/engine"
	"sqldrill/internal/models"
	"sqldrill/internal/repository"
	"sqldrill/internal/verify"
)

var (
	// ErrExerciseNotFound means the requested exercise id is not in the catalog
	ErrExerciseNotFound = errors.New("exercise not found")

	// ErrNoMoreExercises is the terminal condition after the last exercise.
	// It is an outcome, not a fault.
	ErrNoMoreExercises = errors.New("no more exercises")

	// ErrNotYetSolved means the learner asked to advance past an exercise
	// they have not solved.
	ErrNotYetSolved = errors.New("current exercise not solved yet")

	// ErrEmptyQuery rejects blank submissions before anything is recorded
	ErrEmptyQuery = errors.New("submitted query is empty")
)

// PracticeService owns the submission workflow: materialize the exercise's
// scratch dataset, grade the candidate against the canonical solution,
// append the attempt to the ledger, and report the result.
type PracticeService struct {
	catalog  *catalog.Catalog
	eng      *engine.Engine
	attempts *repository.AttemptRepository
	sessions *repository.SessionRepository
}

// NewPracticeService creates a new practice service
func NewPracticeService(cat *catalog.Catalog, eng *engine.Engine, attempts *repository.AttemptRepository, sessions *repository.SessionRepository) *PracticeService {
	return &PracticeService{
		catalog:  cat,
		eng:      eng,
		attempts: attempts,
		sessions: sessions,
	}
}

// SubmissionResult is everything the client needs after grading one attempt
type SubmissionResult struct {
	Verdict          verify.Verdict
	Attempt          *models.Attempt
	AttemptCount     int
	FirstSuccess     bool
	SolutionQuery    string
	ExplanationSteps []string
}

// SubmitAttempt grades a submission against a freshly materialized dataset
// and records it. Setup and solution failures escalate as errors; a failed
// or wrong learner query is a normal incorrect verdict.
func (s *PracticeService) SubmitAttempt(ctx context.Context, learnerID int64, exerciseID int, query string, elapsedSeconds *int) (*SubmissionResult, error) {
	ex, ok := s.catalog.ByID(exerciseID)
	if !ok {
		return nil, ErrExerciseNotFound
	}

	dataset, err := engine.Materialize(ctx, s.eng, ex.SetupStatements)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize dataset for exercise %d: %w", exerciseID, err)
	}
	defer dataset.Dispose()

	return s.GradeAndRecord(ctx, learnerID, ex, dataset, query, elapsedSeconds)
}

// GradeAndRecord verifies a candidate query against an already materialized
// dataset and appends the attempt. The orchestrator calls this directly
// with its own long-lived dataset; SubmitAttempt wraps it with an ephemeral
// one.
func (s *PracticeService) GradeAndRecord(ctx context.Context, learnerID int64, ex models.Exercise, dataset *engine.ScratchDataset, query string, elapsedSeconds *int) (*SubmissionResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	// Read before recording so this attempt can tell whether it is the
	// first success for the pair.
	hadCorrect, err := s.attempts.HasCorrectAttempt(learnerID, ex.ID)
	if err != nil {
		return nil, err
	}

	verdict, err := verify.Verify(ctx, dataset, query, ex.SolutionQuery, ex.OrderSensitive)
	if err != nil {
		var fault *verify.SolutionFaultError
		if errors.As(err, &fault) {
			// Broken exercise content. Surface loudly and do not record
			// the submission as incorrect.
			log.Printf("SOLUTION FAULT: exercise %d: %v", ex.ID, err)
		}
		return nil, err
	}

	attempt, err := s.attempts.Record(learnerID, ex.ID, query, verdict.Correct, elapsedSeconds)
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{
		Verdict:          verdict,
		Attempt:          attempt,
		AttemptCount:     attempt.SequenceNumber,
		FirstSuccess:     verdict.Correct && !hadCorrect,
		SolutionQuery:    ex.SolutionQuery,
		ExplanationSteps: ex.ExplanationSteps,
	}, nil
}

// CurrentOrFirstExercise returns the learner's current exercise, or the
// first exercise when no session pointer exists yet. Read-only.
func (s *PracticeService) CurrentOrFirstExercise(learnerID int64) (models.Exercise, error) {
	session, err := s.sessions.Get(learnerID)
	if err != nil {
		return models.Exercise{}, err
	}

	if session != nil && session.CurrentExerciseID != nil {
		if ex, ok := s.catalog.ByID(*session.CurrentExerciseID); ok {
			return ex, nil
		}
		// Stale pointer (catalog changed); fall through to first.
	}

	ex, ok := s.catalog.First()
	if !ok {
		return models.Exercise{}, ErrExerciseNotFound
	}
	return ex, nil
}

// NextExercise advances the learner past their current exercise. Advancing
// requires a verified-correct attempt on it. On the last exercise the
// session is deactivated and ErrNoMoreExercises is returned.
func (s *PracticeService) NextExercise(learnerID int64) (models.Exercise, error) {
	current, err := s.CurrentOrFirstExercise(learnerID)
	if err != nil {
		return models.Exercise{}, err
	}

	solved, err := s.attempts.HasCorrectAttempt(learnerID, current.ID)
	if err != nil {
		return models.Exercise{}, err
	}
	if !solved {
		return models.Exercise{}, ErrNotYetSolved
	}

	next, ok := s.catalog.After(current.ID)
	if !ok {
		if err := s.sessions.Deactivate(learnerID); err != nil {
			return models.Exercise{}, err
		}
		return models.Exercise{}, ErrNoMoreExercises
	}

	if err := s.sessions.SetCurrentExercise(learnerID, next.ID); err != nil {
		return models.Exercise{}, err
	}

	return next, nil
}

// ExerciseByID looks up one exercise
func (s *PracticeService) ExerciseByID(id int) (models.Exercise, error) {
	ex, ok := s.catalog.ByID(id)
	if !ok {
		return models.Exercise{}, ErrExerciseNotFound
	}
	return ex, nil
}

// AllExercises returns the full ordered catalog plus the learner's
// per-exercise progress.
func (s *PracticeService) AllExercises(learnerID int64) ([]models.Exercise, map[int]models.ExerciseProgress, error) {
	progress, err := s.attempts.ProgressByExercise(learnerID)
	if err != nil {
		return nil, nil, err
	}
	return s.catalog.All(), progress, nil
}

// RecentAttempts returns the learner's latest attempts across exercises
func (s *PracticeService) RecentAttempts(learnerID int64, limit int) ([]models.Attempt, error) {
	return s.attempts.RecentAttempts(learnerID, limit)
}

// ActivateSession flags the learner as actively practicing. The first
// activation also points the session at the first exercise so the session
// row reflects where practice will begin.
func (s *PracticeService) ActivateSession(learnerID int64) error {
	session, err := s.sessions.Get(learnerID)
	if err != nil {
		return err
	}

	if err := s.sessions.Activate(learnerID); err != nil {
		return err
	}

	if session == nil || session.CurrentExerciseID == nil {
		if first, ok := s.catalog.First(); ok {
			return s.sessions.SetCurrentExercise(learnerID, first.ID)
		}
	}
	return nil
}

// DeactivateSession flags the learner as idle, keeping their pointer
func (s *PracticeService) DeactivateSession(learnerID int64) error {
	return s.sessions.Deactivate(learnerID)
}

// Session returns the learner's session row, or nil when none exists
func (s *PracticeService) Session(learnerID int64) (*models.Session, error) {
	return s.sessions.Get(learnerID)
}
