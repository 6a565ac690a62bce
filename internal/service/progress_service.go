package service

import (
	"sqldrill/internal/models"
	"sqldrill/internal/repository"
)

// ProgressService derives learner-facing statistics from the attempt
// ledger. Pure read-side; snapshots are recomputed per request.
type ProgressService struct {
	attempts *repository.AttemptRepository
}

// NewProgressService creates a new progress service
func NewProgressService(attempts *repository.AttemptRepository) *ProgressService {
	return &ProgressService{attempts: attempts}
}

// Snapshot aggregates one learner's full attempt history
func (s *ProgressService) Snapshot(learnerID int64) (*models.ProgressSnapshot, error) {
	stats, err := s.attempts.StatsForLearner(learnerID)
	if err != nil {
		return nil, err
	}

	completed, err := s.attempts.CompletedExercises(learnerID)
	if err != nil {
		return nil, err
	}

	return &models.ProgressSnapshot{
		TotalAttempts:         stats.TotalAttempts,
		ExercisesAttempted:    stats.ExercisesAttempted,
		CorrectAttempts:       stats.CorrectAttempts,
		SuccessRate:           models.Rate(stats.CorrectAttempts, stats.TotalAttempts),
		AverageElapsedSeconds: stats.AverageElapsedSeconds,
		CompletedExerciseIDs:  completed,
	}, nil
}
