package handlers

import (
	"net/http"

	"sqldrill/internal/service"
)

// ProgressHandler serves derived learner statistics
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress returns the learner's progress snapshot
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	snapshot, err := h.progressService.Snapshot(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error computing progress", err)
		return
	}

	completed := snapshot.CompletedExerciseIDs
	if completed == nil {
		completed = []int{}
	}

	writeJSON(w, http.StatusOK, progressResponse{
		TotalAttempts:         snapshot.TotalAttempts,
		ExercisesAttempted:    snapshot.ExercisesAttempted,
		CorrectAttempts:       snapshot.CorrectAttempts,
		SuccessRate:           snapshot.SuccessRate,
		AverageElapsedSeconds: snapshot.AverageElapsedSeconds,
		CompletedExerciseIDs:  completed,
	})
}
