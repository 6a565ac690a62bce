package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sqldrill/internal/service"
)

// ExerciseHandler serves the exercise catalog and navigation
type ExerciseHandler struct {
	practiceService *service.PracticeService
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(practiceService *service.PracticeService) *ExerciseHandler {
	return &ExerciseHandler{practiceService: practiceService}
}

// ListExercises returns the full catalog with the learner's per-exercise progress
func (h *ExerciseHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	exercises, progress, err := h.practiceService.AllExercises(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing exercises", err)
		return
	}

	resp := exerciseListResponse{
		Exercises: make([]exerciseResponse, 0, len(exercises)),
		Progress:  make(map[int]exerciseProgressResponse),
	}
	for _, ex := range exercises {
		resp.Exercises = append(resp.Exercises, newExerciseResponse(ex))
	}
	for id, p := range progress {
		resp.Progress[id] = exerciseProgressResponse{Attempts: p.Attempts, Completed: p.Completed}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetExercise returns one exercise by id
func (h *ExerciseHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid exercise ID", "", nil)
		return
	}

	ex, err := h.practiceService.ExerciseByID(id)
	if errors.Is(err, service.ErrExerciseNotFound) {
		respondWithError(w, http.StatusNotFound, "Exercise not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading exercise", err)
		return
	}

	writeJSON(w, http.StatusOK, newExerciseResponse(ex))
}

// CurrentExercise returns the learner's current exercise, falling back to
// the first exercise for a new learner.
func (h *ExerciseHandler) CurrentExercise(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	ex, err := h.practiceService.CurrentOrFirstExercise(learnerID)
	if errors.Is(err, service.ErrExerciseNotFound) {
		respondWithError(w, http.StatusNotFound, "No exercises available", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error resolving current exercise", err)
		return
	}

	writeJSON(w, http.StatusOK, newExerciseResponse(ex))
}

// NextExercise advances the learner to the next exercise. Requires a
// correct attempt on the current one; 204 signals the set is exhausted.
func (h *ExerciseHandler) NextExercise(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	ex, err := h.practiceService.NextExercise(learnerID)
	switch {
	case errors.Is(err, service.ErrNoMoreExercises):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, service.ErrNotYetSolved):
		respondWithError(w, http.StatusConflict, "Solve the current exercise before advancing", "", nil)
		return
	case errors.Is(err, service.ErrExerciseNotFound):
		respondWithError(w, http.StatusNotFound, "No exercises available", "", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error advancing exercise", err)
		return
	}

	writeJSON(w, http.StatusOK, newExerciseResponse(ex))
}
