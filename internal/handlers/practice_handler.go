package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sqldrill/internal/engine"
	"sqldrill/internal/service"
	"sqldrill/internal/verify"
)

const defaultRecentAttemptsLimit = 20

// PracticeHandler handles attempt submission and history
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

type submitRequest struct {
	ExerciseID     int    `json:"exerciseId"`
	Query          string `json:"query"`
	ElapsedSeconds *int   `json:"elapsedSeconds"`
}

// SubmitAttempt grades a submission and records the attempt. A wrong or
// failing learner query is a normal 200 with an incorrect verdict; only
// broken exercise content or infrastructure failures become 5xx.
func (h *PracticeHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	result, err := h.practiceService.SubmitAttempt(r.Context(), learnerID, req.ExerciseID, req.Query, req.ElapsedSeconds)
	if err != nil {
		var setupErr *engine.SetupError
		var solutionFault *verify.SolutionFaultError
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			respondWithError(w, http.StatusNotFound, "Exercise not found", "", nil)
		case errors.Is(err, service.ErrEmptyQuery):
			respondWithError(w, http.StatusBadRequest, "Query must not be empty", "", nil)
		case errors.As(err, &setupErr), errors.As(err, &solutionFault):
			// Content fault, not the learner's doing.
			respondWithError(w, http.StatusInternalServerError, ErrExerciseUnavailable, "Exercise content fault", err)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error grading attempt", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, newSubmitResponse(result))
}

// RecentAttempts returns the learner's latest attempts across exercises
func (h *PracticeHandler) RecentAttempts(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	limit := defaultRecentAttemptsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	attempts, err := h.practiceService.RecentAttempts(learnerID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading attempts", err)
		return
	}

	resp := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, newAttemptResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}
