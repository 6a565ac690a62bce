package handlers

import (
	"net/http"

	"sqldrill/internal/service"
)

// SessionHandler serves the learner's session row and active flag
type SessionHandler struct {
	practiceService *service.PracticeService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(practiceService *service.PracticeService) *SessionHandler {
	return &SessionHandler{practiceService: practiceService}
}

// GetSession returns the learner's session. A learner with no session yet
// gets the idle shape rather than a 404.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	session, err := h.practiceService.Session(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading session", err)
		return
	}

	resp := sessionResponse{LearnerID: learnerID}
	if session != nil {
		resp.CurrentExerciseID = session.CurrentExerciseID
		resp.PracticeActive = session.PracticeActive
		resp.LastActivity = session.LastActivity
	}

	writeJSON(w, http.StatusOK, resp)
}

// ActivateSession marks the learner as actively practicing
func (h *SessionHandler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if err := h.practiceService.ActivateSession(learnerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error activating session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeactivateSession marks the learner as idle, keeping their position
func (h *SessionHandler) DeactivateSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := GetLearnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if err := h.practiceService.DeactivateSession(learnerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deactivating session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
