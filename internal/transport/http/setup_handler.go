package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cerbyl-session-service/internal/app"
	"cerbyl-session-service/internal/domain"
)

// SetupHandler exposes the quiz-setup flow: it resolves a quiz into a
// configuration and parks it in the single-use slot the session loader reads.
type SetupHandler struct {
	service *app.SessionService
}

func NewSetupHandler(service *app.SessionService) *SetupHandler {
	return &SetupHandler{service: service}
}

func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req app.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.service.Setup(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidMode),
			errors.Is(err, domain.ErrInvalidTiming),
			errors.Is(err, domain.ErrNoQuestions):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrQuizNotFound):
			writeJSONError(w, http.StatusNotFound, err.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
