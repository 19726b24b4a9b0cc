package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// statusFor maps a service error onto an HTTP status and a client-facing
// message. Unexpected errors are reported as "internal error".
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNoUserID),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrProfileCreatedTutorialFailed):
		return http.StatusInternalServerError, common.ErrProfileCreatedTutorialFailed.Error()
	case errors.Is(err, common.ErrTutorialDeletedReseedFailed):
		return http.StatusInternalServerError, common.ErrTutorialDeletedReseedFailed.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err.Error(), "path", r.URL.Path)
	}
	writeError(w, status, msg)
}
