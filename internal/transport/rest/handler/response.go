package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"onsamuse/internal/service"
)

// MsgSessionNotFound is the body text of a missing daily session
const MsgSessionNotFound = "Session introuvable"

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors to a status; fallback is the body of a 500
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, MsgSessionNotFound)
	case errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrUnknownPlayer),
		errors.Is(err, service.ErrUnknownGame):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrIdentityMismatch):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPhaseMismatch),
		errors.Is(err, service.ErrVersionConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
