package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/session"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// serviceError maps an inventory error onto a response. Validation messages
// are shown to the caller; everything else is logged.
func serviceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, session.ErrSessionEnded):
		jsonError(w, http.StatusUnauthorized, "session ended")
	case errors.Is(err, model.ErrValidation):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUploadFailed):
		slog.Error("photo upload failed", "action", action, "error", err)
		jsonError(w, http.StatusBadGateway, "photo upload failed")
	case errors.Is(err, model.ErrBackingStoreUnavailable):
		slog.Error("backing store unavailable", "action", action, "error", err)
		jsonError(w, http.StatusServiceUnavailable, "backing store unavailable")
	default:
		slog.Error("request failed", "action", action, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
