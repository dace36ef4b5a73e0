package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/pos"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps the core error taxonomy to HTTP statuses. Validation
// reasons are surfaced verbatim; everything unexpected becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var ve *pos.ValidationError
	if errors.As(err, &ve) {
		jsonError(w, http.StatusBadRequest, ve.Reason)
		return
	}

	var pe *pos.PreconditionError
	if errors.As(err, &pe) {
		jsonError(w, http.StatusConflict, pe.Error())
		return
	}

	if errors.Is(err, pos.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		jsonError(w, http.StatusNotFound, "not found")
		return
	}

	if errors.Is(err, db.ErrConflict) {
		jsonError(w, http.StatusServiceUnavailable, "store busy, retry the operation")
		return
	}

	slog.Error("request failed", "error", err)
	jsonError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
