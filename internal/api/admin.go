package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/pos"
	"github.com/hyunwoo/tably/internal/store"
)

// AdminHandler handles the audit log, sales, and settings endpoints.
type AdminHandler struct {
	DB *sql.DB
}

// Logs handles GET /api/logs with optional role/action/detail substring
// filters and an RFC 3339 from/to window.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.LogFilter{
		Role:   query.Get("role"),
		Action: query.Get("action"),
		Detail: query.Get("detail"),
	}
	if v := query.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		filter.From = t
	}
	if v := query.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		filter.To = t
	}

	logs, err := store.ListLogs(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []model.LogEntry{}
	}
	jsonResponse(w, http.StatusOK, logs)
}

// Sales handles GET /api/sales.
func (h *AdminHandler) Sales(w http.ResponseWriter, r *http.Request) {
	total, err := pos.SalesTotal(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"total": total})
}

// GetSettings handles GET /api/settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := store.GetSettings(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/settings.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := decodeJSON(r, &settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := pos.UpdateSettings(r.Context(), h.DB, actorRole(r.Context()), &settings); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}
