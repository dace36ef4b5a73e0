package api

import (
	"database/sql"
	"net/http"

	"github.com/hyunwoo/tably/internal/pos"
)

// KitchenHandler handles cook-progress endpoints.
type KitchenHandler struct {
	DB *sql.DB
}

// RecordCooked handles POST /api/kitchen/cooked. The applied count can
// fall short of the requested quantity when the kitchen cooked more than
// was outstanding.
func (h *KitchenHandler) RecordCooked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuItemName string `json:"menu_item_name"`
		Quantity     int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied, err := pos.RecordCooked(r.Context(), h.DB, actorRole(r.Context()), req.MenuItemName, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"applied": applied})
}

// Backlog handles GET /api/kitchen/backlog.
func (h *KitchenHandler) Backlog(w http.ResponseWriter, r *http.Request) {
	backlog, err := pos.KitchenBacklog(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, backlog)
}
