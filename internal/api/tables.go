package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/pos"
	"github.com/hyunwoo/tably/internal/store"
)

// TablesHandler handles table listing, overview, and administration.
type TablesHandler struct {
	DB *sql.DB
}

// List handles GET /api/tables: the selectable table identifiers for the
// order form, with blocked flags.
func (h *TablesHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := store.GetSettings(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	states, err := store.ListTableStates(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}

	type tableInfo struct {
		TableID string `json:"table_id"`
		Blocked bool   `json:"blocked"`
	}
	tables := []tableInfo{{TableID: model.Takeout, Blocked: states[model.Takeout].Blocked}}
	for i := 1; i <= settings.TotalTables; i++ {
		id := strconv.Itoa(i)
		tables = append(tables, tableInfo{TableID: id, Blocked: states[id].Blocked})
	}
	jsonResponse(w, http.StatusOK, tables)
}

// Overview handles GET /api/tables/overview.
func (h *TablesHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := pos.TableOverview(r.Context(), h.DB, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, overview)
}

// Block handles POST /api/tables/{id}/block.
func (h *TablesHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// Unblock handles POST /api/tables/{id}/unblock.
func (h *TablesHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *TablesHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	tableID := r.PathValue("id")
	if err := pos.SetTableBlocked(r.Context(), h.DB, actorRole(r.Context()), tableID, blocked); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "table updated"})
}

// Clear handles POST /api/tables/{id}/clear.
func (h *TablesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	if err := pos.ClearTable(r.Context(), h.DB, actorRole(r.Context()), tableID); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "table cleared"})
}
