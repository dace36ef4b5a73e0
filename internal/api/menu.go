package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hyunwoo/tably/internal/imaging"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/pos"
	"github.com/hyunwoo/tably/internal/store"
)

// MenuHandler handles menu browsing and inventory administration.
type MenuHandler struct {
	DB *sql.DB
}

// List handles GET /api/menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListMenu(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// SetStock handles PUT /api/menu/{id}/stock.
func (h *MenuHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	var req struct {
		Stock int `json:"stock"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := pos.SetStock(r.Context(), h.DB, actorRole(r.Context()), id, req.Stock)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ToggleSoldOut handles POST /api/menu/{id}/soldout.
func (h *MenuHandler) ToggleSoldOut(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	item, err := pos.ToggleSoldOut(r.Context(), h.DB, actorRole(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/menu/{id}/image.
func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	photo, err := imaging.ProcessMenuPhoto(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetMenuImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image updated"})
}

// GetImage handles GET /api/menu/{id}/image.
func (h *MenuHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	image, mime, err := store.GetMenuImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(image) == 0 {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(image)
}
