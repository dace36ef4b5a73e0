package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// QRHandler serves printable per-table QR codes that open the customer
// order page with the table preselected.
type QRHandler struct {
	DB      *sql.DB
	BaseURL string
}

// qrSize is the generated PNG's edge length in pixels.
const qrSize = 256

// Table handles GET /api/tables/{id}/qr.
func (h *QRHandler) Table(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")

	settings, err := store.GetSettings(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if !validQRTable(tableID, settings.TotalTables) {
		jsonError(w, http.StatusBadRequest, "invalid table")
		return
	}

	target := fmt.Sprintf("%s/order?table=%s", h.BaseURL, url.QueryEscape(tableID))
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func validQRTable(tableID string, totalTables int) bool {
	if tableID == model.Takeout {
		return true
	}
	n, err := strconv.Atoi(tableID)
	return err == nil && n >= 1 && n <= totalTables
}
