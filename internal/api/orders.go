package api

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/pos"
)

// OrdersHandler handles order submission and lifecycle endpoints.
type OrdersHandler struct {
	DB *sql.DB
}

// Submit handles POST /api/orders (customer-facing, unauthenticated).
func (h *OrdersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req pos.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := pos.SubmitOrder(r.Context(), h.DB, req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, result)
}

// List handles GET /api/orders?status=paid&sort=desc.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.StatusPending
	}
	desc := r.URL.Query().Get("sort") == "desc"

	orders, err := pos.ListOrders(r.Context(), h.DB, status, desc)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Confirm handles POST /api/orders/{id}/confirm.
func (h *OrdersHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, pos.ConfirmOrder)
}

// Reject handles POST /api/orders/{id}/reject.
func (h *OrdersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, pos.RejectOrder)
}

// Complete handles POST /api/orders/{id}/complete.
func (h *OrdersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, pos.CompleteOrder)
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, dbc *sql.DB, role string, orderID int64) (*model.Order, error)) {
	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := op(r.Context(), h.DB, actorRole(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Deliver handles POST /api/orders/{id}/deliver.
func (h *OrdersHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		MenuItemName string `json:"menu_item_name"`
		Quantity     int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := pos.RecordDelivered(r.Context(), h.DB, actorRole(r.Context()), orderID, req.MenuItemName, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Service handles POST /api/service.
func (h *OrdersHandler) Service(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID      string `json:"table_id"`
		MenuItemName string `json:"menu_item_name"`
		Quantity     int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := pos.IssueServiceOrder(r.Context(), h.DB, actorRole(r.Context()), req.TableID, req.MenuItemName, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, order)
}
