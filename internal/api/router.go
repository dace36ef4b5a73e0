package api

import (
	"database/sql"
	"net/http"

	"github.com/hyunwoo/tably/internal/auth"
	"github.com/hyunwoo/tably/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, creds *auth.Credentials, jwtSecret, baseURL string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Credentials: creds, JWTSecret: jwtSecret}
	ordersHandler := &OrdersHandler{DB: db}
	menuHandler := &MenuHandler{DB: db}
	kitchenHandler := &KitchenHandler{DB: db}
	tablesHandler := &TablesHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}
	qrHandler := &QRHandler{DB: db, BaseURL: baseURL}

	authMW := AuthMiddleware(jwtSecret)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireKitchen := RequireRole(model.RoleKitchen)

	// Public: login and the customer order surface.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/menu", menuHandler.List)
	mux.HandleFunc("GET /api/menu/{id}/image", menuHandler.GetImage)
	mux.HandleFunc("GET /api/tables", tablesHandler.List)
	mux.HandleFunc("POST /api/orders", ordersHandler.Submit)

	// Staff (kitchen or admin): order views and fulfillment.
	mux.Handle("GET /api/orders", authMW(requireKitchen(http.HandlerFunc(ordersHandler.List))))
	mux.Handle("POST /api/orders/{id}/deliver", authMW(requireKitchen(http.HandlerFunc(ordersHandler.Deliver))))
	mux.Handle("POST /api/kitchen/cooked", authMW(requireKitchen(http.HandlerFunc(kitchenHandler.RecordCooked))))
	mux.Handle("GET /api/kitchen/backlog", authMW(requireKitchen(http.HandlerFunc(kitchenHandler.Backlog))))

	// Admin: lifecycle decisions, inventory, tables, audit, settings.
	mux.Handle("POST /api/orders/{id}/confirm", authMW(requireAdmin(http.HandlerFunc(ordersHandler.Confirm))))
	mux.Handle("POST /api/orders/{id}/reject", authMW(requireAdmin(http.HandlerFunc(ordersHandler.Reject))))
	mux.Handle("POST /api/orders/{id}/complete", authMW(requireAdmin(http.HandlerFunc(ordersHandler.Complete))))
	mux.Handle("POST /api/service", authMW(requireAdmin(http.HandlerFunc(ordersHandler.Service))))
	mux.Handle("PUT /api/menu/{id}/stock", authMW(requireAdmin(http.HandlerFunc(menuHandler.SetStock))))
	mux.Handle("POST /api/menu/{id}/soldout", authMW(requireAdmin(http.HandlerFunc(menuHandler.ToggleSoldOut))))
	mux.Handle("PUT /api/menu/{id}/image", authMW(requireAdmin(http.HandlerFunc(menuHandler.UploadImage))))
	mux.Handle("GET /api/tables/overview", authMW(requireAdmin(http.HandlerFunc(tablesHandler.Overview))))
	mux.Handle("POST /api/tables/{id}/block", authMW(requireAdmin(http.HandlerFunc(tablesHandler.Block))))
	mux.Handle("POST /api/tables/{id}/unblock", authMW(requireAdmin(http.HandlerFunc(tablesHandler.Unblock))))
	mux.Handle("POST /api/tables/{id}/clear", authMW(requireAdmin(http.HandlerFunc(tablesHandler.Clear))))
	mux.Handle("GET /api/tables/{id}/qr", authMW(requireAdmin(http.HandlerFunc(qrHandler.Table))))
	mux.Handle("GET /api/logs", authMW(requireAdmin(http.HandlerFunc(adminHandler.Logs))))
	mux.Handle("GET /api/sales", authMW(requireAdmin(http.HandlerFunc(adminHandler.Sales))))
	mux.Handle("GET /api/settings", authMW(requireAdmin(http.HandlerFunc(adminHandler.GetSettings))))
	mux.Handle("PUT /api/settings", authMW(requireAdmin(http.HandlerFunc(adminHandler.UpdateSettings))))

	return mux
}
