package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyunwoo/tably/internal/auth"
	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)

	creds, err := auth.NewCredentials("admin", "adminpass", "kitchen", "kitchenpass")
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	router := NewRouter(database, creds, testJWTSecret, "http://localhost:8080")
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, database
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp["token"] == "" {
		t.Fatal("empty token from login")
	}
	return loginResp["token"]
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func seedTestMenu(t *testing.T, database *sql.DB) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	ids := map[string]int64{}
	for _, m := range []struct {
		name     string
		price    int
		category string
	}{
		{"Pasta", 18000, model.CategoryMain},
		{"Soup", 6000, model.CategorySide},
		{"Cola", 2000, model.CategoryDrink},
	} {
		item, err := store.CreateMenuItem(ctx, database, m.name, m.price, m.category, 30)
		if err != nil {
			t.Fatalf("seed %s: %v", m.name, err)
		}
		ids[m.name] = item.ID
	}
	return ids
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if token := login(t, server, "kitchen", "kitchenpass"); token == "" {
		t.Error("kitchen login returned no token")
	}
}

func TestPublicMenu(t *testing.T) {
	server, database := setupTestServer(t)
	seedTestMenu(t, database)

	resp, err := http.Get(server.URL + "/api/menu")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var menu []model.MenuItem
	json.NewDecoder(resp.Body).Decode(&menu)
	if len(menu) != 3 {
		t.Errorf("expected 3 menu items, got %d", len(menu))
	}
}

func TestOrderAPIFlow(t *testing.T) {
	server, database := setupTestServer(t)
	ids := seedTestMenu(t, database)
	adminToken := login(t, server, "admin", "adminpass")
	kitchenToken := login(t, server, "kitchen", "kitchenpass")

	// Customer submits a first order, no auth needed.
	body, _ := json.Marshal(map[string]any{
		"table_id":     "3",
		"first_order":  true,
		"party_size":   2,
		"acknowledged": true,
		"lines": []map[string]any{
			{"menu_item_id": ids["Pasta"], "quantity": 1},
			{"menu_item_id": ids["Cola"], "quantity": 2},
		},
	})
	resp, err := http.Post(server.URL+"/api/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", resp.StatusCode)
	}
	var submitted struct {
		OrderID    int64  `json:"order_id"`
		Code       string `json:"code"`
		TotalPrice int    `json:"total_price"`
	}
	json.NewDecoder(resp.Body).Decode(&submitted)
	resp.Body.Close()
	if submitted.TotalPrice != 22000 {
		t.Errorf("total = %d, want 22000", submitted.TotalPrice)
	}

	// Admin confirms it.
	confirmURL := fmt.Sprintf("%s/api/orders/%d/confirm", server.URL, submitted.OrderID)
	req, _ := authRequest("POST", confirmURL, adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", resp.StatusCode)
	}
	var confirmed model.Order
	json.NewDecoder(resp.Body).Decode(&confirmed)
	resp.Body.Close()
	if confirmed.Status != model.StatusPaid {
		t.Errorf("status = %s, want paid", confirmed.Status)
	}

	// A second confirm reports the precondition conflict.
	req, _ = authRequest("POST", confirmURL, adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double confirm: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Kitchen records the pasta as cooked then delivered.
	req, _ = authRequest("POST", server.URL+"/api/kitchen/cooked", kitchenToken, map[string]any{
		"menu_item_name": "Pasta", "quantity": 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cooked: expected 200, got %d", resp.StatusCode)
	}
	var cooked map[string]int
	json.NewDecoder(resp.Body).Decode(&cooked)
	resp.Body.Close()
	if cooked["applied"] != 1 {
		t.Errorf("applied = %d, want 1", cooked["applied"])
	}

	deliverURL := fmt.Sprintf("%s/api/orders/%d/deliver", server.URL, submitted.OrderID)
	req, _ = authRequest("POST", deliverURL, kitchenToken, map[string]any{
		"menu_item_name": "Pasta", "quantity": 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deliver: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubmitValidationStatus(t *testing.T) {
	server, database := setupTestServer(t)
	ids := seedTestMenu(t, database)

	// First order without acknowledgement is a 400.
	body, _ := json.Marshal(map[string]any{
		"table_id":    "3",
		"first_order": true,
		"party_size":  2,
		"lines":       []map[string]any{{"menu_item_id": ids["Pasta"], "quantity": 1}},
	})
	resp, _ := http.Post(server.URL+"/api/orders", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/orders")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, database := setupTestServer(t)
	ids := seedTestMenu(t, database)
	kitchenToken := login(t, server, "kitchen", "kitchenpass")

	// Submit a pending order so there is something to confirm.
	body, _ := json.Marshal(map[string]any{
		"table_id":     "1",
		"first_order":  true,
		"party_size":   2,
		"acknowledged": true,
		"lines":        []map[string]any{{"menu_item_id": ids["Pasta"], "quantity": 1}},
	})
	resp, _ := http.Post(server.URL+"/api/orders", "application/json", bytes.NewReader(body))
	var submitted struct {
		OrderID int64 `json:"order_id"`
	}
	json.NewDecoder(resp.Body).Decode(&submitted)
	resp.Body.Close()

	// Kitchen can read the order queue.
	req, _ := authRequest("GET", server.URL+"/api/orders?status=pending", kitchenToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("kitchen list: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Kitchen cannot confirm orders.
	confirmURL := fmt.Sprintf("%s/api/orders/%d/confirm", server.URL, submitted.OrderID)
	req, _ = authRequest("POST", confirmURL, kitchenToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("kitchen confirm: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Or change settings.
	req, _ = authRequest("PUT", server.URL+"/api/settings", kitchenToken, model.DefaultSettings)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("kitchen settings: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminSurfaces(t *testing.T) {
	server, database := setupTestServer(t)
	seedTestMenu(t, database)
	adminToken := login(t, server, "admin", "adminpass")

	// Service order.
	req, _ := authRequest("POST", server.URL+"/api/service", adminToken, map[string]any{
		"table_id": "2", "menu_item_name": "Cola", "quantity": 1,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("service: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Sales exclude the zero-priced service order.
	req, _ = authRequest("GET", server.URL+"/api/sales", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sales: expected 200, got %d", resp.StatusCode)
	}
	var sales map[string]int
	json.NewDecoder(resp.Body).Decode(&sales)
	resp.Body.Close()
	if sales["total"] != 0 {
		t.Errorf("sales total = %d, want 0", sales["total"])
	}

	// Table QR code renders as PNG.
	req, _ = authRequest("GET", server.URL+"/api/tables/2/qr", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type = %s, want image/png", ct)
	}
	resp.Body.Close()

	// Audit log captured the service order.
	req, _ = authRequest("GET", server.URL+"/api/logs?action=SERVICE", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logs: expected 200, got %d", resp.StatusCode)
	}
	var entries []model.LogEntry
	json.NewDecoder(resp.Body).Decode(&entries)
	resp.Body.Close()
	if len(entries) != 1 {
		t.Errorf("expected 1 service log entry, got %d", len(entries))
	}
}
