package pos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// seedMenu inserts a small menu covering every ordering category and
// returns the items keyed by name.
func seedMenu(t *testing.T, dbc *sql.DB) map[string]*model.MenuItem {
	t.Helper()
	ctx := context.Background()

	items := map[string]*model.MenuItem{}
	for _, m := range []struct {
		name     string
		price    int
		category string
		stock    int
	}{
		{"Chef Set", 29000, model.CategorySpecial, 10},
		{"Pasta", 18000, model.CategoryMain, 10},
		{"Soup", 6000, model.CategorySide, 10},
		{"Ice Cream", 4000, model.CategoryDessert, 10},
		{"Extra Sauce", 500, model.CategoryOptions, 99},
		{"Cola", 2000, model.CategoryDrink, 30},
	} {
		item, err := store.CreateMenuItem(ctx, dbc, m.name, m.price, m.category, m.stock)
		if err != nil {
			t.Fatalf("seed %s: %v", m.name, err)
		}
		items[m.name] = item
	}
	return items
}

func firstOrderRequest(tableID string, partySize int, lines ...LineRequest) SubmitRequest {
	return SubmitRequest{
		TableID:      tableID,
		FirstOrder:   true,
		PartySize:    partySize,
		Acknowledged: true,
		Lines:        lines,
	}
}

func TestSubmitOrder(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	req := firstOrderRequest("3", 4,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 2},
		LineRequest{MenuItemID: menu["Cola"].ID, Quantity: 3},
	)
	res, err := SubmitOrder(ctx, dbc, req)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if res.TotalPrice != 2*18000+3*2000 {
		t.Errorf("total = %d, want %d", res.TotalPrice, 2*18000+3*2000)
	}
	if len(res.Code) != 6 {
		t.Errorf("code = %q, want six digits", res.Code)
	}

	order, err := store.GetOrder(ctx, dbc, res.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.PartySize != 4 {
		t.Errorf("party size = %d, want 4", order.PartySize)
	}
	if len(order.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(order.Lines))
	}
}

func TestSubmitOrderComposition(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	// Party of four needs two food items; two mains satisfy it.
	_, err := SubmitOrder(ctx, dbc, firstOrderRequest("1", 4,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 2},
	))
	if err != nil {
		t.Errorf("two mains for four guests: %v", err)
	}

	// One main is not enough for four guests.
	_, err = SubmitOrder(ctx, dbc, firstOrderRequest("2", 4,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 1},
	))
	if !IsValidation(err) {
		t.Errorf("one main for four guests: want validation error, got %v", err)
	}

	// A set counts as two food items and one main.
	_, err = SubmitOrder(ctx, dbc, firstOrderRequest("3", 4,
		LineRequest{MenuItemID: menu["Chef Set"].ID, Quantity: 1},
	))
	if err != nil {
		t.Errorf("one set for four guests: %v", err)
	}

	// Sides fill food slots but a main is still required.
	_, err = SubmitOrder(ctx, dbc, firstOrderRequest("4", 4,
		LineRequest{MenuItemID: menu["Soup"].ID, Quantity: 2},
	))
	if !IsValidation(err) {
		t.Errorf("sides only: want validation error, got %v", err)
	}

	// Drinks alone never satisfy the minimum.
	_, err = SubmitOrder(ctx, dbc, firstOrderRequest("5", 2,
		LineRequest{MenuItemID: menu["Cola"].ID, Quantity: 5},
	))
	if !IsValidation(err) {
		t.Errorf("drinks only: want validation error, got %v", err)
	}
}

func TestSubmitOrderRepeatSkipsComposition(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	res, err := SubmitOrder(ctx, dbc, SubmitRequest{
		TableID: "7",
		Lines:   []LineRequest{{MenuItemID: menu["Cola"].ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("repeat order: %v", err)
	}
	order, err := store.GetOrder(ctx, dbc, res.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if order.IsFirst() {
		t.Error("repeat order should not be marked as first")
	}
}

func TestSubmitOrderValidation(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)
	pasta := menu["Pasta"].ID

	tests := []struct {
		name string
		req  SubmitRequest
		want string
	}{
		{
			"invalid table",
			firstOrderRequest("99", 2, LineRequest{MenuItemID: pasta, Quantity: 1}),
			"valid table",
		},
		{
			"non-numeric table",
			firstOrderRequest("abc", 2, LineRequest{MenuItemID: pasta, Quantity: 1}),
			"valid table",
		},
		{
			"takeout without phone",
			firstOrderRequest(model.Takeout, 2, LineRequest{MenuItemID: pasta, Quantity: 1}),
			"phone",
		},
		{
			"empty order",
			firstOrderRequest("1", 2),
			"at least one",
		},
		{
			"zero quantities only",
			firstOrderRequest("1", 2, LineRequest{MenuItemID: pasta, Quantity: 0}),
			"at least one",
		},
		{
			"negative quantity",
			firstOrderRequest("1", 2, LineRequest{MenuItemID: pasta, Quantity: -1}),
			"positive",
		},
		{
			"missing acknowledgement",
			SubmitRequest{
				TableID: "1", FirstOrder: true, PartySize: 2,
				Lines: []LineRequest{{MenuItemID: pasta, Quantity: 1}},
			},
			"acknowledged",
		},
		{
			"zero party size",
			SubmitRequest{
				TableID: "1", FirstOrder: true, Acknowledged: true,
				Lines: []LineRequest{{MenuItemID: pasta, Quantity: 1}},
			},
			"party size",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SubmitOrder(ctx, dbc, tt.req)
			if !IsValidation(err) {
				t.Fatalf("want validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSubmitOrderUnknownItem(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	seedMenu(t, dbc)

	_, err := SubmitOrder(ctx, dbc, firstOrderRequest("1", 2,
		LineRequest{MenuItemID: 9999, Quantity: 1},
	))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestSubmitOrderSoldOut(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	if _, err := store.ToggleSoldOut(ctx, dbc, menu["Pasta"].ID); err != nil {
		t.Fatal(err)
	}
	_, err := SubmitOrder(ctx, dbc, firstOrderRequest("1", 2,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 1},
	))
	if !IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "sold out") {
		t.Errorf("error %q does not mention sold out", err)
	}
}

func TestSubmitOrderBlockedTable(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	if _, err := store.EnsureTableState(ctx, dbc, "5"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetTableBlocked(ctx, dbc, "5", true); err != nil {
		t.Fatal(err)
	}
	_, err := SubmitOrder(ctx, dbc, firstOrderRequest("5", 2,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 1},
	))
	if !IsValidation(err) {
		t.Errorf("blocked table: want validation error, got %v", err)
	}
}

func TestSubmitOrderDoesNotTouchStock(t *testing.T) {
	dbc := db.NewTestDB(t)
	ctx := context.Background()
	menu := seedMenu(t, dbc)

	_, err := SubmitOrder(ctx, dbc, firstOrderRequest("1", 2,
		LineRequest{MenuItemID: menu["Pasta"].ID, Quantity: 3},
	))
	if err != nil {
		t.Fatal(err)
	}
	item, err := store.GetMenuItem(ctx, dbc, menu["Pasta"].ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Stock != 10 {
		t.Errorf("stock = %d, want 10 before confirmation", item.Stock)
	}
}
