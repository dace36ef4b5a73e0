package store

import (
	"context"
	"testing"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
)

func TestGetSettingsDefaults(t *testing.T) {
	database := db.NewTestDB(t)

	s, err := GetSettings(context.Background(), database)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if *s != model.DefaultSettings {
		t.Errorf("expected defaults %+v, got %+v", model.DefaultSettings, *s)
	}
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	updated := model.Settings{
		TimeWarning1:      30,
		TimeWarning2:      45,
		TotalTables:       10,
		ItemsPerTwoGuests: 2,
		RequireMain:       false,
	}
	if err := UpdateSettings(ctx, database, &updated); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	got, err := GetSettings(ctx, database)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if *got != updated {
		t.Errorf("expected %+v, got %+v", updated, *got)
	}
}

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 == "" {
		t.Fatal("expected non-empty secret")
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestJWTSecretInvisibleToSettings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := GetJWTSecret(ctx, database); err != nil {
		t.Fatal(err)
	}

	// The secret shares the settings table but must not disturb reads.
	s, err := GetSettings(ctx, database)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if *s != model.DefaultSettings {
		t.Errorf("expected defaults, got %+v", *s)
	}
}
