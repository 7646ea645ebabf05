package store

import (
	"context"
	"testing"

	"github.com/mohdshuhaib/community-voice-53/internal/db"
)

func TestGetSigningSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetSigningSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetSigningSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestGetOrCreateSettingKeepsFirstValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetOrCreateSetting(ctx, database, "k", func() (string, error) { return "one", nil })
	if err != nil {
		t.Fatal(err)
	}
	second, err := GetOrCreateSetting(ctx, database, "k", func() (string, error) { return "two", nil })
	if err != nil {
		t.Fatal(err)
	}
	if first != "one" || second != "one" {
		t.Errorf("expected both reads to return %q, got %q and %q", "one", first, second)
	}
}
