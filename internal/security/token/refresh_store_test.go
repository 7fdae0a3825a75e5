package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/linkjohn/internal/cache"
	"github.com/dropDatabas3/linkjohn/internal/security/token"
)

func TestRefreshStore_SaveLookup(t *testing.T) {
	ctx := context.Background()
	s := token.NewRefreshStore(cache.NewMemory(""), time.Hour)

	// sin registro → vacío, no error
	got, err := s.Lookup(ctx, "m-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != "" {
		t.Errorf("Lookup sin registro = %q", got)
	}

	if err := s.Save(ctx, "m-1", "rt-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ = s.Lookup(ctx, "m-1"); got != "rt-1" {
		t.Errorf("Lookup = %q", got)
	}

	// overwrite: un solo token vivo por member
	if err := s.Save(ctx, "m-1", "rt-2"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if got, _ = s.Lookup(ctx, "m-1"); got != "rt-2" {
		t.Errorf("Lookup tras overwrite = %q", got)
	}

	// members independientes
	if got, _ = s.Lookup(ctx, "m-2"); got != "" {
		t.Errorf("Lookup otro member = %q", got)
	}
}
