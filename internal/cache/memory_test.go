package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/linkjohn/internal/cache"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("test")

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get missing err = %v, want ErrNotFound", err)
	}

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "v" {
		t.Errorf("Get = %q", v)
	}

	// overwrite
	if err := c.Set(ctx, "k", "v2", 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _ = c.Get(ctx, "k"); v != "v2" {
		t.Errorf("Get after overwrite = %q", v)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := cache.New(cache.Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Set(context.Background(), "a", "b", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
}
