package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jwulff/memo/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	val, ok, err := store.Get(context.Background(), KeyTheme)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("ok = true for missing key, value %q", val)
	}
}

func TestSetThenGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := store.Get(ctx, KeyTheme)
	if err != nil || !ok {
		t.Fatalf("Get = %q, %v, %v", val, ok, err)
	}
	if val != "dark" {
		t.Errorf("value = %q, want %q", val, "dark")
	}
}

func TestSetOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Set(ctx, KeyHistory, `[{"id":1}]`)
	store.Set(ctx, KeyHistory, `[{"id":2},{"id":1}]`)

	val, _, err := store.Get(ctx, KeyHistory)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != `[{"id":2},{"id":1}]` {
		t.Errorf("value = %q", val)
	}

	var rows int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memo.sqlite")
	ctx := context.Background()

	store, err := Open(config.Store{Backend: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	store.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	val, ok, err := reopened.Get(ctx, KeyTheme)
	if err != nil || !ok || val != "light" {
		t.Errorf("Get after reopen = %q, %v, %v", val, ok, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(config.Store{Backend: "etcd"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
