package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/db"
)

func newTestStore(t *testing.T) (*Store, db.KV) {
	t.Helper()
	kv, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewStore(kv), kv
}

func TestPreview(t *testing.T) {
	exact := strings.Repeat("a", 100)
	long := strings.Repeat("b", 101)
	wide := strings.Repeat("é", 150)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"short", "hello", "hello"},
		{"exactly 100", exact, exact},
		{"101", long, strings.Repeat("b", 100) + "..."},
		{"multibyte", wide, strings.Repeat("é", 100) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.List(context.Background())
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("List() error = %v, want ErrEmpty", err)
	}
}

func TestAppendOnEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Append(ctx, "first", capture.Audio)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0] != rec {
		t.Errorf("record = %+v, want %+v", records[0], rec)
	}
	if rec.MediaType != capture.Audio {
		t.Errorf("MediaType = %q, want audio", rec.MediaType)
	}
	if rec.Preview != "first" {
		t.Errorf("Preview = %q", rec.Preview)
	}
}

func TestListNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Frozen clock: ids must still be strictly increasing.
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for _, text := range []string{"one", "two", "three"} {
		if _, err := store.Append(ctx, text, capture.Video); err != nil {
			t.Fatalf("Append %s: %v", text, err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"three", "two", "one"}
	for i, r := range records {
		if r.Text != want[i] {
			t.Errorf("records[%d].Text = %q, want %q", i, r.Text, want[i])
		}
		if i > 0 && r.ID >= records[i-1].ID {
			t.Errorf("records[%d].ID = %d not below %d", i, r.ID, records[i-1].ID)
		}
	}
}

func TestPersistedFormat(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	store.Append(ctx, "hi", capture.Video)

	raw, ok, err := kv.Get(ctx, db.KeyHistory)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	want := `[{"id":1700000000000,"date":"2023-11-14T22:13:20.000Z","mediaType":"video","text":"hi","preview":"hi"}]`
	if raw != want {
		t.Errorf("stored = %s\nwant     %s", raw, want)
	}
}

func TestLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Append(ctx, "alpha", capture.Audio)
	store.Append(ctx, "beta", capture.Audio)

	got, err := store.Lookup(ctx, a.ID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Text != "alpha" {
		t.Errorf("Text = %q, want alpha", got.Text)
	}

	if _, err := store.Lookup(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(42) error = %v, want ErrNotFound", err)
	}

	// Lookup must not change the log.
	records, _ := store.List(ctx)
	if len(records) != 2 {
		t.Errorf("len = %d after lookup, want 2", len(records))
	}
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Append(ctx, "x", capture.Audio); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 20 {
		t.Errorf("len = %d, want 20", len(records))
	}
}

func TestCorruptLog(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, db.KeyHistory, "{not json")

	if _, err := store.List(ctx); err == nil {
		t.Error("expected decode error")
	}
}
