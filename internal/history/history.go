// Package history persists completed transcriptions, newest first.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/db"
)

// isoLayout matches the millisecond ISO-8601 timestamps in stored logs.
const isoLayout = "2006-01-02T15:04:05.000Z"

// PreviewLength is the number of characters kept in a Record's preview.
const PreviewLength = 100

var (
	ErrEmpty    = errors.New("no transcription history")
	ErrNotFound = errors.New("transcription not found")
)

// Record is one completed transcription. It is never mutated once stored.
type Record struct {
	ID        int64             `json:"id"`
	Date      string            `json:"date"`
	MediaType capture.MediaKind `json:"mediaType"`
	Text      string            `json:"text"`
	Preview   string            `json:"preview"`
}

// Time returns the record's creation time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.ID)
}

// Preview truncates text to PreviewLength characters, adding "..." iff it was longer.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}

// Store is the transcription log kept in a KV under db.KeyHistory.
type Store struct {
	kv  db.KV
	now func() time.Time
	mu  sync.Mutex
}

// NewStore returns a Store over kv.
func NewStore(kv db.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Append records text at the front of the log and persists the whole log.
func (s *Store) Append(ctx context.Context, text string, kind capture.MediaKind) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	id := now.UnixMilli()
	if len(records) > 0 && id <= records[0].ID {
		id = records[0].ID + 1
	}
	rec := Record{
		ID:        id,
		Date:      now.UTC().Format(isoLayout),
		MediaType: kind,
		Text:      text,
		Preview:   Preview(text),
	}

	records = append([]Record{rec}, records...)
	data, err := json.Marshal(records)
	if err != nil {
		return Record{}, fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, db.KeyHistory, string(data)); err != nil {
		return Record{}, fmt.Errorf("save history: %w", err)
	}
	return rec, nil
}

// List returns every record, newest first, or ErrEmpty.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return records, nil
}

// Lookup returns the record with the given id.
func (s *Store) Lookup(ctx context.Context, id int64) (Record, error) {
	records, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

func (s *Store) load(ctx context.Context) ([]Record, error) {
	raw, ok, err := s.kv.Get(ctx, db.KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}
