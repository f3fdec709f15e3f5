package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jwulff/memo/internal/capture"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC)

func TestBaseName(t *testing.T) {
	got := BaseName(fixedNow)
	want := "memo-2024-05-06T07-08-09.010Z"
	if got != want {
		t.Errorf("BaseName() = %q, want %q", got, want)
	}
}

func TestSaveTranscriptFormats(t *testing.T) {
	tests := []struct {
		format   Format
		fallback bool
	}{
		{TXT, false},
		{PDF, true},
		{DOCX, true},
		{XLSX, true},
		{"rtf", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dir := t.TempDir()
			res, err := SaveTranscript(dir, "hello world", tt.format, fixedNow)
			if err != nil {
				t.Fatalf("SaveTranscript: %v", err)
			}
			if filepath.Ext(res.Path) != ".txt" {
				t.Errorf("path = %q, want .txt", res.Path)
			}
			got, err := os.ReadFile(res.Path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != "hello world" {
				t.Errorf("content = %q", got)
			}
			if res.Fallback != tt.fallback {
				t.Errorf("Fallback = %v, want %v", res.Fallback, tt.fallback)
			}
			if tt.fallback && !strings.Contains(res.Notice, "not implemented") {
				t.Errorf("Notice = %q", res.Notice)
			}
			if !tt.fallback && res.Notice != "" {
				t.Errorf("unexpected notice %q", res.Notice)
			}
		})
	}
}

func TestSaveRecording(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	b := capture.NewBlob(capture.Video, "video/mp4", []byte("frame"))

	path, err := SaveRecording(dir, b, fixedNow)
	if err != nil {
		t.Fatalf("SaveRecording: %v", err)
	}
	if filepath.Base(path) != "memo-2024-05-06T07-08-09.010Z.mp4" {
		t.Errorf("name = %q", filepath.Base(path))
	}
	got, _ := os.ReadFile(path)
	if string(got) != "frame" {
		t.Errorf("content = %q", got)
	}
}
