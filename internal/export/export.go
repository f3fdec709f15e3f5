// Package export saves recordings and transcripts to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/media"
)

// Format is a transcript download format.
type Format string

const (
	TXT  Format = "txt"
	PDF  Format = "pdf"
	DOCX Format = "docx"
	XLSX Format = "xlsx"
)

// Formats lists the offered formats in menu order.
var Formats = []Format{TXT, PDF, DOCX, XLSX}

// Result describes a completed download.
type Result struct {
	Path string
	// Fallback is set when the requested format was written as plain text.
	Fallback bool
	// Notice is a user-facing message, empty unless Fallback.
	Notice string
}

// fileLayout is an ISO-8601 instant without characters that are awkward in file names.
const fileLayout = "2006-01-02T15-04-05.000Z"

// BaseName returns the extension-less file name for a download made at now.
func BaseName(now time.Time) string {
	return "memo-" + now.UTC().Format(fileLayout)
}

// SaveRecording writes the blob into dir.
func SaveRecording(dir string, b *capture.Blob, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, BaseName(now)+"."+media.Extension(b))
	if err := media.WriteFile(path, b); err != nil {
		return "", err
	}
	return path, nil
}

// SaveTranscript writes text into dir. Only plain text is produced; the
// document formats fall back to it and say so in the Result.
func SaveTranscript(dir, text string, format Format, now time.Time) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, BaseName(now)+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return Result{}, fmt.Errorf("write transcript: %w", err)
	}

	res := Result{Path: path}
	switch format {
	case PDF, DOCX, XLSX:
		res.Fallback = true
		res.Notice = fmt.Sprintf("%s export is not implemented yet. Saved as plain text instead.", strings.ToUpper(string(format)))
	}
	return res, nil
}
