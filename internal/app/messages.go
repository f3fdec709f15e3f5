package app

import (
	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/export"
	"github.com/jwulff/memo/internal/history"
	"github.com/jwulff/memo/internal/ui"
)

// RecordingStartedMsg reports the outcome of acquiring a capture device.
type RecordingStartedMsg struct {
	Kind capture.MediaKind
	Err  error
}

// RecordingStoppedMsg reports the blob of a stopped recording.
type RecordingStoppedMsg struct {
	Kind capture.MediaKind
	Blob *capture.Blob
	Err  error
}

// TranscriptionDoneMsg carries the gateway result. Record is set when the
// transcription succeeded and was saved to history.
type TranscriptionDoneMsg struct {
	Kind    capture.MediaKind
	Text    string
	Err     error
	Record  *history.Record
	SaveErr error
}

// HistoryLoadedMsg carries the history list, newest first.
type HistoryLoadedMsg struct {
	Records []history.Record
	Err     error
}

// ThemeToggledMsg carries the theme after a toggle.
type ThemeToggledMsg struct {
	Theme ui.Theme
	Err   error
}

// RecordingSavedMsg reports a recording download.
type RecordingSavedMsg struct {
	Path string
	Err  error
}

// TranscriptSavedMsg reports a transcript download.
type TranscriptSavedMsg struct {
	Result export.Result
	Err    error
}

// CopiedMsg reports a clipboard write.
type CopiedMsg struct {
	Err error
}

// ClearCopiedMsg resets the copy button label.
type ClearCopiedMsg struct{}
