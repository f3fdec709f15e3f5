// Package gateway turns a finished recording into text.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/config"
)

// ErrTranscriptionFailed matches every *TranscriptionError.
var ErrTranscriptionFailed = errors.New("transcription failed")

// TranscriptionError carries the reason shown to the user.
type TranscriptionError struct {
	Reason string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return e.Reason
}

func (e *TranscriptionError) Is(target error) bool {
	return target == ErrTranscriptionFailed
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

func failed(reason string, err error) error {
	return &TranscriptionError{Reason: reason, Err: err}
}

// Gateway transcribes a recording. Implementations block until the text is
// ready, ctx is done, or the transcription fails. Failures are
// *TranscriptionError.
type Gateway interface {
	Transcribe(ctx context.Context, blob *capture.Blob) (string, error)
}

// New selects the gateway named by cfg.Mode.
func New(cfg config.Gateway, tempDir string, log *zap.SugaredLogger) (Gateway, error) {
	switch cfg.Mode {
	case "", "simulated":
		return &Simulated{Delay: cfg.Delay}, nil
	case "http":
		return NewHTTP(cfg, tempDir, log), nil
	}
	return nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
}

// Message renders the text displayed for a transcription outcome.
func Message(text string, err error) string {
	if err == nil {
		return text
	}
	var te *TranscriptionError
	if errors.As(err, &te) {
		return "Error: " + te.Reason
	}
	return "Error: " + err.Error()
}
