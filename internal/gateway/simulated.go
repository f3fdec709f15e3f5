package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/jwulff/memo/internal/capture"
)

// DefaultDelay is how long the simulated service takes.
const DefaultDelay = 3 * time.Second

const cannedText = `This is a mock transcription of your %s recording. In a real application, this would be the actual transcribed text from the API. The transcription would be accurate and include proper punctuation.

The actual implementation would use a service like:
- Google Speech-to-Text
- AWS Transcribe
- AssemblyAI
- Or another transcription API.`

// CannedText is the simulated response for a media kind.
func CannedText(kind capture.MediaKind) string {
	return fmt.Sprintf(cannedText, kind)
}

// Simulated answers with CannedText after Delay, or DefaultDelay when Delay
// is zero.
type Simulated struct {
	Delay time.Duration
}

func (s *Simulated) delay() time.Duration {
	if s.Delay == 0 {
		return DefaultDelay
	}
	return s.Delay
}

func (s *Simulated) Transcribe(ctx context.Context, blob *capture.Blob) (string, error) {
	if blob == nil {
		return "", failed("no recording", nil)
	}
	t := time.NewTimer(s.delay())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", failed("transcription cancelled", ctx.Err())
	case <-t.C:
	}
	return CannedText(blob.Kind()), nil
}
