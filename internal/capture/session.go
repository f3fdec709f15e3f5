package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFlushInterval is how often buffered stream bytes become a chunk.
const DefaultFlushInterval = 100 * time.Millisecond

// Session is one record-stop cycle. A program holds a single Session and
// reuses it, so "is something recording" is always answerable from it.
type Session struct {
	device   Device
	interval time.Duration
	logger   *zap.SugaredLogger

	endMu sync.Mutex // serializes End and Reset

	mu        sync.Mutex
	id        string
	req       uint64 // bumped by Begin and Reset; a stale Begin aborts
	status    Status
	kind      MediaKind
	stream    Stream
	chunks    [][]byte
	blob      *Blob
	armed     []Canceler
	cancel    context.CancelFunc
	group     *errgroup.Group
	startedAt time.Time
	pump      *pump
}

// Option configures a Session.
type Option func(*Session)

// WithFlushInterval overrides DefaultFlushInterval.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an idle session backed by device.
func NewSession(device Device, opts ...Option) *Session {
	s := &Session{
		device:   device,
		interval: DefaultFlushInterval,
		logger:   zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Begin requests a stream for kind and starts recording it. It fails with
// ErrSessionActive unless the session is idle, and with a
// DeviceUnavailableError (leaving the session idle) when the device cannot be
// opened.
func (s *Session) Begin(ctx context.Context, kind MediaKind, facing Facing) error {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.status = StatusRequesting
	s.kind = kind
	s.req++
	req := s.req
	s.mu.Unlock()

	stream, err := s.device.Open(ctx, ConstraintsFor(kind, facing))

	s.mu.Lock()
	defer s.mu.Unlock()
	stale := s.req != req || s.status != StatusRequesting
	if err != nil {
		if !stale {
			s.status = StatusIdle
		}
		s.logger.Warnw("capture device unavailable", "kind", kind, "error", err)
		return Unavailable(kind, err)
	}
	if stale {
		stopTracks(stream)
		return errAborted
	}

	s.id = uuid.NewString()
	s.stream = stream
	s.chunks = nil
	s.blob = nil
	s.startedAt = time.Now()

	pumpCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(pumpCtx)
	p := newPump(stream, s.interval, s.handleData)
	g.Go(func() error { return p.read(gctx) })
	g.Go(func() error { return p.flush(gctx) })
	s.cancel = cancel
	s.group = g
	s.pump = p
	s.status = StatusRecording

	s.logger.Infow("recording started", "session", s.id, "kind", kind, "mime", stream.MimeType(), "facing", facing)
	return nil
}

// Arm registers cancelers that End stops synchronously. Arming an idle
// session stops the cancelers immediately.
func (s *Session) Arm(cs ...Canceler) {
	s.mu.Lock()
	if s.status == StatusRecording {
		s.armed = append(s.armed, cs...)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	for _, c := range cs {
		c.Stop()
	}
}

// Disarm stops the armed cancelers now, ahead of an End that may take a
// while to release the device.
func (s *Session) Disarm() {
	s.mu.Lock()
	armed := s.armed
	s.armed = nil
	s.mu.Unlock()
	for _, c := range armed {
		c.Stop()
	}
}

// End stops a recording session and returns its blob. It is a no-op
// returning nil unless the session is recording.
func (s *Session) End() (*Blob, error) {
	s.endMu.Lock()
	defer s.endMu.Unlock()

	s.mu.Lock()
	if s.status != StatusRecording {
		s.mu.Unlock()
		return nil, nil
	}
	armed := s.armed
	s.armed = nil
	cancel, group, stream, p := s.cancel, s.group, s.stream, s.pump
	s.mu.Unlock()

	for _, c := range armed {
		c.Stop()
	}

	cancel()
	stopTracks(stream)
	err := group.Wait()
	p.flushNow()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = NewBlob(s.kind, stream.MimeType(), s.chunks...)
	s.chunks = nil
	s.stream = nil
	s.cancel = nil
	s.group = nil
	s.pump = nil
	s.status = StatusStopped

	if err != nil {
		s.logger.Errorw("recorder stopped with error", "session", s.id, "error", err)
	}
	s.logger.Infow("recording stopped", "session", s.id, "bytes", s.blob.Len(),
		"chunks", s.blob.Chunks(), "elapsed", time.Since(s.startedAt).Round(time.Millisecond))
	return s.blob, err
}

// Reset tears the session down from any state and returns it to idle.
func (s *Session) Reset() {
	if _, err := s.End(); err != nil {
		s.logger.Warnw("reset after recorder error", "error", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.req++
	s.status = StatusIdle
	s.chunks = nil
	s.blob = nil
}

// handleData is the recorder's data event. Empty data is dropped.
func (s *Session) handleData(data []byte) {
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	s.chunks = append(s.chunks, data)
	s.mu.Unlock()
}

// Status reports the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Recording reports whether the session is recording.
func (s *Session) Recording() bool { return s.Status() == StatusRecording }

// Kind is the media kind of the current or last session.
func (s *Session) Kind() MediaKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// Blob returns the blob of the last stopped session, or nil.
func (s *Session) Blob() *Blob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob
}

// Tap returns the live PCM tap of a recording audio stream, or nil.
func (s *Session) Tap() Tap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	t, _ := s.stream.(Tap)
	return t
}

// Buffered reports the number of bytes held in chunks so far.
func (s *Session) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chunks {
		n += len(c)
	}
	return n
}

func stopTracks(st Stream) {
	for _, t := range st.Tracks() {
		t.Stop()
	}
}
