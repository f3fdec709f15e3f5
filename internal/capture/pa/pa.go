// Package pa captures microphone audio through PortAudio.
package pa

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/jwulff/memo/internal/capture"
)

const framesPerBuffer = 1024

// Device opens the default input device as mono 16-bit PCM.
type Device struct {
	SampleRate int
}

func (d Device) Open(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	if c.Kind != capture.Audio {
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("portaudio captures audio only"))
	}
	rate := d.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("initialize portaudio: %w", err))
	}

	in := make([]int16, framesPerBuffer)
	ps, err := portaudio.OpenDefaultStream(1, 0, float64(rate), len(in), in)
	if err != nil {
		portaudio.Terminate()
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("open input stream: %w", err))
	}
	if err := ps.Start(); err != nil {
		ps.Close()
		portaudio.Terminate()
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("start input stream: %w", err))
	}

	return newStream(rate, ps, in, portaudio.Terminate), nil
}

// source is the blocking half of a PortAudio input stream: Read fills the
// buffer the stream was opened with.
type source interface {
	Read() error
	Stop() error
	Close() error
}

// drainTimeout bounds how long stop waits for a reader to take the last
// buffer.
const drainTimeout = 2 * time.Second

type stream struct {
	rate    int
	src     source
	in      []int16
	release func() error
	pr      *io.PipeReader
	pw      *io.PipeWriter

	once     sync.Once
	done     chan struct{}
	finished chan struct{}

	mu   sync.Mutex
	ring []float32
	head int
	fill int
}

func newStream(rate int, src source, in []int16, release func() error) *stream {
	pr, pw := io.Pipe()
	s := &stream{
		rate:     rate,
		src:      src,
		in:       in,
		release:  release,
		pr:       pr,
		pw:       pw,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		ring:     make([]float32, 2048),
	}
	go s.loop()
	return s
}

// loop delivers every buffer it reads, including one in flight when stop is
// called, and closes the pipe afterwards so the reader sees EOF.
func (s *stream) loop() {
	defer close(s.finished)
	defer func() {
		_ = s.src.Stop()
		_ = s.src.Close()
		_ = s.release()
	}()

	buf := make([]byte, len(s.in)*2)
	for {
		select {
		case <-s.done:
			s.pw.Close()
			return
		default:
		}
		if err := s.src.Read(); err != nil {
			s.pw.CloseWithError(fmt.Errorf("read input stream: %w", err))
			return
		}
		s.mu.Lock()
		for i, v := range s.in {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
			s.ring[s.head] = float32(v) / math.MaxInt16
			s.head = (s.head + 1) % len(s.ring)
		}
		s.fill = min(s.fill+len(s.in), len(s.ring))
		s.mu.Unlock()
		if _, err := s.pw.Write(buf); err != nil {
			return
		}
	}
}

func (s *stream) Read(p []byte) (int, error) { return s.pr.Read(p) }

func (s *stream) MimeType() string { return capture.PCMMimeType(s.rate, 1) }

func (s *stream) Tracks() []capture.Track { return []capture.Track{track{s}} }

func (s *stream) Latest(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(len(dst), s.fill)
	start := (s.head - n + len(s.ring)) % len(s.ring)
	for i := 0; i < n; i++ {
		dst[i] = s.ring[(start+i)%len(s.ring)]
	}
	return n
}

// stop ends the capture loop and waits until the device is released.
func (s *stream) stop() {
	s.once.Do(func() { close(s.done) })
	select {
	case <-s.finished:
	case <-time.After(drainTimeout):
		// Nobody is reading; unblock the pending write.
		s.pr.Close()
		<-s.finished
	}
}

type track struct{ s *stream }

func (t track) Kind() string { return "audio" }
func (t track) Stop()        { t.s.stop() }
