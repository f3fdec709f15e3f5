package capture

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"
)

// Synthetic is a Device that needs no hardware. Audio streams carry a PCM
// tone, video streams a repeating byte pattern. When Script is set the stream
// yields exactly those reads, in order, then blocks until stopped.
type Synthetic struct {
	SampleRate int
	Deny       error
	Script     [][]byte
}

func (d *Synthetic) Open(ctx context.Context, c Constraints) (Stream, error) {
	if d.Deny != nil {
		return nil, Unavailable(c.Kind, d.Deny)
	}
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(c.Kind, err)
	}
	rate := d.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	var script [][]byte
	if d.Script != nil {
		script = append(make([][]byte, 0, len(d.Script)), d.Script...)
	}
	s := &syntheticStream{
		kind:   c.Kind,
		rate:   rate,
		script: script,
		done:   make(chan struct{}),
		ring:   make([]float32, 1024),
	}
	s.tracks = append(s.tracks, &syntheticTrack{kind: "audio", stop: s.stop})
	if c.Kind == Video {
		s.tracks = append(s.tracks, &syntheticTrack{kind: "video", stop: s.stop})
	}
	return s, nil
}

type syntheticStream struct {
	kind   MediaKind
	rate   int
	script [][]byte
	tracks []Track

	once sync.Once
	done chan struct{}

	mu    sync.Mutex
	phase float64
	ring  []float32
	head  int
	fill  int
	frame int
}

func (s *syntheticStream) Tracks() []Track { return s.tracks }

func (s *syntheticStream) MimeType() string {
	if s.kind == Video {
		return "video/x-synthetic"
	}
	return PCMMimeType(s.rate, 1)
}

func (s *syntheticStream) stop() { s.once.Do(func() { close(s.done) }) }

func (s *syntheticStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(s.script) > 0 {
		next := s.script[0]
		n := copy(p, next)
		if n < len(next) {
			s.script[0] = next[n:]
		} else {
			s.script = s.script[1:]
		}
		s.mu.Unlock()
		return n, nil
	}
	scripted := s.script != nil
	s.mu.Unlock()

	if scripted {
		<-s.done
		return 0, io.EOF
	}

	select {
	case <-s.done:
		return 0, io.EOF
	case <-time.After(10 * time.Millisecond):
	}
	if s.kind == Video {
		return s.pattern(p), nil
	}
	return s.tone(p), nil
}

// tone writes 10ms of a 440Hz sine wave with a slow amplitude swell.
func (s *syntheticStream) tone(p []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := min(s.rate/100, len(p)/2)
	for i := 0; i < samples; i++ {
		amp := 0.3 + 0.2*math.Sin(float64(s.frame)/50)
		v := float32(amp * math.Sin(s.phase))
		s.phase += 2 * math.Pi * 440 / float64(s.rate)
		binary.LittleEndian.PutUint16(p[i*2:], uint16(int16(v*math.MaxInt16)))
		s.ring[s.head] = v
		s.head = (s.head + 1) % len(s.ring)
		s.fill = min(s.fill+1, len(s.ring))
	}
	s.frame++
	return samples * 2
}

func (s *syntheticStream) pattern(p []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(len(p), 4096)
	for i := 0; i < n; i++ {
		p[i] = byte(s.frame + i)
	}
	s.frame++
	return n
}

func (s *syntheticStream) Latest(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(len(dst), s.fill)
	start := (s.head - n + len(s.ring)) % len(s.ring)
	for i := 0; i < n; i++ {
		dst[i] = s.ring[(start+i)%len(s.ring)]
	}
	return n
}

type syntheticTrack struct {
	kind string
	stop func()
}

func (t *syntheticTrack) Kind() string { return t.kind }
func (t *syntheticTrack) Stop()        { t.stop() }
