// Package ffmpeg captures camera and microphone through an ffmpeg subprocess
// that writes fragmented MP4 to stdout.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/jwulff/memo/internal/capture"
)

// Device describes the ffmpeg inputs for each camera.
type Device struct {
	Binary      string // defaults to "ffmpeg"
	InputFormat string // e.g. v4l2, avfoundation
	Front       string // input for capture.FacingUser
	Rear        string // input for capture.FacingEnvironment
	AudioFormat string // e.g. alsa, pulse; empty when Front/Rear already carry audio
	AudioInput  string
}

// Args builds the ffmpeg command line for c.
func (d Device) Args(c capture.Constraints) ([]string, error) {
	if c.Kind != capture.Video {
		return nil, fmt.Errorf("ffmpeg device captures video only")
	}
	input := d.Front
	if c.Facing == capture.FacingEnvironment {
		input = d.Rear
	}
	if input == "" {
		return nil, fmt.Errorf("no %s camera configured", c.Facing)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	if d.InputFormat != "" {
		args = append(args, "-f", d.InputFormat)
	}
	args = append(args, "-i", input)
	if c.Audio && d.AudioInput != "" {
		if d.AudioFormat != "" {
			args = append(args, "-f", d.AudioFormat)
		}
		args = append(args, "-i", d.AudioInput)
	}
	args = append(args,
		"-c:v", "libx264", "-preset", "veryfast", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4", "pipe:1",
	)
	return args, nil
}

func (d Device) Open(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	args, err := d.Args(c)
	if err != nil {
		return nil, capture.Unavailable(c.Kind, err)
	}
	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("ffmpeg not found: %w", err))
	}

	// The process outlives ctx, which only bounds the request. Stdout is an
	// os.Pipe owned here so Wait never closes the read end under the pump.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, capture.Unavailable(c.Kind, err)
	}
	cmd := exec.Command(path, args...)
	cmd.Stdout = pw
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, capture.Unavailable(c.Kind, fmt.Errorf("start ffmpeg: %w", err))
	}
	pw.Close()

	s := &stream{cmd: cmd, out: pr, exited: make(chan error, 1), eof: make(chan struct{})}
	go func() { s.exited <- cmd.Wait() }()

	// A device that is busy or denied makes ffmpeg exit almost immediately.
	select {
	case err := <-s.exited:
		pr.Close()
		msg := bytes.TrimSpace(stderr.Bytes())
		if err == nil {
			err = errors.New("ffmpeg exited before producing output")
		}
		if len(msg) > 0 {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, capture.Unavailable(c.Kind, err)
	case <-ctx.Done():
		s.abort()
		return nil, capture.Unavailable(c.Kind, ctx.Err())
	case <-time.After(300 * time.Millisecond):
	}
	return s, nil
}

// drainTimeout bounds how long stop waits for the reader to consume what
// ffmpeg wrote before exiting.
const drainTimeout = 2 * time.Second

type stream struct {
	cmd     *exec.Cmd
	out     *os.File
	exited  chan error
	eof     chan struct{}
	eofOnce sync.Once
	once    sync.Once
}

func (s *stream) Read(p []byte) (int, error) {
	n, err := s.out.Read(p)
	if err == io.EOF {
		s.eofOnce.Do(func() { close(s.eof) })
	}
	return n, err
}

func (s *stream) MimeType() string { return "video/mp4" }

func (s *stream) Tracks() []capture.Track {
	return []capture.Track{track{"video", s}, track{"audio", s}}
}

// stop asks ffmpeg to finish the file, killing it if it does not exit, then
// waits for the reader to reach the end of the output before closing it.
func (s *stream) stop() {
	s.once.Do(func() {
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.exited:
		case <-time.After(2 * time.Second):
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
		select {
		case <-s.eof:
		case <-time.After(drainTimeout):
		}
		s.out.Close()
	})
}

// abort kills a stream nobody reads from.
func (s *stream) abort() {
	s.once.Do(func() {
		_ = s.cmd.Process.Kill()
		<-s.exited
		s.out.Close()
	})
}

type track struct {
	kind string
	s    *stream
}

func (t track) Kind() string { return t.kind }
func (t track) Stop()        { t.s.stop() }
