// Package capture owns the recording session: it acquires a capture stream from
// a Device, buffers the bytes the stream produces into ordered chunks, and
// hands back an immutable Blob when the session stops.
package capture

import (
	"context"
	"fmt"
	"io"
)

// MediaKind is the kind of media a session records.
type MediaKind string

const (
	Video MediaKind = "video"
	Audio MediaKind = "audio"
)

// ParseMediaKind accepts "video" or "audio".
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case Video, Audio:
		return MediaKind(s), nil
	}
	return "", fmt.Errorf("unknown media kind %q (want video or audio)", s)
}

// Label returns the capitalised kind for display.
func (k MediaKind) Label() string {
	if k == Video {
		return "Video"
	}
	return "Audio"
}

// Facing selects the camera for video sessions.
type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

// Status is the state of a Session.
type Status int

const (
	StatusIdle Status = iota
	StatusRequesting
	StatusRecording
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRequesting:
		return "requesting"
	case StatusRecording:
		return "recording"
	case StatusStopped:
		return "stopped"
	}
	return "idle"
}

// Constraints describe what a session asks the device for.
type Constraints struct {
	Kind   MediaKind
	Facing Facing // video only
	Audio  bool
}

// ConstraintsFor derives the device request for a media kind. Video sessions
// always capture audio as well.
func ConstraintsFor(kind MediaKind, facing Facing) Constraints {
	c := Constraints{Kind: kind, Audio: true}
	if kind == Video {
		if facing == "" {
			facing = FacingUser
		}
		c.Facing = facing
	}
	return c
}

// Device acquires live capture streams.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is a live capture source. Reads return encoded media bytes until
// every track has been stopped.
type Stream interface {
	io.Reader
	Tracks() []Track
	MimeType() string
}

// Track is one live source inside a stream. Stop must be idempotent.
type Track interface {
	Kind() string
	Stop()
}

// Tap exposes the most recent PCM samples of an audio stream, normalised to
// [-1, 1]. Latest fills dst with the newest samples and returns the count.
type Tap interface {
	Latest(dst []float32) int
}

// Canceler is anything that must stop when a session leaves Recording.
type Canceler interface {
	Stop()
}
