package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable matches any failure to acquire a capture device.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrSessionActive is returned by Begin when a session is not idle.
	ErrSessionActive = errors.New("capture session already active")

	errAborted = errors.New("capture session reset while requesting device")
)

// DeviceUnavailableError reports a denied or missing capture device.
type DeviceUnavailableError struct {
	Kind MediaKind
	Err  error
}

func (e *DeviceUnavailableError) Error() string {
	what := "microphone"
	if e.Kind == Video {
		what = "camera"
	}
	if e.Err == nil {
		return fmt.Sprintf("could not access %s", what)
	}
	return fmt.Sprintf("could not access %s: %v", what, e.Err)
}

func (e *DeviceUnavailableError) Unwrap() error { return e.Err }

func (e *DeviceUnavailableError) Is(target error) bool {
	return target == ErrDeviceUnavailable
}

// Unavailable wraps err as a DeviceUnavailableError unless it already is one.
func Unavailable(kind MediaKind, err error) error {
	var du *DeviceUnavailableError
	if errors.As(err, &du) {
		return err
	}
	return &DeviceUnavailableError{Kind: kind, Err: err}
}
