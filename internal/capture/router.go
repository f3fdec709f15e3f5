package capture

import (
	"context"
	"errors"
)

// Router dispatches Open to the device configured for the requested kind.
type Router struct {
	Video Device
	Audio Device
}

func (r Router) Open(ctx context.Context, c Constraints) (Stream, error) {
	d := r.Audio
	if c.Kind == Video {
		d = r.Video
	}
	if d == nil {
		return nil, Unavailable(c.Kind, errors.New("no device configured"))
	}
	return d.Open(ctx, c)
}
