package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// pump plays the role of a media recorder: one goroutine drains the stream
// into a pending buffer and another flushes that buffer as a data event on a
// fixed interval.
type pump struct {
	src      io.Reader
	interval time.Duration
	emit     func([]byte)

	mu      sync.Mutex
	pending []byte
}

func newPump(src io.Reader, interval time.Duration, emit func([]byte)) *pump {
	return &pump{src: src, interval: interval, emit: emit}
}

func (p *pump) read(ctx context.Context) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := p.src.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.pending = append(p.pending, buf[:n]...)
			p.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}
}

func (p *pump) flush(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.flushNow()
		}
	}
}

// flushNow emits whatever is pending, which may be nothing.
func (p *pump) flushNow() {
	p.mu.Lock()
	data := p.pending
	p.pending = nil
	p.mu.Unlock()
	p.emit(data)
}
