// Package timer drives the elapsed-time display of a recording.
package timer

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Interval is how often a running timer rewrites its surface.
const Interval = time.Second

// Surface is where the timer writes its MM:SS text.
type Surface interface {
	SetText(string)
}

// TickMsg is delivered once per Interval while a timer runs. Ticks from a
// timer that has since been stopped or restarted carry a stale generation and
// are ignored.
type TickMsg struct {
	Gen uint64
	At  time.Time
}

// Timer writes elapsed time to one surface at a time.
type Timer struct {
	mu      sync.Mutex
	gen     uint64
	running bool
	start   time.Time
	surface Surface
	now     func() time.Time
}

// New returns a stopped timer.
func New() *Timer {
	return &Timer{now: time.Now}
}

// Start binds the timer to s, writes 00:00 and schedules the first tick.
// Starting a running timer abandons its previous surface.
func (t *Timer) Start(s Surface) tea.Cmd {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.running = true
	t.start = t.now()
	t.surface = s
	s.SetText(Format(0))
	return tick(t.gen)
}

// Stop cancels pending ticks. The surface keeps its last text.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.gen++
		t.running = false
	}
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Update handles a tick and returns the next one.
func (t *Timer) Update(msg TickMsg) tea.Cmd {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || msg.Gen != t.gen {
		return nil
	}
	t.surface.SetText(Format(t.now().Sub(t.start)))
	return tick(t.gen)
}

func tick(gen uint64) tea.Cmd {
	return tea.Tick(Interval, func(at time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: at}
	})
}

// Format renders d as zero-padded MM:SS. Minutes keep counting past 59.
func Format(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
