package visual

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/memo/internal/capture"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameInterval stands in for a display refresh signal, which terminals lack.
const FrameInterval = 16 * time.Millisecond

// FrameMsg asks the visualizer to sample and repaint. Frames from a stopped
// run carry a stale generation and are dropped.
type FrameMsg struct {
	Gen uint64
}

// Visualizer samples a tap once per frame while an audio session records.
type Visualizer struct {
	mu       sync.Mutex
	gen      uint64
	running  bool
	tap      capture.Tap
	analyzer *Analyzer
	data     []uint8
	styles   map[uint8]lipgloss.Style
}

// New returns a stopped visualizer.
func New() *Visualizer {
	return &Visualizer{
		analyzer: NewAnalyzer(),
		data:     make([]uint8, Bins),
		styles:   make(map[uint8]lipgloss.Style),
	}
}

// Start begins sampling tap and returns the first frame.
func (v *Visualizer) Start(tap capture.Tap) tea.Cmd {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.running = true
	v.tap = tap
	v.analyzer = NewAnalyzer()
	clear(v.data)
	return frame(v.gen)
}

// Stop cancels the frame loop and releases the tap.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.running {
		v.gen++
		v.running = false
	}
	v.tap = nil
}

// Running reports whether frames are being drawn.
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Update samples the tap for a current frame and schedules the next one.
func (v *Visualizer) Update(msg FrameMsg) tea.Cmd {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.running || msg.Gen != v.gen {
		return nil
	}
	v.analyzer.ByteFrequencyData(v.tap, v.data)
	return frame(v.gen)
}

// Levels returns a copy of the latest byte frequency data.
func (v *Visualizer) Levels() []uint8 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]uint8, len(v.data))
	copy(out, v.data)
	return out
}

// Render paints the whole surface: one column per bin from the lowest
// frequency up, bars growing from the bottom.
func (v *Visualizer) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	levels := v.Levels()
	cols := min(width, len(levels))

	heights := make([]int, cols)
	bars := make([]uint8, cols)
	for x := 0; x < cols; x++ {
		bars[x] = levels[x] / 2
		heights[x] = int(bars[x]) * height / 128
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		level := height - row
		for x := 0; x < width; x++ {
			if x < cols && heights[x] >= level {
				b.WriteString(v.style(bars[x]).Render("█"))
			} else {
				b.WriteByte(' ')
			}
		}
		if row < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// style colours a bar the way a canvas visualizer would: rgb(h+100, 50, 50).
func (v *Visualizer) style(barHeight uint8) lipgloss.Style {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.styles[barHeight]; ok {
		return s
	}
	red := min(int(barHeight)+100, 255)
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x3232", red)))
	v.styles[barHeight] = s
	return s
}

func frame(gen uint64) tea.Cmd {
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg {
		return FrameMsg{Gen: gen}
	})
}
