package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/export"
	"github.com/jwulff/memo/internal/timer"
)

// visualizerHeight is the number of rows the audio bars use.
const visualizerHeight = 8

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var body string
	switch m.page {
	case PageHome:
		body = m.renderHome()
	case PageVideo:
		body = m.renderRecording(capture.Video)
	case PageAudio:
		body = m.renderRecording(capture.Audio)
	case PageTranscription:
		body = m.renderTranscription()
	case PageHistory:
		body = m.renderHistory()
	}

	if m.notice != "" {
		body = m.renderNotice()
	}

	divider := m.styles.Divider.Render(strings.Repeat("─", m.width))
	sections := []string{m.renderHeader(), divider, body, divider}
	if m.statusText != "" {
		sections = append(sections, m.styles.Status.Render(m.statusText))
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("MEMO")
	page := m.styles.Dim.Render(" — " + m.page.String())
	theme := m.styles.Dim.Render(fmt.Sprintf("  [%s]", m.theme))
	return title + page + theme
}

func (m Model) renderHome() string {
	lines := []string{
		m.styles.Header.Render("Record, transcribe and keep your notes."),
		"",
	}
	labels := map[Page]string{
		PageVideo:   "Record Video",
		PageAudio:   "Record Audio",
		PageHistory: "Transcription History",
	}
	for i, p := range homeMenu {
		if i == m.menuCursor {
			lines = append(lines, m.styles.Selected.Render("> "+labels[p]))
		} else {
			lines = append(lines, m.styles.MenuItem.Render("  "+labels[p]))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRecording(kind capture.MediaKind) string {
	surface := m.audioTimer
	done := m.audioDone
	if kind == capture.Video {
		surface = m.videoTimer
		done = m.videoDone
	}

	var lines []string

	var dot string
	switch {
	case m.stopping:
		dot = m.styles.Spinner.Render("⟳ Finishing recording...")
	case m.session.Recording() && m.session.Kind() == kind:
		dot = m.styles.RecordingDot.Render("● REC")
	case m.starting:
		dot = m.styles.Spinner.Render("⟳ Requesting device...")
	default:
		dot = m.styles.IdleDot.Render("○ IDLE")
	}
	lines = append(lines, dot+"  "+m.styles.Timer.Render(surface.text))

	if kind == capture.Video {
		camera := "Front camera"
		if m.facing == capture.FacingEnvironment {
			camera = "Rear camera"
		}
		lines = append(lines, m.styles.KindLabel.Render(camera))
		if m.session.Recording() {
			lines = append(lines, m.styles.Dim.Render(fmt.Sprintf("Preview: %s captured", humanBytes(m.session.Buffered()))))
		}
	} else {
		lines = append(lines, "", m.vis.Render(m.width, visualizerHeight))
	}

	if done {
		if blob := m.session.Blob(); blob != nil {
			lines = append(lines, "", m.styles.Dim.Render(fmt.Sprintf("Recorded %s (%s)", humanBytes(blob.Len()), blob.MimeType())))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTranscription() string {
	if !m.showResult {
		if m.transcribing {
			label := fmt.Sprintf("⟳ Transcribing your %s recording...", m.pendingKind)
			return m.styles.Spinner.Render(label)
		}
		return m.styles.Dim.Render("Nothing to show yet.")
	}

	width := max(20, m.width-4)
	var lines []string
	for _, l := range wrapText(m.result, width) {
		if m.resultErr {
			lines = append(lines, m.styles.ErrorText.Render(l))
		} else {
			lines = append(lines, l)
		}
	}
	return m.styles.Result.Width(width + 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHistory() string {
	if m.historyErr != "" {
		return m.styles.Error.Render("Error: ") + m.styles.ErrorText.Render(m.historyErr)
	}
	if len(m.records) == 0 {
		return m.styles.Dim.Render("No transcription history yet.")
	}

	var lines []string
	for i, r := range m.records {
		title := fmt.Sprintf("%s Transcription", r.MediaType.Label())
		when := r.Time().Local().Format("2006-01-02 15:04:05")
		if i == m.historyCursor {
			lines = append(lines, m.styles.Selected.Render("> "+title)+"  "+m.styles.Timestamp.Render(when))
		} else {
			lines = append(lines, "  "+title+"  "+m.styles.Timestamp.Render(when))
		}
		preview := strings.ReplaceAll(r.Preview, "\n", " ")
		lines = append(lines, m.styles.Dim.Render("    "+truncateToWidth(preview, max(10, m.width-4))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderNotice() string {
	box := m.styles.Notice.Render(m.notice + "\n\n" + m.styles.Dim.Render("Press any key"))
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}

func (m Model) key(k, desc string) string {
	return m.styles.FooterKey.Render(k) + m.styles.FooterDesc.Render(" "+desc)
}

func (m Model) renderFooter() string {
	var parts []string

	switch m.page {
	case PageHome:
		parts = append(parts, m.key("↑↓", "Nav"), m.key("Enter", "Open"), m.key("v/a/h", "Go"))
	case PageVideo, PageAudio:
		kind := capture.Audio
		if m.page == PageVideo {
			kind = capture.Video
		}
		if m.session.Recording() {
			parts = append(parts, m.key("Space", "Stop"))
		} else {
			parts = append(parts, m.key("Space", "Record"))
		}
		if kind == capture.Video && !m.session.Recording() {
			parts = append(parts, m.key("f", "Camera"))
		}
		if m.finished(kind) != nil {
			parts = append(parts, m.key("d", "Download"), m.key("t", "Transcribe"))
		}
		parts = append(parts, m.key("Esc", "Home"))
	case PageTranscription:
		if m.showResult {
			copyLabel := "Copy"
			if m.copied {
				copyLabel = "Copied!"
			}
			parts = append(parts, m.key(KeyCopy, copyLabel))
			for _, f := range export.Formats {
				parts = append(parts, m.key(saveKey(f), strings.ToUpper(string(f))))
			}
		}
		parts = append(parts, m.key("h", "History"), m.key("Esc", "Home"))
	case PageHistory:
		parts = append(parts, m.key("↑↓", "Nav"), m.key("Enter", "Open"), m.key("Esc", "Home"))
	}

	parts = append(parts, m.key("T", "Theme"), m.key("q", "Quit"))
	return strings.Join(parts, "  ")
}

// TimerText returns the text of a recording page's timer display.
func (m Model) TimerText(kind capture.MediaKind) string {
	if kind == capture.Video {
		return m.videoTimer.text
	}
	return m.audioTimer.text
}

// Helpers

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

var _ timer.Surface = (*display)(nil)
