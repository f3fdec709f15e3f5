package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors for one theme.
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Divider lipgloss.Color
	Red     lipgloss.Color
	Yellow  lipgloss.Color
	Green   lipgloss.Color
	Panel   lipgloss.Color
}

var (
	darkPalette = Palette{
		Accent:  lipgloss.Color("#00FFFF"),
		Text:    lipgloss.Color("#FFFFFF"),
		Muted:   lipgloss.Color("#666666"),
		Divider: lipgloss.Color("#444444"),
		Red:     lipgloss.Color("#FF0000"),
		Yellow:  lipgloss.Color("#FFFF00"),
		Green:   lipgloss.Color("#00FF00"),
		Panel:   lipgloss.Color("#1E1E1E"),
	}
	lightPalette = Palette{
		Accent:  lipgloss.Color("#006D77"),
		Text:    lipgloss.Color("#111111"),
		Muted:   lipgloss.Color("#8A8A8A"),
		Divider: lipgloss.Color("#CCCCCC"),
		Red:     lipgloss.Color("#C62828"),
		Yellow:  lipgloss.Color("#B26A00"),
		Green:   lipgloss.Color("#2E7D32"),
		Panel:   lipgloss.Color("#F2F2F2"),
	}
)

// PaletteFor returns the palette of a theme.
func PaletteFor(t Theme) Palette {
	if t == Light {
		return lightPalette
	}
	return darkPalette
}

// Styles are the lipgloss styles reused by the pages, built per theme.
type Styles struct {
	Theme   Theme
	Palette Palette

	Title        lipgloss.Style
	Header       lipgloss.Style
	Status       lipgloss.Style
	RecordingDot lipgloss.Style
	IdleDot      lipgloss.Style
	Error        lipgloss.Style
	ErrorText    lipgloss.Style
	Timer        lipgloss.Style
	Timestamp    lipgloss.Style
	KindLabel    lipgloss.Style
	Selected     lipgloss.Style
	Dim          lipgloss.Style
	FooterKey    lipgloss.Style
	FooterDesc   lipgloss.Style
	Divider      lipgloss.Style
	Spinner      lipgloss.Style
	Notice       lipgloss.Style
	Result       lipgloss.Style
	MenuItem     lipgloss.Style
}

// NewStyles builds the style set for theme t.
func NewStyles(t Theme) Styles {
	p := PaletteFor(t)
	return Styles{
		Theme:   t,
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		Header: lipgloss.NewStyle().
			Foreground(p.Accent),

		Status: lipgloss.NewStyle().
			Foreground(p.Muted),

		RecordingDot: lipgloss.NewStyle().
			Foreground(p.Red).
			Bold(true),

		IdleDot: lipgloss.NewStyle().
			Foreground(p.Muted),

		Error: lipgloss.NewStyle().
			Foreground(p.Red).
			Bold(true),

		ErrorText: lipgloss.NewStyle().
			Foreground(p.Red),

		Timer: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),

		Timestamp: lipgloss.NewStyle().
			Foreground(p.Muted),

		KindLabel: lipgloss.NewStyle().
			Foreground(p.Accent),

		Selected: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(p.Muted),

		FooterKey: lipgloss.NewStyle().
			Foreground(p.Yellow).
			Bold(true),

		FooterDesc: lipgloss.NewStyle().
			Foreground(p.Muted),

		Divider: lipgloss.NewStyle().
			Foreground(p.Divider),

		Spinner: lipgloss.NewStyle().
			Foreground(p.Yellow),

		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Yellow).
			Foreground(p.Text).
			Padding(1, 3),

		Result: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Panel).
			Padding(0, 1),

		MenuItem: lipgloss.NewStyle().
			Foreground(p.Text),
	}
}
