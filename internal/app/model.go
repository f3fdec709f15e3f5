// Package app is memo's terminal front end: a page navigator over the
// capture session, the transcription gateway and the history store.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/db"
	"github.com/jwulff/memo/internal/export"
	"github.com/jwulff/memo/internal/gateway"
	"github.com/jwulff/memo/internal/history"
	"github.com/jwulff/memo/internal/timer"
	"github.com/jwulff/memo/internal/ui"
	"github.com/jwulff/memo/internal/visual"

	tea "github.com/charmbracelet/bubbletea"
)

// Page identifies the active view. Exactly one page is active.
type Page int

const (
	PageHome Page = iota
	PageVideo
	PageAudio
	PageTranscription
	PageHistory
)

func (p Page) String() string {
	switch p {
	case PageVideo:
		return "Video"
	case PageAudio:
		return "Audio"
	case PageTranscription:
		return "Transcription"
	case PageHistory:
		return "History"
	}
	return "Home"
}

func pageFor(kind capture.MediaKind) Page {
	if kind == capture.Video {
		return PageVideo
	}
	return PageAudio
}

// homeMenu lists the pages reachable from home, in display order.
var homeMenu = []Page{PageVideo, PageAudio, PageHistory}

// display is a timer surface rendered by a recording page.
type display struct {
	text string
}

func (d *display) SetText(s string) { d.text = s }

// Deps are the collaborators the model drives.
type Deps struct {
	Session   *capture.Session
	Gateway   gateway.Gateway
	History   *history.Store
	KV        db.KV
	Theme     ui.Theme
	ExportDir string
	Notify    bool
	Logger    *zap.SugaredLogger

	// Optional overrides, mostly for tests.
	Clipboard func(string) error
	Notifier  func(title, message string) error
	Now       func() time.Time
}

// Model is the root bubbletea model for the memo TUI.
type Model struct {
	// Collaborators
	session   *capture.Session
	gateway   gateway.Gateway
	history   *history.Store
	kv        db.KV
	log       *zap.SugaredLogger
	clipboard func(string) error
	notifier  func(title, message string) error
	now       func() time.Time
	exportDir string
	notify    bool

	// Periodic work bound to the session
	timer      *timer.Timer
	vis        *visual.Visualizer
	videoTimer *display
	audioTimer *display

	// Navigation
	page       Page
	menuCursor int

	// Recording pages
	facing    capture.Facing
	starting  bool
	stopping  bool
	videoDone bool
	audioDone bool

	// Transcription page
	transcribing bool
	pendingKind  capture.MediaKind
	result       string
	resultErr    bool
	showResult   bool
	copied       bool

	// History page
	records       []history.Record
	historyCursor int
	historyErr    string

	// Feedback
	notice     string
	statusText string

	// UI state
	theme  ui.Theme
	styles ui.Styles
	width  int
	height int
}

// New creates a Model on the home page.
func New(d Deps) Model {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.Notifier == nil {
		d.Notifier = func(title, message string) error {
			return beeep.Notify(title, message, "")
		}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Theme == "" {
		d.Theme = ui.Dark
	}
	if d.ExportDir == "" {
		d.ExportDir = "."
	}

	return Model{
		session:    d.Session,
		gateway:    d.Gateway,
		history:    d.History,
		kv:         d.KV,
		log:        d.Logger,
		clipboard:  d.Clipboard,
		notifier:   d.Notifier,
		now:        d.Now,
		exportDir:  d.ExportDir,
		notify:     d.Notify,
		timer:      timer.New(),
		vis:        visual.New(),
		videoTimer: &display{text: timer.Format(0)},
		audioTimer: &display{text: timer.Format(0)},
		page:       PageHome,
		facing:     capture.FacingUser,
		theme:      d.Theme,
		styles:     ui.NewStyles(d.Theme),
	}
}

// Init sets the terminal title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("memo")
}

// Page returns the active page.
func (m Model) Page() Page {
	return m.page
}

// startRecordingCmd acquires the capture device off the update loop.
func startRecordingCmd(s *capture.Session, kind capture.MediaKind, facing capture.Facing) tea.Cmd {
	return func() tea.Msg {
		return RecordingStartedMsg{Kind: kind, Err: s.Begin(context.Background(), kind, facing)}
	}
}

// stopRecordingCmd ends the session off the update loop; a device can take
// seconds to finalize its output.
func stopRecordingCmd(s *capture.Session, kind capture.MediaKind) tea.Cmd {
	return func() tea.Msg {
		blob, err := s.End()
		return RecordingStoppedMsg{Kind: kind, Blob: blob, Err: err}
	}
}

// transcribeCmd runs the gateway and saves a successful result to history.
func (m Model) transcribeCmd(blob *capture.Blob) tea.Cmd {
	gw, store, log := m.gateway, m.history, m.log
	notify, notifier := m.notify, m.notifier
	kind := blob.Kind()
	return func() tea.Msg {
		ctx := context.Background()
		text, err := gw.Transcribe(ctx, blob)
		msg := TranscriptionDoneMsg{Kind: kind, Text: text, Err: err}
		if err != nil {
			log.Warnw("transcription failed", "kind", kind, "bytes", blob.Len(), "error", err)
			return msg
		}

		rec, err := store.Append(ctx, text, kind)
		if err != nil {
			log.Errorw("save transcription", "error", err)
			msg.SaveErr = err
		} else {
			msg.Record = &rec
		}

		if notify {
			if err := notifier("memo", kind.Label()+" transcription ready"); err != nil {
				log.Debugw("desktop notification failed", "error", err)
			}
		}
		return msg
	}
}

// loadHistoryCmd reads the history list.
func loadHistoryCmd(store *history.Store) tea.Cmd {
	return func() tea.Msg {
		records, err := store.List(context.Background())
		return HistoryLoadedMsg{Records: records, Err: err}
	}
}

// toggleThemeCmd persists the opposite theme.
func toggleThemeCmd(kv db.KV, current ui.Theme) tea.Cmd {
	return func() tea.Msg {
		t, err := ui.ToggleTheme(context.Background(), kv, current)
		return ThemeToggledMsg{Theme: t, Err: err}
	}
}

// saveRecordingCmd downloads the blob into dir.
func saveRecordingCmd(dir string, blob *capture.Blob, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path, err := export.SaveRecording(dir, blob, now)
		return RecordingSavedMsg{Path: path, Err: err}
	}
}

// saveTranscriptCmd downloads text in the requested format.
func saveTranscriptCmd(dir, text string, format export.Format, now time.Time) tea.Cmd {
	return func() tea.Msg {
		res, err := export.SaveTranscript(dir, text, format, now)
		return TranscriptSavedMsg{Result: res, Err: err}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: write(text)}
	}
}

// clearCopiedCmd restores the copy label after a moment.
func clearCopiedCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return ClearCopiedMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case timer.TickMsg:
		return m, m.timer.Update(msg)

	case visual.FrameMsg:
		return m, m.vis.Update(msg)

	case RecordingStartedMsg:
		return m.handleRecordingStarted(msg)

	case RecordingStoppedMsg:
		if !m.stopping {
			return m, nil
		}
		m.stopping = false
		if msg.Err != nil {
			m.log.Warnw("recorder error", "kind", msg.Kind, "error", msg.Err)
		}
		if msg.Blob != nil {
			m.setDone(msg.Kind, true)
		}
		return m, nil

	case TranscriptionDoneMsg:
		m.transcribing = false
		m.result = gateway.Message(msg.Text, msg.Err)
		m.resultErr = msg.Err != nil
		m.showResult = true
		m.copied = false
		if msg.SaveErr != nil {
			m.statusText = "Could not save to history: " + msg.SaveErr.Error()
		}
		if msg.Record != nil && m.page == PageHistory {
			return m, loadHistoryCmd(m.history)
		}
		return m, nil

	case HistoryLoadedMsg:
		m.records = nil
		m.historyErr = ""
		switch {
		case errors.Is(msg.Err, history.ErrEmpty):
		case msg.Err != nil:
			m.historyErr = msg.Err.Error()
			m.log.Errorw("load history", "error", msg.Err)
		default:
			m.records = msg.Records
		}
		if m.historyCursor >= len(m.records) {
			m.historyCursor = max(0, len(m.records)-1)
		}
		return m, nil

	case ThemeToggledMsg:
		if msg.Err != nil {
			m.statusText = "Could not save theme: " + msg.Err.Error()
			m.log.Warnw("toggle theme", "error", msg.Err)
		}
		m.theme = msg.Theme
		m.styles = ui.NewStyles(msg.Theme)
		return m, nil

	case RecordingSavedMsg:
		if msg.Err != nil {
			m.statusText = "Download failed: " + msg.Err.Error()
			m.log.Errorw("save recording", "error", msg.Err)
			return m, nil
		}
		m.statusText = "Saved " + msg.Path
		return m, nil

	case TranscriptSavedMsg:
		if msg.Err != nil {
			m.statusText = "Download failed: " + msg.Err.Error()
			m.log.Errorw("save transcript", "error", msg.Err)
			return m, nil
		}
		m.statusText = "Saved " + msg.Result.Path
		if msg.Result.Fallback {
			m.notice = msg.Result.Notice
		}
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.statusText = "Copy failed: " + msg.Err.Error()
			return m, nil
		}
		m.copied = true
		return m, clearCopiedCmd()

	case ClearCopiedMsg:
		m.copied = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleRecordingStarted(msg RecordingStartedMsg) (tea.Model, tea.Cmd) {
	m.starting = false
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, capture.ErrDeviceUnavailable):
			m.notice = deviceNotice(msg.Kind)
		case errors.Is(msg.Err, capture.ErrSessionActive):
			m.log.Errorw("recording requested while a session is active", "kind", msg.Kind)
		default:
			// Torn down by navigation while the device was being acquired.
			m.log.Debugw("recording start abandoned", "kind", msg.Kind, "error", msg.Err)
		}
		return m, nil
	}

	if m.page != pageFor(msg.Kind) {
		m.session.Reset()
		return m, nil
	}

	surface := m.videoTimer
	if msg.Kind == capture.Audio {
		surface = m.audioTimer
	}
	cmds := []tea.Cmd{m.timer.Start(surface)}
	m.session.Arm(m.timer)

	if msg.Kind == capture.Audio {
		if tap := m.session.Tap(); tap != nil {
			cmds = append(cmds, m.vis.Start(tap))
			m.session.Arm(m.vis)
		}
	}
	return m, tea.Batch(cmds...)
}

func deviceNotice(kind capture.MediaKind) string {
	if kind == capture.Video {
		return "Could not access camera. Please check permissions."
	}
	return "Error starting audio recording. Please check microphone permissions."
}

// navigate switches pages and runs the entry and exit effects. It always
// succeeds.
func (m *Model) navigate(p Page) tea.Cmd {
	from := m.page
	m.page = p
	m.statusText = ""

	if (from == PageVideo || from == PageAudio) && p != from {
		m.teardown()
	}

	switch p {
	case PageHome:
		m.teardown()
		m.videoDone = false
		m.audioDone = false
		m.videoTimer.SetText(timer.Format(0))
		m.audioTimer.SetText(timer.Format(0))

	case PageTranscription:
		if m.transcribing {
			m.showResult = false
			m.copied = false
		}

	case PageHistory:
		return loadHistoryCmd(m.history)
	}
	return nil
}

// teardown stops any capture and the periodic work bound to it.
func (m *Model) teardown() {
	m.session.Reset()
	m.timer.Stop()
	m.vis.Stop()
	m.starting = false
	m.stopping = false
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.teardown()
	return m, tea.Quit
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		return m.quit()
	}

	// A notice blocks until dismissed.
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}

	switch key {
	case KeyQuit, KeyQuitUpper:
		return m.quit()
	case KeyToggleTheme:
		return m, toggleThemeCmd(m.kv, m.theme)
	case KeyEsc:
		if m.page != PageHome {
			return m, m.navigate(PageHome)
		}
		return m, nil
	}

	switch m.page {
	case PageHome:
		return m.handleHomeKey(key)
	case PageVideo, PageAudio:
		return m.handleRecordingKey(key)
	case PageTranscription:
		return m.handleTranscriptionKey(key)
	case PageHistory:
		return m.handleHistoryKey(key)
	}
	return m, nil
}

func (m Model) handleHomeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyUp, KeyK:
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case KeyDown, KeyJ:
		if m.menuCursor < len(homeMenu)-1 {
			m.menuCursor++
		}
	case KeyEnter:
		return m, m.navigate(homeMenu[m.menuCursor])
	case KeyVideo:
		return m, m.navigate(PageVideo)
	case KeyAudio:
		return m, m.navigate(PageAudio)
	case KeyHistory:
		return m, m.navigate(PageHistory)
	}
	return m, nil
}

func (m Model) handleRecordingKey(key string) (tea.Model, tea.Cmd) {
	kind := capture.Audio
	if m.page == PageVideo {
		kind = capture.Video
	}

	switch key {
	case KeySpace:
		if m.starting || m.stopping {
			return m, nil
		}
		if m.session.Recording() {
			// The timer and visualizer stop here; the device is released
			// by the command.
			m.stopping = true
			m.session.Disarm()
			return m, stopRecordingCmd(m.session, kind)
		}
		// Start over from a stopped recording.
		m.session.Reset()
		m.setDone(kind, false)
		m.statusText = ""
		m.starting = true
		return m, startRecordingCmd(m.session, kind, m.facing)

	case KeyFacing:
		if kind == capture.Video && !m.session.Recording() && !m.starting {
			if m.facing == capture.FacingUser {
				m.facing = capture.FacingEnvironment
			} else {
				m.facing = capture.FacingUser
			}
		}

	case KeyDownload:
		if blob := m.finished(kind); blob != nil {
			return m, saveRecordingCmd(m.exportDir, blob, m.now())
		}

	case KeyTranscribe:
		if blob := m.finished(kind); blob != nil {
			m.transcribing = true
			m.pendingKind = kind
			nav := m.navigate(PageTranscription)
			return m, tea.Batch(nav, m.transcribeCmd(blob))
		}
	}
	return m, nil
}

func (m *Model) setDone(kind capture.MediaKind, done bool) {
	if kind == capture.Video {
		m.videoDone = done
	} else {
		m.audioDone = done
	}
}

// finished returns the stopped recording of kind, if its actions are shown.
func (m Model) finished(kind capture.MediaKind) *capture.Blob {
	done := m.audioDone
	if kind == capture.Video {
		done = m.videoDone
	}
	if !done {
		return nil
	}
	blob := m.session.Blob()
	if blob == nil || blob.Kind() != kind {
		return nil
	}
	return blob
}

func (m Model) handleTranscriptionKey(key string) (tea.Model, tea.Cmd) {
	if key == KeyHistory {
		return m, m.navigate(PageHistory)
	}
	if !m.showResult {
		return m, nil
	}

	if key == KeyCopy {
		return m, copyCmd(m.clipboard, m.result)
	}
	if f, ok := saveKeys[key]; ok {
		return m, saveTranscriptCmd(m.exportDir, m.result, f, m.now())
	}
	return m, nil
}

func (m Model) handleHistoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyUp, KeyK:
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case KeyDown, KeyJ:
		if m.historyCursor < len(m.records)-1 {
			m.historyCursor++
		}
	case KeyEnter:
		if m.historyCursor < len(m.records) {
			m.openRecord(m.records[m.historyCursor])
		}
	}
	return m, nil
}

// openRecord shows a saved transcription. History is not modified.
func (m *Model) openRecord(rec history.Record) {
	m.navigate(PageTranscription)
	m.result = rec.Text
	m.resultErr = false
	m.showResult = true
	m.copied = false
}
