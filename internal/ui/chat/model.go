// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/export"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/ui/components"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// =============================================================================
// SCREENS
// =============================================================================

// Screen is the top-level view, derived from the session state.
type Screen int

const (
	ScreenUpload Screen = iota // choosing and uploading a document
	ScreenChat                 // asking questions
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures New.
type Options struct {
	Machine *session.Machine
	Pinger  Pinger       // may be nil
	History HistorySaver // may be nil
	Config  *config.Config
	Theme   *styles.Theme
	Logger  *zerolog.Logger // nil disables logging
}

// Model is the Bubble Tea model for the docqa UI.
type Model struct {
	machine *session.Machine
	pinger  Pinger
	history HistorySaver
	log     zerolog.Logger

	// Styling
	theme     *styles.Theme
	header    *components.Header
	statusBar *components.StatusBar

	// Dimensions
	width  int
	height int

	// UI Components
	pathInput textinput.Model
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	keyMap    KeyMap

	// Display toggles
	showCitations bool
	compact       bool

	// Export settings
	exportFormat string
	exportDir    string

	// Transient status line text
	notice    string
	noticeErr bool

	// Transcript version last drawn into the viewport
	renderedVersion uint64
}

// New creates the model. Options.Machine is required.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	log := logging.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	pathInput := textinput.New()
	pathInput.Prompt = "PDF path: "
	pathInput.Placeholder = "~/Documents/manual.pdf"
	pathInput.CharLimit = 1024
	pathInput.Focus()

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Ask a question about your document..."
	input.CharLimit = 4096

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	exportDir, err := cfg.ExportDir()
	if err != nil {
		exportDir = "."
	}

	m := Model{
		machine:       opts.Machine,
		pinger:        opts.Pinger,
		history:       opts.History,
		log:           log,
		theme:         theme,
		header:        components.NewHeader(theme),
		statusBar:     components.NewStatusBar(theme),
		pathInput:     pathInput,
		input:         input,
		viewport:      vp,
		spinner:       sp,
		keyMap:        DefaultKeyMap(),
		showCitations: cfg.UI.ShowCitations,
		compact:       cfg.UI.CompactMode,
		exportFormat:  cfg.Export.Format,
		exportDir:     exportDir,
	}
	m.syncFocus()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the spinner, and the first health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, pingCmd(m.pinger))
}

// View renders the current screen.
func (m Model) View() string {
	return m.render()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Screen returns the screen for the current session state.
func (m Model) Screen() Screen {
	if m.machine.State() == session.StateReady {
		return ScreenChat
	}
	return ScreenUpload
}

// Machine returns the session the model drives.
func (m Model) Machine() *session.Machine {
	return m.machine
}

// Notice returns the current status line text and whether it is an error.
func (m Model) Notice() (string, bool) {
	return m.notice, m.noticeErr
}

// ShowCitations reports whether source passages are expanded.
func (m Model) ShowCitations() bool {
	return m.showCitations
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeErr = false
}

// syncFocus focuses the input that belongs to the current screen.
func (m *Model) syncFocus() {
	if m.Screen() == ScreenChat {
		m.pathInput.Blur()
		m.input.Focus()
		return
	}
	m.input.Blur()
	m.pathInput.Focus()
}

// refreshViewport re-renders the transcript and follows new messages.
func (m *Model) refreshViewport() {
	content := components.RenderTranscript(m.machine.Transcript(), components.TranscriptOptions{
		Width:         m.viewport.Width,
		ShowCitations: m.showCitations,
		Compact:       m.compact,
	}, m.theme)
	m.viewport.SetContent(content)

	if v := m.machine.TranscriptVersion(); v != m.renderedVersion {
		m.renderedVersion = v
		m.viewport.GotoBottom()
	}
}

func (m *Model) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir
	return opts
}
