// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/export"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/storage"
	"github.com/jeranaias/docqa-tui/internal/ui/components"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// Layout heights used to size the viewport. They must match view.go.
const (
	headerHeight    = 1
	inputAreaHeight = 2 // border + input line
	statusBarHeight = 1
	typingRowHeight = 1
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case queryDoneMsg:
		return m.handleQueryDone(msg)

	case backendStatusMsg:
		if msg.err != nil {
			m.header.Backend = components.BackendOffline
			m.log.Debug().Err(msg.err).Msg("backend health check failed")
		} else {
			m.header.Backend = components.BackendOnline
		}
		return m, nil

	case historySavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("id", msg.id).Msg("failed to save history")
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setNotice("Export failed: "+msg.err.Error(), true)
			m.log.Warn().Err(msg.err).Msg("export failed")
		} else {
			m.setNotice("Exported to "+msg.path, false)
		}
		return m, nil

	case tea.MouseMsg:
		if m.Screen() == ScreenChat {
			switch msg.Type {
			case tea.MouseWheelUp:
				m.viewport.LineUp(3)
			case tea.MouseWheelDown:
				m.viewport.LineDown(3)
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.header.Width = m.width
	m.statusBar.Width = m.width

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-headerHeight-inputAreaHeight-statusBarHeight-typingRowHeight, 1)

	// InputContainer padding (2) plus the prompt.
	m.input.Width = max(m.width-4-len(m.input.Prompt), 10)
	// UploadBox horizontal padding (6) plus the prompt and cursor.
	m.pathInput.Width = max(uploadBoxWidth(m.width)-7-len(m.pathInput.Prompt), 10)

	m.refreshViewport()
	return m, nil
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	if err := m.machine.ResolveUpload(msg.outcome); err != nil {
		m.log.Debug().Err(err).Msg("stale upload outcome")
		return m, nil
	}

	var cmd tea.Cmd
	if m.machine.State() == session.StateReady {
		m.clearNotice()
		m.header.Document = m.machine.CollectionRef()
		m.input.Reset()
		cmd = pingCmd(m.pinger)
	} else {
		m.setNotice(uploadErrorText(m.machine.LastError()), true)
	}
	m.syncFocus()
	m.refreshViewport()
	return m, tea.Batch(cmd, m.saveHistory())
}

func (m Model) handleQueryDone(msg queryDoneMsg) (tea.Model, tea.Cmd) {
	if err := m.machine.ResolveQuery(msg.outcome); err != nil {
		m.log.Debug().Err(err).Msg("stale query outcome")
		return m, nil
	}
	if msg.outcome.Err != nil {
		m.setNotice("Request failed", true)
	}
	m.refreshViewport()
	return m, m.saveHistory()
}

func (m Model) saveHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	return saveHistoryCmd(m.history, storage.FromMachine(m.machine))
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Reset):
		return m.resetSession()
	}

	if m.Screen() == ScreenUpload {
		if key.Matches(msg, m.keyMap.Submit) {
			return m.submitUpload()
		}
		return m.updateInputs(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitQuestion()

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keyMap.ToggleCitations):
		m.showCitations = !m.showCitations
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		return m.exportTranscript()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m.updateInputs(msg)
}

// updateInputs forwards a message to the focused text input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.Screen() == ScreenChat {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// submitUpload chooses the typed file, or uploads the chosen one when the
// path line is empty.
func (m Model) submitUpload() (tea.Model, tea.Cmd) {
	if m.machine.State() == session.StateUploading {
		return m, nil
	}

	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		if !m.machine.CanUpload() {
			m.setNotice("Type the path of a PDF file", true)
			return m, nil
		}
		call, err := m.machine.StartUpload()
		if err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		m.clearNotice()
		return m, uploadCmd(call)
	}

	doc, err := session.ReadDocument(expandHome(path))
	if err != nil {
		m.setNotice("Cannot read file: "+err.Error(), true)
		return m, nil
	}
	if err := m.machine.SelectFile(doc); err != nil {
		if errors.Is(err, session.ErrInvalidFileType) {
			m.setNotice("Please select a PDF file", true)
		} else {
			m.setNotice(err.Error(), true)
		}
		return m, nil
	}
	m.pathInput.Reset()
	m.setNotice(fmt.Sprintf("Selected %s (%s). Press enter to upload.", doc.Name, util.FormatSizeMB(doc.Size())), false)
	return m, nil
}

func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	call, err := m.machine.SendQuery(m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		return m, nil
	case errors.Is(err, session.ErrQueryInFlight):
		m.setNotice("Wait for the current answer", true)
		return m, nil
	case err != nil:
		m.setNotice(err.Error(), true)
		return m, nil
	}

	m.input.Reset()
	m.clearNotice()
	m.refreshViewport()
	return m, queryCmd(call)
}

func (m Model) resetSession() (tea.Model, tea.Cmd) {
	if err := m.machine.Reset(); err != nil {
		m.setNotice("Cannot start over while a request is running", true)
		return m, nil
	}
	m.header.Document = ""
	m.pathInput.Reset()
	m.input.Reset()
	m.clearNotice()
	m.syncFocus()
	m.refreshViewport()
	return m, nil
}

func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	answer, ok := m.machine.LastAnswer()
	if !ok || answer.Body == "" {
		m.setNotice("No answer to copy", true)
		return m, nil
	}
	if err := writeClipboard(answer.Body); err != nil {
		m.setNotice("Failed to copy: "+err.Error(), true)
		return m, nil
	}
	m.setNotice(fmt.Sprintf("Copied answer (%d chars)", len([]rune(answer.Body))), false)
	return m, nil
}

func (m Model) exportTranscript() (tea.Model, tea.Cmd) {
	if m.machine.TranscriptLen() == 0 {
		m.setNotice("Nothing to export", true)
		return m, nil
	}
	m.setNotice("Exporting...", false)
	return m, exportCmd(export.FromMachine(m.machine), m.exportFormat, m.exportOptions())
}

// =============================================================================
// HELPERS
// =============================================================================

func uploadErrorText(err error) string {
	var upErr *session.UploadError
	if errors.As(err, &upErr) {
		return upErr.UserMessage()
	}
	return session.DefaultUploadErrorText
}

func uploadBoxWidth(termWidth int) int {
	return min(max(termWidth-8, 20), 72)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
