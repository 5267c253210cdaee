// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// MAIN RENDER FUNCTION
// =============================================================================

// render stacks header, screen body, input and status bar.
func (m Model) render() string {
	if m.width == 0 {
		return "Loading..."
	}

	m.statusBar.Notice = m.notice
	m.statusBar.IsError = m.noticeErr

	if m.Screen() == ScreenChat {
		m.statusBar.Hints = hints(m.keyMap.ChatHelp())
		return lipgloss.JoinVertical(lipgloss.Left,
			m.header.View(),
			m.viewport.View(),
			m.renderTypingRow(),
			m.renderInput(),
			m.statusBar.View(),
		)
	}

	m.statusBar.Hints = hints(m.keyMap.UploadHelp())
	bodyHeight := max(m.height-headerHeight-statusBarHeight, 1)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderUploadBox())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.statusBar.View(),
	)
}

// =============================================================================
// UPLOAD SCREEN
// =============================================================================

func (m Model) renderUploadBox() string {
	t := m.theme
	boxWidth := uploadBoxWidth(m.width)

	lines := []string{
		t.UploadTitle.Render("Upload Your PDF"),
		t.Hint.Render("Upload a PDF document to start asking questions"),
		"",
	}

	if doc, ok := m.machine.Document(); ok {
		name := util.TruncateWidth(doc.Name, boxWidth-8)
		lines = append(lines,
			t.FileName.Render(name),
			t.FileSize.Render(util.FormatSizeMB(doc.Size())),
			"",
		)
	}

	switch m.machine.State() {
	case session.StateUploading:
		lines = append(lines, m.spinner.View()+" "+t.ThinkingText.Render("Uploading..."))
	case session.StateUploadFailed:
		lines = append(lines,
			t.NoticeError.Render(uploadErrorText(m.machine.LastError())),
			t.Hint.Render("Press enter to retry, or type another path"),
			"",
			m.pathInput.View(),
		)
	case session.StateFileChosen:
		lines = append(lines,
			t.Hint.Render("Press enter to upload & process, ctrl+r to clear"),
			"",
			m.pathInput.View(),
		)
	default:
		lines = append(lines, m.pathInput.View())
	}

	return t.UploadBox.Width(boxWidth).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

// renderTypingRow shows a spinner while an answer is pending. The row is
// always present so the layout does not jump.
func (m Model) renderTypingRow() string {
	if !m.machine.QueryInFlight() {
		return ""
	}
	return " " + m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width, 1)).Render(m.input.View())
}
