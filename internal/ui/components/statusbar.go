// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// KeyHint is one "key description" pair shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar shows a transient notice on the left and key hints on the right.
type StatusBar struct {
	Width   int
	Hints   []KeyHint
	Notice  string
	IsError bool
	theme   *styles.Theme
}

// NewStatusBar creates a StatusBar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// View renders the status bar. Hints are dropped from the right until
// everything fits.
func (s *StatusBar) View() string {
	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()

	left := ""
	if s.Notice != "" {
		st := s.theme.Notice
		if s.IsError {
			st = s.theme.NoticeError
		}
		left = st.Render(util.TruncateWidth(s.Notice, max(inner, 0)))
	}

	hints := s.Hints
	var right string
	for len(hints) > 0 {
		right = s.renderHints(hints)
		if lipgloss.Width(left)+lipgloss.Width(right)+2 <= inner {
			break
		}
		hints = hints[:len(hints)-1]
		right = ""
	}

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return s.theme.StatusBar.Width(max(s.Width, 0)).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderHints(hints []KeyHint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = s.theme.ShortcutKey.Render(h.Key) + " " + s.theme.ShortcutDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}
