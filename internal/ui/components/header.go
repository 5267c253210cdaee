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
// HEADER COMPONENT
// =============================================================================

// BackendStatus is the last known reachability of the answer service.
type BackendStatus int

const (
	BackendUnknown BackendStatus = iota
	BackendOnline
	BackendOffline
)

// String returns the display string for the status.
func (s BackendStatus) String() string {
	switch s {
	case BackendOnline:
		return "online"
	case BackendOffline:
		return "offline"
	default:
		return "checking"
	}
}

// Header is the title bar: app name, document label, backend status.
type Header struct {
	Title    string
	Document string // collection of the ready document, if any
	Backend  BackendStatus
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a Header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "docqa",
		Width: 80,
		theme: theme,
	}
}

// View renders the header on one line.
func (h *Header) View() string {
	left := h.theme.HeaderTitle.Render(h.Title)
	if h.Document != "" {
		left += h.theme.HeaderDoc.Render("  Document: " + h.Document)
	}

	var right string
	switch h.Backend {
	case BackendOnline:
		right = h.theme.StatusOnline.Render("● " + h.Backend.String())
	case BackendOffline:
		right = h.theme.StatusOffline.Render("● " + h.Backend.String())
	default:
		right = h.theme.HeaderDoc.Render("○ " + h.Backend.String())
	}

	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Too narrow: drop the document label first.
		left = h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, max(inner-lipgloss.Width(right)-1, 1)))
		gap = max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	}
	return h.theme.Header.Width(max(h.Width, 0)).Render(left + strings.Repeat(" ", gap) + right)
}
