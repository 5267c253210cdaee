// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/docqa-tui/internal/model"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderDoc     lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// ANSWER MARKUP STYLES
	// ==========================================================================

	Bold         lipgloss.Style
	Italic       lipgloss.Style
	ListMarker   lipgloss.Style
	CitationHead lipgloss.Style
	CitationText lipgloss.Style

	// ==========================================================================
	// UPLOAD SCREEN STYLES
	// ==========================================================================

	UploadBox   lipgloss.Style
	UploadTitle lipgloss.Style
	FileName    lipgloss.Style
	FileSize    lipgloss.Style
	Hint        lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Spinner        lipgloss.Style
	ThinkingText   lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Notice         lipgloss.Style
	NoticeError    lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderDoc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StatusOnline = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusOffline = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(SystemBubbleBorder).
		BorderLeft(true).
		PaddingLeft(1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ErrorBubbleBorder).
		BorderLeft(true).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Answer markup
	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Italic = lipgloss.NewStyle().Italic(true)

	t.ListMarker = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.CitationHead = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.CitationText = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Upload screen
	t.UploadBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)

	t.UploadTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.FileName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.FileSize = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Foreground(Emerald)

	t.NoticeError = lipgloss.NewStyle().
		Foreground(Rose)
}

// BubbleFor returns the bubble style for a message role.
func (t *Theme) BubbleFor(role model.Role) lipgloss.Style {
	switch role {
	case model.RoleUser:
		return t.UserBubble
	case model.RoleAssistant:
		return t.AssistantBubble
	case model.RoleError:
		return t.ErrorBubble
	default:
		return t.SystemBubble
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the maximum content width of a message bubble.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-8, 10)
	case LayoutMedium:
		return t.Width - 12
	default:
		return min(t.Width*3/4, 100)
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
