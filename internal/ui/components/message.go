// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/markup"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// bubbleFrame is the horizontal space a bubble's border, padding and margin
// take up.
const bubbleFrame = 8

// MessageBubble renders one transcript message.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	ShowCitations bool
	theme         *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// SetWidth sets the available width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the label line and the bubble. User messages sit on the
// right, everything else on the left.
func (b *MessageBubble) View() string {
	contentWidth := b.contentWidth()

	content := RenderBody(b.Message.Body, contentWidth, b.theme)
	if b.Message.Role == model.RoleAssistant && b.Message.HasCitations() {
		content += "\n" + b.renderCitations(contentWidth)
	}

	bubble := b.theme.BubbleFor(b.Message.Role).Render(content)
	label := b.renderLabel()

	if b.Message.Role == model.RoleUser {
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

func (b *MessageBubble) contentWidth() int {
	w := b.Width - bubbleFrame
	if b.theme.Width > 0 {
		w = min(w, b.theme.BubbleWidth())
	}
	return max(w, 10)
}

func (b *MessageBubble) renderLabel() string {
	label := b.theme.RoleLabel.Render(b.Message.Role.DisplayName())
	if b.ShowTimestamp && !b.Message.Timestamp.IsZero() {
		label += " " + b.theme.Timestamp.Render(b.Message.Timestamp.Format("15:04"))
	}
	return label
}

// renderCitations shows a one-line summary, or every passage when expanded.
func (b *MessageBubble) renderCitations(width int) string {
	n := len(b.Message.Citations)
	if !b.ShowCitations {
		return b.theme.CitationHead.Render(SourcesLabel(n) + " (ctrl+o to show)")
	}

	lines := []string{b.theme.CitationHead.Render(SourcesLabel(n) + ":")}
	for i, c := range b.Message.Citations {
		prefix := fmt.Sprintf("[%d] ", i+1)
		text := strings.Join(strings.Fields(Sanitize(c)), " ")
		text = util.TruncateWidth(text, max(width-util.StringWidth(prefix), 4))
		lines = append(lines, b.theme.CitationText.Render(prefix+text))
	}
	return strings.Join(lines, "\n")
}

// SourcesLabel returns "1 source" or "N sources".
func SourcesLabel(n int) string {
	if n == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", n)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// TranscriptOptions controls RenderTranscript.
type TranscriptOptions struct {
	Width         int
	ShowCitations bool
	Compact       bool
}

// RenderTranscript renders messages in order. Messages whose body is
// entirely blank and that carry no citations are skipped.
func RenderTranscript(msgs []model.Message, opts TranscriptOptions, theme *styles.Theme) string {
	sep := "\n\n"
	if opts.Compact {
		sep = "\n"
	}
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if markup.IsBlank(markup.ParseBlocks(msg.Body)) && !msg.HasCitations() {
			continue
		}
		bubble := NewMessageBubble(msg, theme)
		bubble.SetWidth(opts.Width)
		bubble.ShowCitations = opts.ShowCitations
		parts = append(parts, bubble.View())
	}
	return strings.Join(parts, sep)
}
