// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docqa-tui/internal/markup"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// plain removes styling so assertions see only text and layout.
func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func testTheme() *styles.Theme {
	theme := styles.NewTheme("dark")
	theme.SetSize(100, 40)
	return theme
}

// =============================================================================
// MARKUP RENDERING TESTS
// =============================================================================

func TestRenderBody(t *testing.T) {
	theme := testTheme()
	tests := []struct {
		name  string
		body  string
		width int
		want  string
	}{
		{"lists", "Refunds:\n* **30 days** here\n2. keep *it*", 0, "Refunds:\n• 30 days here\n2. keep it"},
		{"blank lines kept", "a\n\nb", 0, "a\n\nb"},
		{"wrap", "one two three four", 9, "one two\nthree\nfour"},
		{"hanging indent", "* alpha beta gamma", 12, "• alpha beta\n  gamma"},
		{"numbered indent", "10. alpha beta gamma", 14, "10. alpha beta\n    gamma"},
		{"emphasis inside word", "**bold**ly done", 0, "boldly done"},
		{"long word own line", "a supercalifragilistic b", 6, "a\nsupercalifragilistic\nb"},
		{"literal asterisks", "2 * 3 = 6", 0, "2 * 3 = 6"},
		{"empty", "", 20, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, plain(RenderBody(tc.body, tc.width, theme)))
		})
	}
}

func TestRenderBody_StripsControlSequences(t *testing.T) {
	got := plain(RenderBody("evil\x1b[2Jtext\x07 and\ttab", 0, testTheme()))
	assert.Equal(t, "evil[2Jtext and tab", got)
	assert.NotContains(t, got, "\x1b")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"clean text", "clean text"},
		{"line\nbreak", "line break"},
		{"crlf\r\nbreak", "crlf  break"},
		{"tab\there", "tab here"},
		{"\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"bell\x07\u009b", "bell"},
		{"héllo", "héllo"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Sanitize(tc.in), "%q", tc.in)
	}
}

func TestRenderSpans(t *testing.T) {
	spans := []markup.Span{markup.Plain("a "), markup.Bold("b"), markup.Italic(" c")}
	assert.Equal(t, "a b c", plain(RenderSpans(spans, testTheme())))
}

func TestRenderBody_Pure(t *testing.T) {
	theme := testTheme()
	body := "* **x** y\n1. *z*"
	assert.Equal(t, RenderBody(body, 30, theme), RenderBody(body, 30, theme))
}

// =============================================================================
// MESSAGE BUBBLE TESTS
// =============================================================================

func TestMessageBubble_AssistantCitations(t *testing.T) {
	theme := testTheme()
	msg := model.NewAssistantMessage("Answer **here**", []string{"first passage", "second\npassage", "third\r\n\x1b[2Jpage"})

	b := NewMessageBubble(msg, theme)
	b.SetWidth(80)
	view := plain(b.View())
	assert.Contains(t, view, "Assistant")
	assert.Contains(t, view, "Answer here")
	assert.Contains(t, view, "3 sources (ctrl+o to show)")
	assert.NotContains(t, view, "[1]")

	b.ShowCitations = true
	view = plain(b.View())
	assert.Contains(t, view, "[1] first passage")
	assert.Contains(t, view, "[2] second passage")
	assert.Contains(t, view, "[3] third [2Jpage")
	assert.NotContains(t, b.View(), "\x1b[2J")
}

func TestMessageBubble_UserRightAligned(t *testing.T) {
	theme := testTheme()
	b := NewMessageBubble(model.NewUserMessage("hi"), theme)
	b.SetWidth(60)

	for _, line := range strings.Split(b.View(), "\n") {
		assert.Equal(t, 60, lipgloss.Width(line))
	}
	first := strings.Split(plain(b.View()), "\n")[0]
	assert.True(t, strings.HasSuffix(first, "You "+b.Message.Timestamp.Format("15:04")))
}

func TestMessageBubble_ErrorAndSystem(t *testing.T) {
	theme := testTheme()
	for _, msg := range []model.Message{
		model.NewErrorMessage("Failed to get response. Please try again."),
		model.NewSystemMessage(`PDF "a.pdf" uploaded successfully!`),
	} {
		view := plain(NewMessageBubble(msg, theme).View())
		assert.Contains(t, view, msg.Role.DisplayName())
		assert.Contains(t, view, strings.Fields(msg.Body)[0])
	}
}

func TestRenderTranscript(t *testing.T) {
	theme := testTheme()
	msgs := []model.Message{
		model.NewSystemMessage("ready"),
		model.NewUserMessage("question"),
		model.NewAssistantMessage("answer", nil),
	}
	out := plain(RenderTranscript(msgs, TranscriptOptions{Width: 80}, theme))

	iReady := strings.Index(out, "ready")
	iQuestion := strings.Index(out, "question")
	iAnswer := strings.Index(out, "answer")
	require.True(t, iReady >= 0 && iQuestion >= 0 && iAnswer >= 0)
	assert.Less(t, iReady, iQuestion)
	assert.Less(t, iQuestion, iAnswer)

	compact := RenderTranscript(msgs, TranscriptOptions{Width: 80, Compact: true}, theme)
	assert.Less(t, strings.Count(compact, "\n"), strings.Count(RenderTranscript(msgs, TranscriptOptions{Width: 80}, theme), "\n"))
}

func TestRenderTranscript_SkipsBlankBodies(t *testing.T) {
	msgs := []model.Message{
		model.NewAssistantMessage("  \n\t", nil),
		model.NewUserMessage("kept"),
	}
	out := plain(RenderTranscript(msgs, TranscriptOptions{Width: 80}, testTheme()))
	assert.NotContains(t, out, "Assistant")
	assert.Contains(t, out, "kept")
}

func TestSourcesLabel(t *testing.T) {
	assert.Equal(t, "1 source", SourcesLabel(1))
	assert.Equal(t, "3 sources", SourcesLabel(3))
}

// =============================================================================
// HEADER / STATUS BAR TESTS
// =============================================================================

func TestHeader(t *testing.T) {
	h := NewHeader(testTheme())
	h.Width = 70
	h.Document = "manual"
	h.Backend = BackendOnline

	view := h.View()
	assert.Equal(t, 70, lipgloss.Width(view))
	assert.Contains(t, plain(view), "docqa")
	assert.Contains(t, plain(view), "Document: manual")
	assert.Contains(t, plain(view), "online")

	h.Width = 20
	view = plain(h.View())
	assert.NotContains(t, view, "Document")
	assert.Contains(t, view, "online")
}

func TestBackendStatusString(t *testing.T) {
	assert.Equal(t, "checking", BackendUnknown.String())
	assert.Equal(t, "offline", BackendOffline.String())
}

func TestStatusBar_DropsHintsWhenNarrow(t *testing.T) {
	s := NewStatusBar(testTheme())
	s.Hints = []KeyHint{{"enter", "send"}, {"ctrl+y", "copy"}, {"ctrl+s", "export"}}

	s.Width = 100
	wide := plain(s.View())
	assert.Contains(t, wide, "ctrl+s export")

	s.Width = 30
	narrow := plain(s.View())
	assert.Contains(t, narrow, "enter send")
	assert.NotContains(t, narrow, "ctrl+s")
	assert.Equal(t, 30, lipgloss.Width(s.View()))

	s.Notice = "Copied answer"
	assert.Contains(t, plain(s.View()), "Copied answer")
}
