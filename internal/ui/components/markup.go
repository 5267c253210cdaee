// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/markup"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// ANSWER MARKUP RENDERING
// =============================================================================

const bulletMarker = "• "

// RenderBody parses a message body and renders it wrapped to width.
func RenderBody(body string, width int, theme *styles.Theme) string {
	return RenderBlocks(markup.ParseBlocks(body), width, theme)
}

// RenderBlocks renders one output line group per block. List items wrap
// with a hanging indent under their marker. width <= 0 disables wrapping.
func RenderBlocks(blocks []markup.Block, width int, theme *styles.Theme) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case markup.BlockBlank:
			out = append(out, "")
		case markup.BlockBullet:
			out = append(out, renderListItem(bulletMarker, b.Spans, width, theme))
		case markup.BlockNumbered:
			out = append(out, renderListItem(strconv.Itoa(b.Ordinal)+". ", b.Spans, width, theme))
		default:
			out = append(out, strings.Join(wrapSpans(b.Spans, width, theme), "\n"))
		}
	}
	return strings.Join(out, "\n")
}

// RenderSpans renders spans on a single line.
func RenderSpans(spans []markup.Span, theme *styles.Theme) string {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(styleSpan(sp.Kind, Sanitize(sp.Text), theme))
	}
	return sb.String()
}

func renderListItem(marker string, spans []markup.Span, width int, theme *styles.Theme) string {
	indent := util.StringWidth(marker)
	inner := width - indent
	if width > 0 && inner < 1 {
		inner = 1
	}

	lines := wrapSpans(spans, inner, theme)
	if len(lines) == 0 {
		lines = []string{""}
	}
	pad := strings.Repeat(" ", indent)
	for i := range lines {
		if i == 0 {
			lines[i] = theme.ListMarker.Render(marker) + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// WORD WRAPPING
// =============================================================================

// piece is a run of one style inside a word.
type piece struct {
	kind markup.SpanKind
	text string
}

// word is a whitespace-delimited token; emphasis may change inside it.
type word []piece

func (w word) width() int {
	n := 0
	for _, p := range w {
		n += util.StringWidth(p.text)
	}
	return n
}

func (w word) render(theme *styles.Theme) string {
	var sb strings.Builder
	for _, p := range w {
		sb.WriteString(styleSpan(p.kind, p.text, theme))
	}
	return sb.String()
}

// splitWords breaks spans into words. Runs of whitespace collapse to one
// separator; a span boundary without whitespace stays inside the word.
func splitWords(spans []markup.Span) []word {
	var words []word
	var cur word
	for _, sp := range spans {
		var buf strings.Builder
		flush := func() {
			if buf.Len() > 0 {
				cur = append(cur, piece{kind: sp.Kind, text: buf.String()})
				buf.Reset()
			}
		}
		for _, r := range Sanitize(sp.Text) {
			if unicode.IsSpace(r) {
				flush()
				if len(cur) > 0 {
					words = append(words, cur)
					cur = nil
				}
				continue
			}
			buf.WriteRune(r)
		}
		flush()
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// wrapSpans greedily fills lines up to width display columns. A word wider
// than the line gets a line of its own.
func wrapSpans(spans []markup.Span, width int, theme *styles.Theme) []string {
	words := splitWords(spans)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, w := range words {
		ww := w.width()
		if lineWidth > 0 && width > 0 && lineWidth+1+ww > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(w.render(theme))
		lineWidth += ww
	}
	return append(lines, line.String())
}

// =============================================================================
// STYLING HELPERS
// =============================================================================

func styleSpan(kind markup.SpanKind, text string, theme *styles.Theme) string {
	if text == "" {
		return ""
	}
	var st lipgloss.Style
	switch kind {
	case markup.SpanBold:
		st = theme.Bold
	case markup.SpanItalic:
		st = theme.Italic
	default:
		return text
	}
	return st.Render(text)
}

// Sanitize drops control characters so backend text cannot carry terminal
// escape sequences. Tabs and line breaks become spaces.
func Sanitize(s string) string {
	clean := true
	for _, r := range s {
		if isControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\t', r == '\n', r == '\r':
			sb.WriteByte(' ')
		case isControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}
