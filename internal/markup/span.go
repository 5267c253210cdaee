// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

// =============================================================================
// SPAN TYPE
// =============================================================================

// SpanKind identifies the emphasis of a Span.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanItalic
)

// String returns the name of the span kind.
func (k SpanKind) String() string {
	switch k {
	case SpanPlain:
		return "plain"
	case SpanBold:
		return "bold"
	case SpanItalic:
		return "italic"
	default:
		return "unknown"
	}
}

// Span is a run of text with a single emphasis. Text never contains the
// delimiters that produced the span.
type Span struct {
	Kind SpanKind
	Text string
}

// Plain, Bold and Italic are shorthands for building spans.
func Plain(text string) Span  { return Span{Kind: SpanPlain, Text: text} }
func Bold(text string) Span   { return Span{Kind: SpanBold, Text: text} }
func Italic(text string) Span { return Span{Kind: SpanItalic, Text: text} }

// =============================================================================
// INLINE PARSER
// =============================================================================

// ParseInline tokenizes a single line into emphasis spans.
//
// At every '*' the two-character delimiter "**" is tried first, so the
// asterisks inside "**a*b*c**" are kept as literal bold text. Each opener
// pairs with the nearest closer of the same kind. A pair with nothing
// between its delimiters is not a pair. Unmatched asterisks stay in the
// surrounding plain text. An empty line yields no spans.
func ParseInline(line string) []Span {
	if line == "" {
		return nil
	}

	var spans []Span
	plainStart := 0

	flush := func(to int) {
		if to > plainStart {
			spans = append(spans, Plain(line[plainStart:to]))
		}
	}

	// '*' is ASCII, so scanning bytes never splits a rune and keeps
	// invalid UTF-8 intact.
	i := 0
	for i < len(line) {
		if line[i] != '*' {
			i++
			continue
		}

		if i+1 < len(line) && line[i+1] == '*' {
			if end := findDouble(line, i+2); end > i+2 {
				flush(i)
				spans = append(spans, Bold(line[i+2:end]))
				i = end + 2
				plainStart = i
				continue
			}
		}

		if end := findSingle(line, i+1); end > i+1 {
			flush(i)
			spans = append(spans, Italic(line[i+1:end]))
			i = end + 1
			plainStart = i
			continue
		}

		i++
	}
	flush(len(line))

	return spans
}

// findDouble returns the index of the first "**" at or after start, or -1.
func findDouble(s string, start int) int {
	if start > len(s) {
		return -1
	}
	if j := strings.Index(s[start:], "**"); j >= 0 {
		return start + j
	}
	return -1
}

// findSingle returns the index of the first '*' at or after start, or -1.
func findSingle(s string, start int) int {
	if start > len(s) {
		return -1
	}
	if j := strings.IndexByte(s[start:], '*'); j >= 0 {
		return start + j
	}
	return -1
}

// Text concatenates the visible text of spans, dropping all emphasis.
func Text(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
