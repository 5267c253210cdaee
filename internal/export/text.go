// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docqa-tui/internal/markup"
	"github.com/jeranaias/docqa-tui/internal/model"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter exports transcripts as plain text. Answer markup is
// resolved: emphasis markers are dropped and bullets become "•".
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain-text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a transcript to plain text.
func (e *TextExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "%s\n", t.title())
		fmt.Fprintf(&sb, "Session %s, started %s\n\n", t.SessionID, formatTimestamp(t.CreatedAt))
	}

	for _, msg := range t.Messages {
		label := msg.Role.DisplayName()
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			label += " (" + formatShortTimestamp(msg.Timestamp) + ")"
		}
		sb.WriteString(label + ":\n")
		sb.WriteString(PlainBody(msg))
		sb.WriteString("\n")

		if e.options.IncludeCitations && msg.HasCitations() {
			for i, c := range msg.Citations {
				fmt.Fprintf(&sb, "  [%d] %s\n", i+1, strings.Join(strings.Fields(c), " "))
			}
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// PlainBody renders a message body with its markup resolved, the same
// way the chat view reads it.
func PlainBody(msg model.Message) string {
	blocks := markup.ParseBlocks(msg.Body)
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		text := markup.Text(b.Spans)
		switch b.Kind {
		case markup.BlockBullet:
			lines[i] = "  • " + text
		case markup.BlockNumbered:
			lines[i] = fmt.Sprintf("  %d. %s", b.Ordinal, text)
		case markup.BlockBlank:
			lines[i] = ""
		default:
			lines[i] = text
		}
	}
	return strings.Join(lines, "\n")
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
