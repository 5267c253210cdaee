// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/docqa-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown. Message bodies are
// written as-is; the answer dialect is already a Markdown subset.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(t.title()))
		fmt.Fprintf(&sb, "session: %s\n", t.SessionID)
		if t.Collection != "" {
			fmt.Fprintf(&sb, "collection: %s\n", escapeYAML(t.Collection))
		}
		fmt.Fprintf(&sb, "date: %s\n", t.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(t.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", t.ExportedAt.Format(time.RFC3339))
		sb.WriteString("generator: docqa\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.title()))

	for i, msg := range t.Messages {
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", formatRoleLabel(msg.Role), formatShortTimestamp(msg.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", formatRoleLabel(msg.Role))
		}

		sb.WriteString(strings.TrimSpace(msg.Body))
		sb.WriteString("\n\n")

		if e.options.IncludeCitations && msg.HasCitations() {
			sb.WriteString(formatCitations(msg.Citations))
			sb.WriteString("\n")
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&sb, "\n---\n\n*Exported from docqa on %s*\n", formatTimestamp(t.ExportedAt))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func formatRoleLabel(role model.Role) string {
	if !role.Valid() {
		return "[Unknown]"
	}
	return "[" + role.DisplayName() + "]"
}

// formatCitations renders sources as a collapsible block.
func formatCitations(citations []string) string {
	var sb strings.Builder
	label := fmt.Sprintf("%d sources", len(citations))
	if len(citations) == 1 {
		label = "1 source"
	}
	fmt.Fprintf(&sb, "<details><summary>%s</summary>\n\n", label)
	for i, c := range citations {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.Join(strings.Fields(c), " "))
	}
	sb.WriteString("\n</details>\n")
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break formatting in headings.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}

// escapeYAML quotes a value when it contains YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
