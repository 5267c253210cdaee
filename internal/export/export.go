// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no messages")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a snapshot of one session ready for export.
type Transcript struct {
	SessionID  string          `json:"session_id"`
	Document   string          `json:"document,omitempty"`
	Collection string          `json:"collection,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []model.Message `json:"messages"`
}

// FromMachine snapshots the session's transcript.
func FromMachine(m *session.Machine) *Transcript {
	t := &Transcript{
		SessionID:  m.ID(),
		Collection: m.CollectionRef(),
		CreatedAt:  m.CreatedAt(),
		ExportedAt: time.Now(),
		Messages:   m.Transcript(),
	}
	if doc, ok := m.Document(); ok {
		t.Document = doc.Name
	}
	return t
}

func (t *Transcript) validate() error {
	if t == nil {
		return errors.New("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return ErrEmptyTranscript
	}
	return nil
}

// title is the document name, or a generic title before any upload.
func (t *Transcript) title() string {
	if t.Document != "" {
		return t.Document
	}
	return "docqa session"
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to one output format.
type Exporter interface {
	// Export returns the encoded transcript.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir receives the file. Default: current working directory
	OutputDir string

	// IncludeMetadata adds a header with session details.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool

	// IncludeCitations lists the source passages under each answer.
	IncludeCitations bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		IncludeCitations:  true,
	}
}

// ForFormat returns the exporter for a format name: markdown (or md),
// json, or text (or txt).
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "text", "txt":
		return NewTextExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (use markdown, json or text)", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile encodes the transcript and writes it atomically into
// opts.OutputDir. It returns the path written.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	stem := strings.TrimSuffix(t.Document, filepath.Ext(t.Document))
	filename := fmt.Sprintf("docqa_%s_%s%s",
		sanitizeFilename(stem),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames and
// limits the length.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out = append(out, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = append(out, '_')
		case r < 32 || r == 127:
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		return "session"
	}
	return string(out)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
