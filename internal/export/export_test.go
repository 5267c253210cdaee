// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docqa-tui/internal/model"
)

func sampleTranscript() *Transcript {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	msgs := []model.Message{
		model.NewSystemMessage(`PDF "manual.pdf" uploaded successfully! You can now ask questions about it.`),
		model.NewUserMessage("What is the refund policy?"),
		model.NewAssistantMessage("Refunds:\n* **30 days**\n* receipt *required*", []string{"Section 4\nRefunds are accepted."}),
	}
	for i := range msgs {
		msgs[i].Timestamp = at
	}
	return &Transcript{
		SessionID:  "2f1c",
		Document:   "manual.pdf",
		Collection: "manual",
		CreatedAt:  at,
		ExportedAt: at,
		Messages:   msgs,
	}
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "---\ntitle: manual.pdf\n"))
	assert.Contains(t, s, "collection: manual\n")
	assert.Contains(t, s, "# manual.pdf\n")
	assert.Contains(t, s, "### [You] <sub>09:26:53</sub>")
	assert.Contains(t, s, "### [Assistant]")
	assert.Contains(t, s, "* **30 days**\n* receipt *required*")
	assert.Contains(t, s, "<details><summary>1 source</summary>")
	assert.Contains(t, s, "1. Section 4 Refunds are accepted.")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := &Options{}
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)
	s := string(out)

	assert.False(t, strings.HasPrefix(s, "---"))
	assert.NotContains(t, s, "<sub>")
	assert.NotContains(t, s, "<details>")
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"line\nbreak"`, escapeYAML("line\nbreak"))
	assert.Equal(t, `"back\\slash"`, escapeYAML(`back\slash`))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `my\_notes \*v2\*`, escapeMarkdown("my_notes *v2*"))
}

// =============================================================================
// JSON / TEXT TESTS
// =============================================================================

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)

	var decoded Transcript
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "manual", decoded.Collection)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, model.RoleAssistant, decoded.Messages[2].Role)
	assert.Equal(t, []string{"Section 4\nRefunds are accepted."}, decoded.Messages[2].Citations)
}

func TestTextExporter(t *testing.T) {
	out, err := NewTextExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "Assistant (09:26:53):\nRefunds:\n  • 30 days\n  • receipt required\n")
	assert.Contains(t, s, "  [1] Section 4 Refunds are accepted.")
	assert.NotContains(t, s, "**")
}

func TestPlainBody_AllRoles(t *testing.T) {
	assert.Equal(t, "is this emphasized?", PlainBody(model.NewUserMessage("is *this* emphasized?")))
	assert.Equal(t, "2 * 3 = 6", PlainBody(model.NewErrorMessage("2 * 3 = 6")))
}

func TestExporters_EmptyTranscript(t *testing.T) {
	empty := &Transcript{SessionID: "x"}
	for _, format := range []string{"markdown", "json", "text"} {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err)
		_, err = exp.Export(empty)
		assert.ErrorIs(t, err, ErrEmptyTranscript, format)

		_, err = exp.Export(nil)
		assert.Error(t, err, format)
	}
}

func TestForFormat(t *testing.T) {
	exp, err := ForFormat("MD", nil)
	require.NoError(t, err)
	assert.Equal(t, ".md", exp.FileExtension())

	exp, err = ForFormat("txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", exp.MimeType())

	_, err = ForFormat("html", nil)
	assert.Error(t, err)
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	tr := sampleTranscript()

	path, err := ExportToFile(tr, NewJSONExporter(nil), &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docqa_manual_20250314_092653.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestExportToFile_PropagatesError(t *testing.T) {
	_, err := ExportToFile(&Transcript{}, NewMarkdownExporter(nil), &Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"manual":                "manual",
		"Q3 report: v2?":        "Q3_report-_v2-",
		"a/b\\c":                "a-b-c",
		"":                      "session",
		"tab\there\x01x":        "tab_here-x",
		strings.Repeat("x", 80): strings.Repeat("x", 50),
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
