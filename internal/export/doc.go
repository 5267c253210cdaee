// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to disk.
//
// # Supported Formats
//
//   - Markdown: the transcript with answers kept in their original markup
//   - JSON: machine-readable, every message with citations and timestamps
//   - Text: markup resolved to plain text, for pasting into email or tickets
//
// # Usage
//
//	t := export.FromMachine(machine)
//	path, err := export.ExportToFile(t, export.NewMarkdownExporter(nil), opts)
package export
