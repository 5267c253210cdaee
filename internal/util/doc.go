// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across docqa.
//
//   - AtomicWriteFile: crash-safe file writes for config and exports
//   - TruncateWidth, StringWidth, PadRight: display-width aware string helpers
//   - FormatSizeMB: human file sizes for the upload screen
package util
