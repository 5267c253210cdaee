// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: widths are display columns, so CJK and emoji count double and
// multi-byte characters are never split.

// TruncateWidth truncates s to at most maxWidth display columns, ending
// with "..." when something was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// FirstLine returns s up to its first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatSizeMB formats a byte count the way the upload screen shows it.
func FormatSizeMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}
