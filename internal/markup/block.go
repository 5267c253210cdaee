// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// BLOCK TYPE
// =============================================================================

// BlockKind identifies the line-level structure of a Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockBullet
	BlockNumbered
	BlockBlank
)

// String returns the name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockBullet:
		return "bullet"
	case BlockNumbered:
		return "numbered"
	case BlockBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Block is one logical line of a message body.
// Ordinal is only set for BlockNumbered; Blank blocks have no spans.
type Block struct {
	Kind    BlockKind
	Ordinal int
	Spans   []Span
}

// =============================================================================
// BLOCK PARSER
// =============================================================================

// ParseBlocks splits body into lines and classifies each one.
//
// Classification order is bullet ("* " after trimming), numbered
// (optional whitespace, digits, '.', whitespace), blank, paragraph. Every
// line yields exactly one Block and the marker prefix is removed before the
// rest of the line goes to ParseInline. Numbered ordinals are taken as
// written, never renumbered.
func ParseBlocks(body string) []Block {
	lines := strings.Split(body, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, parseLine(strings.TrimSuffix(line, "\r")))
	}
	return blocks
}

func parseLine(line string) Block {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "* ") {
		content := line[strings.Index(line, "* ")+2:]
		return Block{Kind: BlockBullet, Spans: ParseInline(content)}
	}

	if ordinal, content, ok := numberedPrefix(line); ok {
		return Block{Kind: BlockNumbered, Ordinal: ordinal, Spans: ParseInline(content)}
	}

	if trimmed == "" {
		return Block{Kind: BlockBlank}
	}

	return Block{Kind: BlockParagraph, Spans: ParseInline(line)}
}

// numberedPrefix matches `^\s*(\d+)\.\s` and returns the ordinal and the
// text after the match.
func numberedPrefix(line string) (int, string, bool) {
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}

	digitsStart := i
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == digitsStart || i >= len(line) || line[i] != '.' {
		return 0, "", false
	}
	digits := line[digitsStart:i]
	i++

	if i >= len(line) {
		return 0, "", false
	}
	r, size := utf8.DecodeRuneInString(line[i:])
	if !unicode.IsSpace(r) {
		return 0, "", false
	}

	ordinal, err := strconv.Atoi(digits)
	if err != nil {
		// Out of int range; let the line fall through to a paragraph.
		return 0, "", false
	}
	return ordinal, line[i+size:], true
}

// BlocksText returns the visible text of blocks, one line per block.
func BlocksText(blocks []Block) string {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = Text(b.Spans)
	}
	return strings.Join(lines, "\n")
}

// IsBlank reports whether every block is a blank line.
func IsBlank(blocks []Block) bool {
	for _, b := range blocks {
		if b.Kind != BlockBlank {
			return false
		}
	}
	return true
}
