// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks_Classification(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Block
	}{
		{"bullet", "* first point", Block{Kind: BlockBullet, Spans: []Span{Plain("first point")}}},
		{"indented bullet", "   * nested look", Block{Kind: BlockBullet, Spans: []Span{Plain("nested look")}}},
		{"bullet with bold", "* **Key:** value", Block{Kind: BlockBullet, Spans: []Span{Bold("Key:"), Plain(" value")}}},
		{"numbered", "2. second", Block{Kind: BlockNumbered, Ordinal: 2, Spans: []Span{Plain("second")}}},
		{"numbered indented", "  10.  tenth", Block{Kind: BlockNumbered, Ordinal: 10, Spans: []Span{Plain(" tenth")}}},
		{"numbered tab", "3.\tthird", Block{Kind: BlockNumbered, Ordinal: 3, Spans: []Span{Plain("third")}}},
		{"blank", "", Block{Kind: BlockBlank}},
		{"whitespace only", "  \t ", Block{Kind: BlockBlank}},
		{"paragraph", "Just text", Block{Kind: BlockParagraph, Spans: []Span{Plain("Just text")}}},
		{"number without space", "3.14 is pi", Block{Kind: BlockParagraph, Spans: []Span{Plain("3.14 is pi")}}},
		{"number at end", "7.", Block{Kind: BlockParagraph, Spans: []Span{Plain("7.")}}},
		{"star without space", "*emphasis* first", Block{Kind: BlockParagraph, Spans: []Span{Italic("emphasis"), Plain(" first")}}},
		{"bare star", "* ", Block{Kind: BlockParagraph, Spans: []Span{Plain("* ")}}},
		{"ordinal overflow", "99999999999999999999. big", Block{Kind: BlockParagraph, Spans: []Span{Plain("99999999999999999999. big")}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blocks := ParseBlocks(tc.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, tc.want, blocks[0])
		})
	}
}

func TestParseBlocks_BulletBeforeNumbered(t *testing.T) {
	blocks := ParseBlocks("* 1. not a number")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockBullet, blocks[0].Kind)
	assert.Equal(t, 0, blocks[0].Ordinal)
	assert.Equal(t, "1. not a number", Text(blocks[0].Spans))
}

func TestParseBlocks_OrdinalsVerbatim(t *testing.T) {
	blocks := ParseBlocks("5. five\n1. one\n1. one again")
	require.Len(t, blocks, 3)
	assert.Equal(t, []int{5, 1, 1}, []int{blocks[0].Ordinal, blocks[1].Ordinal, blocks[2].Ordinal})
}

func TestParseBlocks_OneBlockPerLine(t *testing.T) {
	body := "Intro\n\n* a\n* b\n\n1. x\n2. y\nOutro\n"
	blocks := ParseBlocks(body)
	require.Len(t, blocks, 9)

	kinds := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []BlockKind{
		BlockParagraph, BlockBlank, BlockBullet, BlockBullet, BlockBlank,
		BlockNumbered, BlockNumbered, BlockParagraph, BlockBlank,
	}, kinds)
}

func TestParseBlocks_CRLF(t *testing.T) {
	assert.Equal(t, ParseBlocks("* a\n* b"), ParseBlocks("* a\r\n* b"))
}

func TestParseBlocks_Idempotent(t *testing.T) {
	body := "Here is **the** answer:\n* one *two*\n3. three\n\n**unclosed"
	first := ParseBlocks(body)
	second := ParseBlocks(body)
	assert.Equal(t, first, second)
}

func TestParseBlocks_LosslessText(t *testing.T) {
	body := "Intro **bold** text\n* first *point*\n2. second\n\nend"
	assert.Equal(t, "Intro bold text\nfirst point\nsecond\n\nend", BlocksText(ParseBlocks(body)))

	// Bytes that are not valid UTF-8 pass through unchanged.
	raw := "* \xff*x*\n3. **\xfe**"
	assert.Equal(t, "\xffx\n\xfe", BlocksText(ParseBlocks(raw)))
}

func TestParseBlocks_RefundAnswer(t *testing.T) {
	blocks := ParseBlocks("* 30 days\n* No questions asked")
	assert.Equal(t, []Block{
		{Kind: BlockBullet, Spans: []Span{Plain("30 days")}},
		{Kind: BlockBullet, Spans: []Span{Plain("No questions asked")}},
	}, blocks)
}

func TestParseBlocks_Empty(t *testing.T) {
	blocks := ParseBlocks("")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockBlank, blocks[0].Kind)
	assert.True(t, IsBlank(blocks))
	assert.False(t, IsBlank(ParseBlocks("x")))
}
