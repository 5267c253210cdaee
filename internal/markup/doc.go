// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup parses answer text from the document Q&A backend into
// renderable structure.
//
// The backend answers in a small markdown-like dialect: "* " bullets,
// "N. " numbered items, **bold**, *italic* and plain line breaks. Parsing
// happens in two stages:
//
//   - ParseBlocks classifies each line of a message body into a Block
//     (paragraph, bullet item, numbered item or blank line).
//   - ParseInline tokenizes the remaining text of each line into Spans
//     (plain, bold or italic). Spans never nest.
//
// Both parsers are total, pure functions. Malformed markup (an unclosed
// delimiter, an empty pair) degrades to literal text and never fails.
//
// # Usage
//
//	for _, b := range markup.ParseBlocks(msg.Body) {
//	    switch b.Kind {
//	    case markup.BlockBullet:
//	        // render "•" then b.Spans
//	    }
//	}
package markup
