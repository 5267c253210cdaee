// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the docqa TUI.

# Components

  - Header (header.go) - title, document label and backend status
  - StatusBar (statusbar.go) - key hints and transient notices
  - MessageBubble (message.go) - one transcript message
  - RenderBlocks / RenderSpans (markup.go) - answer markup to styled text

Message bodies are parsed with the markup package and every Span is
rendered through a lipgloss style. Nothing in a body is ever interpreted as
a terminal escape or layout directive; text is only ever styled.
*/
package components
