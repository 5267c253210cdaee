// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat transcripts.
package model

import (
	"time"

	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents who or what produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleError:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. It is created once and never
// modified; Store hands out copies.
type Message struct {
	Role      Role      `json:"role"`
	Body      string    `json:"body"`
	Citations []string  `json:"citations,omitempty"` // assistant only
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with the current time.
func NewMessage(role Role, body string) Message {
	return Message{
		Role:      role,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(body string) Message {
	return NewMessage(RoleUser, body)
}

// NewAssistantMessage creates an assistant message. The citations slice is
// copied so the caller cannot change the stored message afterwards.
func NewAssistantMessage(body string, citations []string) Message {
	msg := NewMessage(RoleAssistant, body)
	if len(citations) > 0 {
		msg.Citations = append([]string(nil), citations...)
	}
	return msg
}

// NewSystemMessage creates a system message.
func NewSystemMessage(body string) Message {
	return NewMessage(RoleSystem, body)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(body string) Message {
	return NewMessage(RoleError, body)
}

// HasCitations reports whether the message carries context snippets.
func (m Message) HasCitations() bool {
	return len(m.Citations) > 0
}

// Preview returns the first line of the body truncated to maxWidth display
// columns.
func (m Message) Preview(maxWidth int) string {
	return util.TruncateWidth(util.FirstLine(m.Body), maxWidth)
}

// clone returns a copy that shares no memory with m.
func (m Message) clone() Message {
	if m.Citations != nil {
		m.Citations = append([]string(nil), m.Citations...)
	}
	return m
}
