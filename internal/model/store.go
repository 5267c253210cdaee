// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// STORE TYPE
// =============================================================================

// Store is the ordered, append-only transcript of one session.
//
// Entries are never reordered, updated or removed individually; Reset
// discards the whole log. A Store belongs to a single session and is not
// safe for concurrent use.
type Store struct {
	messages []Message
	version  uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{messages: make([]Message, 0)}
}

// Append adds msg to the end of the transcript.
func (s *Store) Append(msg Message) {
	s.messages = append(s.messages, msg.clone())
	s.version++
}

// All returns a copy of the transcript in arrival order.
func (s *Store) All() []Message {
	out := make([]Message, len(s.messages))
	for i, msg := range s.messages {
		out[i] = msg.clone()
	}
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// IsEmpty returns true if there are no messages.
func (s *Store) IsEmpty() bool {
	return len(s.messages) == 0
}

// Last returns the most recent message.
func (s *Store) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1].clone(), true
}

// LastOfRole returns the most recent message with the given role.
func (s *Store) LastOfRole(role Role) (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == role {
			return s.messages[i].clone(), true
		}
	}
	return Message{}, false
}

// Reset discards every message.
func (s *Store) Reset() {
	s.messages = make([]Message, 0)
	s.version++
}

// Version changes every time the transcript changes. Views compare it to
// decide whether to re-render and scroll to the latest message.
func (s *Store) Version() uint64 {
	return s.version
}
