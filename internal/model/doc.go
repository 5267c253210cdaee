// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat transcripts.
//
// # Key Types
//
//   - Message: Single immutable chat entry with role, body and citations
//   - Role: Message role enumeration (user, assistant, system, error)
//   - Store: Append-only, ordered log of messages for one session
//
// # Usage
//
//	store := model.NewStore()
//	store.Append(model.NewUserMessage("What is the refund policy?"))
//	store.Append(model.NewAssistantMessage("* 30 days", nil))
//	for _, msg := range store.All() {
//	    fmt.Println(msg.Role.DisplayName(), msg.Body)
//	}
package model
