// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a local archive of past sessions.
//
// Every session that produced at least one transcript message is saved to
// a SQLite database (pure Go, modernc.org/sqlite), keyed by the session
// ID. Saving the same session again replaces its transcript, so callers
// can save after every exchange.
//
// # Usage
//
//	store, err := storage.Open(path, storage.WithMaxSessions(200))
//	defer store.Close()
//
//	err = store.Save(ctx, storage.FromMachine(machine))
//	metas, err := store.List(ctx, 20)
//	sess, err := store.Load(ctx, metas[0].ID[:8])
//
// IDs may be abbreviated to any unique prefix.
//
// # Storage Location
//
// The database lives at ~/.docqa/history.db unless history.file is set.
package storage
