// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// SchemaVersion is stored in PRAGMA user_version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    document    TEXT NOT NULL,
    collection  TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL, -- unix millis
    updated_at  INTEGER NOT NULL  -- unix millis
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

CREATE TABLE IF NOT EXISTS messages (
    session_id  TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    role        TEXT NOT NULL,
    body        TEXT NOT NULL,
    citations   TEXT,             -- JSON array, assistant only
    created_at  INTEGER NOT NULL, -- unix millis
    PRIMARY KEY (session_id, seq),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
) WITHOUT ROWID;
`

// pragmas run once on the single pooled connection.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}
