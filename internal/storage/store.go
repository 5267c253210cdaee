// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAmbiguousID     = errors.New("session ID prefix matches more than one session")
	ErrEmptySession    = errors.New("session has no messages")
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Session is one archived session.
type Session struct {
	ID         string          `json:"id"`
	Document   string          `json:"document"`
	Collection string          `json:"collection,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Messages   []model.Message `json:"messages"`
}

// SessionMeta is the listing form of a Session.
type SessionMeta struct {
	ID           string    `json:"id"`
	Document     string    `json:"document"`
	Collection   string    `json:"collection,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // first question
}

// FromMachine snapshots the machine's current session.
func FromMachine(m *session.Machine) Session {
	s := Session{
		ID:         m.ID(),
		Collection: m.CollectionRef(),
		CreatedAt:  m.CreatedAt(),
		Messages:   m.Transcript(),
	}
	if doc, ok := m.Document(); ok {
		s.Document = doc.Name
	}
	return s
}

// =============================================================================
// STORE
// =============================================================================

// Store is a SQLite-backed session archive. It is safe for concurrent use.
type Store struct {
	db          *sql.DB
	path        string
	maxSessions int
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSessions keeps only the newest n sessions after each save.
// Zero keeps everything.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		s.maxSessions = n
	}
}

// Open opens (creating if needed) the archive at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// One connection: SQLite has a single writer and the pragmas below are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("history database schema %d is newer than supported %d", version, SchemaVersion)
	}
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion))
	return err
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save inserts or replaces a session and its transcript, then prunes old
// sessions when a limit is set.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return errors.New("session has no ID")
	}
	if len(sess.Messages) == 0 {
		return ErrEmptySession
	}

	now := s.now()
	created := sess.CreatedAt
	if created.IsZero() {
		created = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, document, collection, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			collection = excluded.collection,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Document, sess.Collection, created.UnixMilli(), now.UnixMilli(),
	); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (session_id, seq, role, body, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, msg := range sess.Messages {
		var citations sql.NullString
		if len(msg.Citations) > 0 {
			data, err := json.Marshal(msg.Citations)
			if err != nil {
				return err
			}
			citations = sql.NullString{String: string(data), Valid: true}
		}
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = now
		}
		if _, err := stmt.ExecContext(ctx, sess.ID, i, string(msg.Role), msg.Body, citations, ts.UnixMilli()); err != nil {
			return fmt.Errorf("save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if s.maxSessions > 0 {
		if _, err := s.Prune(ctx, s.maxSessions); err != nil {
			return fmt.Errorf("prune: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a session by ID or unique ID prefix.
func (s *Store) Load(ctx context.Context, ref string) (*Session, error) {
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	sess := &Session{ID: id}
	var created, updated int64
	err = s.db.QueryRowContext(ctx,
		`SELECT document, collection, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.Document, &sess.Collection, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = time.UnixMilli(created)
	sess.UpdatedAt = time.UnixMilli(updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, body, citations, created_at FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, body string
			citations  sql.NullString
			ts         int64
		)
		if err := rows.Scan(&role, &body, &citations, &ts); err != nil {
			return nil, err
		}
		msg := model.Message{Role: model.Role(role), Body: body, Timestamp: time.UnixMilli(ts)}
		if citations.Valid {
			if err := json.Unmarshal([]byte(citations.String), &msg.Citations); err != nil {
				return nil, fmt.Errorf("decode citations: %w", err)
			}
		}
		sess.Messages = append(sess.Messages, msg)
	}
	return sess, rows.Err()
}

// resolve expands an ID prefix to a full ID.
func (s *Store) resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrSessionNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE substr(id, 1, length(?1)) = ?1 ORDER BY id LIMIT 2`, ref)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == ref {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrSessionNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousID
	}
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

const metaQuery = `
	SELECT s.id, s.document, s.collection, s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id),
		COALESCE((SELECT body FROM messages m
			WHERE m.session_id = s.id AND m.role = 'user'
			ORDER BY m.seq LIMIT 1), '')
	FROM sessions s`

// List returns sessions, most recently updated first. limit <= 0 returns
// all of them.
func (s *Store) List(ctx context.Context, limit int) ([]SessionMeta, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		metaQuery+` ORDER BY s.updated_at DESC, s.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanMetas(rows)
}

// Search returns sessions whose document name or any message contains
// text, case-insensitively.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]SessionMeta, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.List(ctx, limit)
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, metaQuery+`
		WHERE instr(lower(s.document), lower(?1)) > 0
			OR EXISTS (SELECT 1 FROM messages m
				WHERE m.session_id = s.id AND instr(lower(m.body), lower(?1)) > 0)
		ORDER BY s.updated_at DESC, s.id LIMIT ?2`, text, limit)
	if err != nil {
		return nil, err
	}
	return scanMetas(rows)
}

func scanMetas(rows *sql.Rows) ([]SessionMeta, error) {
	defer rows.Close()

	metas := []SessionMeta{}
	for rows.Next() {
		var (
			meta             SessionMeta
			created, updated int64
		)
		if err := rows.Scan(&meta.ID, &meta.Document, &meta.Collection,
			&created, &updated, &meta.MessageCount, &meta.Preview); err != nil {
			return nil, err
		}
		meta.CreatedAt = time.UnixMilli(created)
		meta.UpdatedAt = time.UnixMilli(updated)
		meta.Preview = util.FirstLine(meta.Preview)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a session by ID or unique prefix and returns the full ID.
func (s *Store) Delete(ctx context.Context, ref string) (string, error) {
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return "", err
	}
	return id, tx.Commit()
}

// Prune keeps the newest keep sessions and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY updated_at DESC, id LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id NOT IN (SELECT id FROM sessions)`); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Clear removes every session and returns how many there were.
func (s *Store) Clear(ctx context.Context) (int, error) {
	return s.Prune(ctx, 0)
}
