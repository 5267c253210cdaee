// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/session"
)

// =============================================================================
// HELPERS
// =============================================================================

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing save times.
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func testSession(id, doc string, questions ...string) Session {
	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	sess := Session{
		ID:         id,
		Document:   doc,
		Collection: "manual",
		CreatedAt:  ts,
		Messages: []model.Message{
			{Role: model.RoleSystem, Body: `PDF "` + doc + `" uploaded successfully!`, Timestamp: ts},
		},
	}
	for _, q := range questions {
		sess.Messages = append(sess.Messages,
			model.Message{Role: model.RoleUser, Body: q, Timestamp: ts},
			model.Message{
				Role:      model.RoleAssistant,
				Body:      "Answer:\n* **one**\n* two",
				Citations: []string{"page 1", "page 7"},
				Timestamp: ts,
			},
		)
	}
	return sess
}

// =============================================================================
// SAVE / LOAD TESTS
// =============================================================================

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	in := testSession("0b6f0c1e-aaaa", "manual.pdf", "What is the refund window?")

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "manual.pdf", out.Document)
	assert.Equal(t, "manual", out.Collection)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Len(t, out.Messages, 3)
	for i := range in.Messages {
		assert.Equal(t, in.Messages[i].Role, out.Messages[i].Role)
		assert.Equal(t, in.Messages[i].Body, out.Messages[i].Body)
		assert.Equal(t, in.Messages[i].Citations, out.Messages[i].Citations)
		assert.True(t, in.Messages[i].Timestamp.Equal(out.Messages[i].Timestamp))
	}
	assert.Nil(t, out.Messages[1].Citations)
}

func TestSave_ReplacesTranscript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testSession("abc", "a.pdf", "q1", "q2")))
	require.NoError(t, s.Save(ctx, testSession("abc", "a.pdf", "q1")))

	out, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, out.Messages, 3)

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestSave_Rejects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, Session{ID: "x", Document: "a.pdf"}), ErrEmptySession)
	assert.Error(t, s.Save(ctx, testSession("", "a.pdf")))
}

func TestLoad_Prefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("abc123", "a.pdf")))
	require.NoError(t, s.Save(ctx, testSession("abd456", "b.pdf")))

	out, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", out.ID)

	_, err = s.Load(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.Load(ctx, "zzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.Load(ctx, "  ")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoad_ExactIDWinsOverPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("ab", "a.pdf")))
	require.NoError(t, s.Save(ctx, testSession("abc", "b.pdf")))

	out, err := s.Load(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", out.Document)
}

// =============================================================================
// LIST / SEARCH TESTS
// =============================================================================

func TestList_NewestFirstWithPreview(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("old", "old.pdf", "First question\nsecond line")))
	require.NoError(t, s.Save(ctx, testSession("new", "new.pdf")))

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "new", metas[0].ID)
	assert.Equal(t, 1, metas[0].MessageCount)
	assert.Empty(t, metas[0].Preview)

	assert.Equal(t, "old", metas[1].ID)
	assert.Equal(t, 3, metas[1].MessageCount)
	assert.Equal(t, "First question", metas[1].Preview)
	assert.True(t, metas[0].UpdatedAt.After(metas[1].UpdatedAt))

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)
	metas, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, metas)
	assert.Empty(t, metas)
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("s1", "Refund-Policy.pdf", "How long do I have?")))
	require.NoError(t, s.Save(ctx, testSession("s2", "warranty.pdf", "Is water damage covered?")))

	tests := []struct {
		query string
		want  []string
	}{
		{"refund", []string{"s1"}},
		{"WATER", []string{"s2"}},
		{"answer", []string{"s2", "s1"}},
		{"100%", nil},
		{"", []string{"s2", "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			metas, err := s.Search(ctx, tt.query, 0)
			require.NoError(t, err)
			var ids []string
			for _, m := range metas {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

// =============================================================================
// DELETE / PRUNE TESTS
// =============================================================================

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("gone-1", "a.pdf", "q")))

	id, err := s.Delete(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone-1", id)

	_, err = s.Load(ctx, "gone-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	assert.Zero(t, n)

	_, err = s.Delete(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMaxSessions_PrunesOldest(t *testing.T) {
	s := openTestStore(t, WithMaxSessions(2))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, testSession(id, id+".pdf", "q")))
	}

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "c", metas[0].ID)
	assert.Equal(t, "b", metas[1].ID)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE session_id = 'a'`).Scan(&n))
	assert.Zero(t, n)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testSession("a", "a.pdf")))
	require.NoError(t, s.Save(ctx, testSession("b", "b.pdf")))

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testSession("keep", "a.pdf", "q")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())

	out, err := s.Load(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, out.Messages, 3)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

type fakeBackend struct{}

func (fakeBackend) UploadDocument(context.Context, session.Document) (session.UploadResult, error) {
	return session.UploadResult{CollectionRef: "guide"}, nil
}

func (fakeBackend) AnswerQuery(context.Context, string, string) (session.Answer, error) {
	return session.Answer{Text: "Yes.", Citations: []string{"p. 3"}}, nil
}

func TestFromMachine(t *testing.T) {
	m := session.New(fakeBackend{})
	require.NoError(t, m.SelectFile(session.Document{Name: "guide.pdf", Data: []byte("%PDF-1.7\n")}))
	require.NoError(t, m.Upload(context.Background()))
	_, err := m.Ask(context.Background(), "Is it covered?")
	require.NoError(t, err)

	snap := FromMachine(m)
	assert.Equal(t, m.ID(), snap.ID)
	assert.Equal(t, "guide.pdf", snap.Document)
	assert.Equal(t, "guide", snap.Collection)
	assert.Len(t, snap.Messages, 3)

	s := openTestStore(t)
	require.NoError(t, s.Save(context.Background(), snap))
	out, err := s.Load(context.Background(), m.ID()[:8])
	require.NoError(t, err)
	assert.Equal(t, []string{"p. 3"}, out.Messages[2].Citations)
}
