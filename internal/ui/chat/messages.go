// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/export"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/storage"
)

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// uploadDoneMsg carries the outcome of an upload request.
type uploadDoneMsg struct {
	outcome session.UploadOutcome
}

// queryDoneMsg carries the outcome of a question request.
type queryDoneMsg struct {
	outcome session.QueryOutcome
}

// backendStatusMsg reports the result of a health check.
type backendStatusMsg struct {
	err error
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// exportDoneMsg reports a finished transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// historySavedMsg reports a finished history write.
type historySavedMsg struct {
	id  string
	err error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// pingTimeout bounds the header health check.
const pingTimeout = 5 * time.Second

// historyTimeout bounds one history write.
const historyTimeout = 5 * time.Second

// Pinger checks whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistorySaver archives sessions.
type HistorySaver interface {
	Save(ctx context.Context, sess storage.Session) error
}

func uploadCmd(call session.UploadCall) tea.Cmd {
	return func() tea.Msg {
		return uploadDoneMsg{outcome: call(context.Background())}
	}
}

func queryCmd(call session.QueryCall) tea.Cmd {
	return func() tea.Msg {
		return queryDoneMsg{outcome: call(context.Background())}
	}
}

func pingCmd(p Pinger) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		return backendStatusMsg{err: p.Ping(ctx)}
	}
}

// saveHistoryCmd writes a snapshot taken on the update loop.
func saveHistoryCmd(h HistorySaver, sess storage.Session) tea.Cmd {
	if h == nil || len(sess.Messages) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		return historySavedMsg{id: sess.ID, err: h.Save(ctx, sess)}
	}
}

// exportCmd writes an already captured transcript, so the machine is not
// read off the update loop.
func exportCmd(t *export.Transcript, format string, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.ExportToFile(t, exporter, opts)
		return exportDoneMsg{path: path, err: err}
	}
}
