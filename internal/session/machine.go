// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/docqa-tui/internal/model"
)

// =============================================================================
// MACHINE
// =============================================================================

// Machine drives one chat session. It is not safe for concurrent use; see
// the package documentation for how backend calls are run.
type Machine struct {
	id        string
	createdAt time.Time
	backend   Backend
	baseLog   zerolog.Logger
	log       zerolog.Logger

	state         State
	doc           *Document
	collectionRef string
	queryInFlight bool
	pending       string // question awaiting an answer
	lastErr       error

	store *model.Store
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// WithStore makes the machine record into an existing store.
func WithStore(store *model.Store) Option {
	return func(m *Machine) {
		if store != nil {
			m.store = store
		}
	}
}

// New creates a session in StateIdle with an empty transcript.
func New(backend Backend, opts ...Option) *Machine {
	m := &Machine{
		id:        uuid.New().String(),
		createdAt: time.Now(),
		backend:   backend,
		log:       zerolog.Nop(),
		state:     StateIdle,
		store:     model.NewStore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.baseLog = m.log
	m.log = m.log.With().Str("session", m.id).Logger()
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the session identifier.
func (m *Machine) ID() string { return m.id }

// CreatedAt returns when the session was created.
func (m *Machine) CreatedAt() time.Time { return m.createdAt }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// CollectionRef returns the backend collection of the uploaded document,
// or "" before a successful upload.
func (m *Machine) CollectionRef() string { return m.collectionRef }

// QueryInFlight reports whether a question is waiting for its answer.
func (m *Machine) QueryInFlight() bool { return m.queryInFlight }

// Document returns the selected document, if any.
func (m *Machine) Document() (Document, bool) {
	if m.doc == nil {
		return Document{}, false
	}
	return *m.doc, true
}

// Transcript returns a copy of every message in order.
func (m *Machine) Transcript() []model.Message { return m.store.All() }

// TranscriptLen returns the number of messages.
func (m *Machine) TranscriptLen() int { return m.store.Len() }

// TranscriptVersion changes every time the transcript does.
func (m *Machine) TranscriptVersion() uint64 { return m.store.Version() }

// LastAnswer returns the most recent assistant message.
func (m *Machine) LastAnswer() (model.Message, bool) {
	return m.store.LastOfRole(model.RoleAssistant)
}

// LastError returns the error recorded by the most recent failed upload
// or query, or nil.
func (m *Machine) LastError() error { return m.lastErr }

// CanUpload reports whether StartUpload would be accepted.
func (m *Machine) CanUpload() bool { return m.doc != nil && m.state.canUpload() }

// CanSend reports whether SendQuery would accept a non-empty question.
func (m *Machine) CanSend() bool { return m.state == StateReady && !m.queryInFlight }

// Busy reports whether an upload or query is outstanding.
func (m *Machine) Busy() bool { return m.state == StateUploading || m.queryInFlight }

// =============================================================================
// DOCUMENT EVENTS
// =============================================================================

// SelectFile chooses the document to upload. Files that are not PDFs are
// rejected with ErrInvalidFileType and nothing changes.
func (m *Machine) SelectFile(doc Document) error {
	if !m.state.acceptsFile() {
		return m.unexpected("select_file")
	}
	if !doc.IsPDF() {
		m.log.Debug().Str("file", doc.Name).Msg("rejected non-PDF file")
		return ErrInvalidFileType
	}
	m.doc = &doc
	m.transition(StateFileChosen, "select_file")
	return nil
}

// StartUpload moves to StateUploading and returns the request to run.
func (m *Machine) StartUpload() (UploadCall, error) {
	if m.doc == nil {
		return nil, ErrNoDocument
	}
	if !m.state.canUpload() {
		return nil, m.unexpected("start_upload")
	}
	m.lastErr = nil
	m.transition(StateUploading, "start_upload")

	doc := *m.doc
	backend := m.backend
	return func(ctx context.Context) UploadOutcome {
		res, err := backend.UploadDocument(ctx, doc)
		return UploadOutcome{Result: res, Err: err}
	}, nil
}

// UploadSucceeded records a finished upload. An empty collection reference
// is treated as a failure.
func (m *Machine) UploadSucceeded(collectionRef string) error {
	if m.state != StateUploading {
		return m.unexpected("upload_succeeded")
	}
	ref := strings.TrimSpace(collectionRef)
	if ref == "" {
		return m.UploadFailed(ErrEmptyCollection)
	}

	m.collectionRef = ref
	m.store.Append(model.NewSystemMessage(
		`PDF "` + m.doc.Name + `" uploaded successfully! You can now ask questions about it.`))
	m.transition(StateReady, "upload_succeeded")
	m.log.Info().Str("file", m.doc.Name).Str("collection", ref).Msg("document ready")
	return nil
}

// UploadFailed records a failed upload. The document stays selected so the
// upload can be retried.
func (m *Machine) UploadFailed(cause error) error {
	if m.state != StateUploading {
		return m.unexpected("upload_failed")
	}
	if cause == nil {
		cause = errors.New("unknown upload failure")
	}
	upErr := &UploadError{Document: m.doc.Name, Err: cause}
	m.lastErr = upErr
	m.store.Append(model.NewErrorMessage(upErr.UserMessage()))
	m.transition(StateUploadFailed, "upload_failed")
	m.log.Warn().Err(cause).Str("file", m.doc.Name).Msg("upload failed")
	return nil
}

// ResolveUpload feeds the outcome of an UploadCall back into the machine.
func (m *Machine) ResolveUpload(out UploadOutcome) error {
	if out.Err != nil {
		return m.UploadFailed(out.Err)
	}
	return m.UploadSucceeded(out.Result.CollectionRef)
}

// Upload runs StartUpload, the request and ResolveUpload in one step. It
// returns the recorded *UploadError when the upload failed.
func (m *Machine) Upload(ctx context.Context) error {
	call, err := m.StartUpload()
	if err != nil {
		return err
	}
	if err := m.ResolveUpload(call(ctx)); err != nil {
		return err
	}
	if m.state == StateUploadFailed {
		return m.lastErr
	}
	return nil
}

// =============================================================================
// QUERY EVENTS
// =============================================================================

// SendQuery records the user's question and returns the request to run.
// The question is trimmed and NFC-normalized; blank questions, questions
// before an upload, and questions while another is unanswered are
// rejected without touching the transcript.
func (m *Machine) SendQuery(text string) (QueryCall, error) {
	question := norm.NFC.String(strings.TrimSpace(text))
	if question == "" {
		return nil, ErrEmptyQuery
	}
	if m.state != StateReady {
		return nil, ErrNotReady
	}
	if m.queryInFlight {
		return nil, ErrQueryInFlight
	}

	m.store.Append(model.NewUserMessage(question))
	m.queryInFlight = true
	m.pending = question
	m.lastErr = nil
	m.log.Debug().Int("len", len(question)).Msg("query sent")

	ref := m.collectionRef
	backend := m.backend
	return func(ctx context.Context) QueryOutcome {
		ans, err := backend.AnswerQuery(ctx, question, ref)
		return QueryOutcome{Answer: ans, Err: err}
	}, nil
}

// QueryAnswered records the assistant's answer.
func (m *Machine) QueryAnswered(answer string, citations []string) error {
	if m.state != StateReady || !m.queryInFlight {
		return m.unexpected("query_answered")
	}
	m.store.Append(model.NewAssistantMessage(answer, citations))
	m.clearQuery()
	m.log.Debug().Int("citations", len(citations)).Msg("query answered")
	return nil
}

// QueryFailed records a failed question. The session stays ready.
func (m *Machine) QueryFailed(cause error) error {
	if m.state != StateReady || !m.queryInFlight {
		return m.unexpected("query_failed")
	}
	if cause == nil {
		cause = errors.New("unknown query failure")
	}
	qErr := &QueryError{Question: m.pending, Err: cause}
	m.lastErr = qErr
	m.store.Append(model.NewErrorMessage(qErr.UserMessage()))
	m.clearQuery()
	m.log.Warn().Err(cause).Msg("query failed")
	return nil
}

// ResolveQuery feeds the outcome of a QueryCall back into the machine.
func (m *Machine) ResolveQuery(out QueryOutcome) error {
	if out.Err != nil {
		return m.QueryFailed(out.Err)
	}
	return m.QueryAnswered(out.Answer.Text, out.Answer.Citations)
}

// Ask runs SendQuery, the request and ResolveQuery in one step and returns
// the message it added. A failed query returns the error message together
// with the recorded *QueryError.
func (m *Machine) Ask(ctx context.Context, text string) (model.Message, error) {
	call, err := m.SendQuery(text)
	if err != nil {
		return model.Message{}, err
	}
	if err := m.ResolveQuery(call(ctx)); err != nil {
		return model.Message{}, err
	}
	last, _ := m.store.Last()
	if last.Role == model.RoleError {
		return last, m.lastErr
	}
	return last, nil
}

// =============================================================================
// RESET
// =============================================================================

// Reset clears the document, the collection reference and the transcript
// and returns to StateIdle under a new session ID. It is refused while a
// request is outstanding.
func (m *Machine) Reset() error {
	if m.Busy() {
		return ErrBusy
	}
	prev := m.id
	m.id = uuid.New().String()
	m.createdAt = time.Now()
	m.log = m.baseLog.With().Str("session", m.id).Logger()
	m.log.Debug().Str("previous", prev).Msg("session renewed")

	m.doc = nil
	m.collectionRef = ""
	m.lastErr = nil
	m.pending = ""
	m.store.Reset()
	m.transition(StateIdle, "reset")
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Machine) clearQuery() {
	m.queryInFlight = false
	m.pending = ""
}

func (m *Machine) transition(to State, event string) {
	from := m.state
	m.state = to
	m.log.Debug().
		Str("event", event).
		Stringer("from", from).
		Stringer("to", to).
		Msg("session transition")
}

func (m *Machine) unexpected(event string) error {
	m.log.Debug().
		Str("event", event).
		Stringer("state", m.state).
		Bool("query_in_flight", m.queryInFlight).
		Msg("ignored event")
	return ErrUnexpectedEvent
}
