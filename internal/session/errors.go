// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
)

// Transcript text used when the backend gives no detail.
const (
	DefaultUploadErrorText = "Failed to upload PDF. Please try again."
	DefaultQueryErrorText  = "Failed to get response. Please try again."
)

// Guard errors. None of them change state or add a message.
var (
	// ErrInvalidFileType rejects a selected file that is not a PDF.
	ErrInvalidFileType = errors.New("only PDF files are allowed")
	// ErrNoDocument rejects an upload with nothing selected.
	ErrNoDocument = errors.New("no document selected")
	// ErrNotReady rejects a query before a document has been uploaded.
	ErrNotReady = errors.New("no document is ready for questions")
	// ErrEmptyQuery rejects a blank question.
	ErrEmptyQuery = errors.New("question is empty")
	// ErrQueryInFlight rejects a question while another is unanswered.
	ErrQueryInFlight = errors.New("a question is already waiting for an answer")
	// ErrBusy rejects a reset while a request is outstanding.
	ErrBusy = errors.New("a request is still in progress")
	// ErrUnexpectedEvent rejects an event that is not legal in the current state.
	ErrUnexpectedEvent = errors.New("event not allowed in current state")
	// ErrEmptyCollection is recorded when the backend accepts an upload
	// but names no collection.
	ErrEmptyCollection = errors.New("backend returned no collection reference")
)

// detailer is implemented by backend errors that carry a server-supplied,
// user-facing message (the conventional "detail" field).
type detailer interface {
	UserDetail() string
}

func userText(err error, fallback string) string {
	var d detailer
	if errors.As(err, &d) {
		if text := d.UserDetail(); text != "" {
			return text
		}
	}
	return fallback
}

// UploadError records a failed upload. The session moves to
// StateUploadFailed and a retry is allowed.
type UploadError struct {
	Document string
	Err      error
}

func (e *UploadError) Error() string {
	return "upload " + e.Document + ": " + e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// UserMessage is the transcript text for this failure.
func (e *UploadError) UserMessage() string {
	return userText(e.Err, DefaultUploadErrorText)
}

// QueryError records a failed question. The session stays ready.
type QueryError struct {
	Question string
	Err      error
}

func (e *QueryError) Error() string {
	return "query: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// UserMessage is the transcript text for this failure.
func (e *QueryError) UserMessage() string {
	return userText(e.Err, DefaultQueryErrorText)
}
