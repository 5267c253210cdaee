// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (see 'docqa help')", e.Command, e.Reason)
}

// CommandError wraps a failure of one command step.
type CommandError struct {
	Command string // e.g. "ask"
	Action  string // e.g. "upload"
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError prints err to stderr, or as a JSON response on stdout in
// JSON mode. Upload and query failures show the user-facing text.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse("", err).Print()
		return
	}
	writeError(os.Stderr, err)
}

func writeError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), userMessage(err))
}

// userMessage prefers the text the session would show in the transcript.
func userMessage(err error) string {
	var upErr *session.UploadError
	if errors.As(err, &upErr) {
		return upErr.UserMessage()
	}
	var qErr *session.QueryError
	if errors.As(err, &qErr) {
		return qErr.UserMessage()
	}
	return err.Error()
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	var clientErr *backend.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case backend.ErrTypeTimeout:
			return ExitTimeoutError
		case backend.ErrTypeConnection:
			return ExitNetworkError
		}
	}

	return ExitGeneralError
}
