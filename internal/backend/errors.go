// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a request that produced no usable response.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches on error type so callers can test against the sentinels.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeInvalidRequest
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidRequest:
		return "invalid_request"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking with errors.Is.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from backend"}
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Status     string
	// Detail is the service's own explanation, if it sent one.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %s: %s", e.Status, e.Detail)
	}
	return "backend returned " + e.Status
}

// UserDetail returns the service-supplied message for display.
func (e *APIError) UserDetail() string {
	return e.Detail
}

// errorBody is the FastAPI error envelope. detail is either a string or a
// list of validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseDetail extracts a human-readable detail from an error body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(eb.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil {
		for _, is := range issues {
			if msg := strings.TrimSpace(is.Msg); msg != "" {
				return msg
			}
		}
	}
	return ""
}
