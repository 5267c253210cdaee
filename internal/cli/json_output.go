// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONResponse is the envelope for every --json output.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response. The message is the
// user-facing text of err.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := userMessage(err)
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to stdout.
func (r *JSONResponse) Print() error {
	return r.Write(os.Stdout)
}

// Write writes the indented response to w.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// AskData is the JSON form of `docqa ask`.
type AskData struct {
	Document   string   `json:"document"`
	Collection string   `json:"collection"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Citations  []string `json:"citations,omitempty"`
}
