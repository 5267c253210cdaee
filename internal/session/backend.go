// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Backend is the answer service as the session sees it. Both calls are
// plain request/response; any failure is returned as an error.
type Backend interface {
	UploadDocument(ctx context.Context, doc Document) (UploadResult, error)
	AnswerQuery(ctx context.Context, question, collectionRef string) (Answer, error)
}

// UploadResult is a successful upload.
type UploadResult struct {
	CollectionRef string
}

// Answer is a successful query.
type Answer struct {
	Text      string
	Citations []string
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a file chosen for upload.
type Document struct {
	Name string
	Data []byte
}

// ReadDocument loads the file at path. It does not check the type; that
// is SelectFile's job.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Document{Name: filepath.Base(path), Data: data}, nil
}

// Size returns the document size in bytes.
func (d Document) Size() int64 {
	return int64(len(d.Data))
}

// IsPDF reports whether the document looks like a PDF: a .pdf name and
// content that sniffs as application/pdf.
func (d Document) IsPDF() bool {
	if len(d.Data) == 0 {
		return false
	}
	if !strings.EqualFold(filepath.Ext(d.Name), ".pdf") {
		return false
	}
	return http.DetectContentType(d.Data) == "application/pdf"
}

// =============================================================================
// CALLS
// =============================================================================

// UploadOutcome is the result of running an UploadCall.
type UploadOutcome struct {
	Result UploadResult
	Err    error
}

// UploadCall performs one upload request against the backend.
type UploadCall func(ctx context.Context) UploadOutcome

// QueryOutcome is the result of running a QueryCall.
type QueryOutcome struct {
	Answer Answer
	Err    error
}

// QueryCall performs one query request against the backend.
type QueryCall func(ctx context.Context) QueryOutcome
