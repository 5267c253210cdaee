// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

// =============================================================================
// WIRE TYPES
// =============================================================================

// UploadResponse is the body of a successful /upload.
type UploadResponse struct {
	Message          string `json:"message"`
	OriginalFilename string `json:"original_filename"`
	SavedAs          string `json:"saved_as"`
	TotalChunks      int    `json:"total_chunks"`
	CollectionName   string `json:"collection_name,omitempty"`
}

// QueryRequest is the body of /query.
type QueryRequest struct {
	Question       string `json:"question"`
	CollectionName string `json:"collection_name"`
}

// QueryResponse is the body of a successful /query. Question and
// ContextUsed are absent when nothing relevant was found.
type QueryResponse struct {
	Question    string   `json:"question,omitempty"`
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used,omitempty"`
}
