// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document answer service.
//
// The service exposes two endpoints:
//
//	POST /upload  multipart form, field "file" → the PDF is chunked and indexed
//	POST /query   {"question", "collection_name"} → {"answer", "context_used"}
//
// Client implements session.Backend. Failures come back as *APIError when
// the service answered with a non-2xx status and as *ClientError when the
// request never got a usable answer.
package backend
