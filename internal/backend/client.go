// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/docqa-tui/internal/session"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the service root (default: http://localhost:8000)
	BaseURL string

	// Timeout for a whole request, upload included (default: 120s)
	Timeout time.Duration

	// UserAgent sent with every request (default: docqa/dev)
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://localhost:8000",
		Timeout:   120 * time.Second,
		UserAgent: "docqa/dev",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the answer service. It is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	res, err := client.UploadDocument(ctx, doc)
//	ans, err := client.AnswerQuery(ctx, "What is covered?", res.CollectionRef)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	log        zerolog.Logger
}

var _ session.Backend = (*Client)(nil)

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration. Zero
// fields take their defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	return &Client{
		config:     &cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zerolog.Nop(),
	}
}

// WithLogger sets the client's logger and returns the client.
func (c *Client) WithLogger(log zerolog.Logger) *Client {
	c.log = log.With().Str("component", "backend").Logger()
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Ping verifies that the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadDocument sends the document to /upload and returns the collection
// it was indexed into.
func (c *Client) UploadDocument(ctx context.Context, doc session.Document) (session.UploadResult, error) {
	body, contentType, err := encodeUpload(doc)
	if err != nil {
		return session.UploadResult{}, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to encode upload", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", body)
	if err != nil {
		return session.UploadResult{}, err
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	var result UploadResponse
	if err := c.doJSON(req, &result); err != nil {
		c.log.Warn().Err(err).Str("file", doc.Name).Msg("upload failed")
		return session.UploadResult{}, err
	}

	ref := strings.TrimSpace(result.CollectionName)
	if ref == "" {
		ref = CollectionName(doc.Name)
	}
	c.log.Info().
		Str("file", doc.Name).
		Str("collection", ref).
		Int("chunks", result.TotalChunks).
		Dur("elapsed", time.Since(start)).
		Msg("document uploaded")

	return session.UploadResult{CollectionRef: ref}, nil
}

// CollectionName derives the collection a file is indexed into: its base
// name without the final extension.
func CollectionName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeUpload(doc session.Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(doc.Name)))
	h.Set("Content-Type", "application/pdf")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// =============================================================================
// QUERY
// =============================================================================

// AnswerQuery asks a question against an uploaded collection. The passages
// the service used come back as citations.
func (c *Client) AnswerQuery(ctx context.Context, question, collectionRef string) (session.Answer, error) {
	payload, err := json.Marshal(QueryRequest{Question: question, CollectionName: collectionRef})
	if err != nil {
		return session.Answer{}, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/query", bytes.NewReader(payload))
	if err != nil {
		return session.Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	var result QueryResponse
	if err := c.doJSON(req, &result); err != nil {
		return session.Answer{}, err
	}
	if strings.TrimSpace(result.Answer) == "" {
		return session.Answer{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no answer"}
	}

	c.log.Debug().
		Str("collection", collectionRef).
		Int("citations", len(result.ContextUsed)).
		Dur("elapsed", time.Since(start)).
		Msg("query answered")

	return session.Answer{Text: result.Answer, Citations: result.ContextUsed}, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return resp, nil
}

// doJSON sends req and decodes a 2xx body into out. Other statuses
// become *APIError.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     parseDetail(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable", Cause: err}
}
