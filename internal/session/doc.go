// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the upload → ready → query lifecycle of a
// document chat session.
//
// A Machine owns the session state and its transcript (a model.Store). It
// decides which user events are legal, issues backend calls through the
// Backend interface and turns every outcome, good or bad, into a transcript
// message.
//
// # States
//
//	Idle ──SelectFile──▶ FileChosen ──StartUpload──▶ Uploading
//	                                                   │
//	             ┌──────────UploadSucceeded────────────┤
//	             ▼                                     ▼ UploadFailed
//	        Ready(ref) ◀── SendQuery / QueryAnswered   UploadFailed ──StartUpload (retry)
//
// Reset returns to Idle from any state that has no request outstanding.
//
// # Concurrency
//
// A Machine expects exactly one caller (the Bubble Tea update loop or the
// REPL loop) and takes no locks. Backend requests run outside the machine:
// StartUpload and SendQuery return a call to execute anywhere, and the
// result is fed back with ResolveUpload / ResolveQuery on the caller's
// loop. Only one upload or query may be outstanding at a time, so the
// transcript order is the order requests were issued.
//
// # Usage
//
//	m := session.New(client, session.WithLogger(log))
//	doc, _ := session.ReadDocument("manual.pdf")
//	_ = m.SelectFile(doc)
//	_ = m.Upload(ctx)
//	msg, err := m.Ask(ctx, "What is the refund policy?")
package session
