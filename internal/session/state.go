// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateFileChosen
	StateUploading
	StateReady
	StateUploadFailed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileChosen:
		return "file_chosen"
	case StateUploading:
		return "uploading"
	case StateReady:
		return "ready"
	case StateUploadFailed:
		return "upload_failed"
	default:
		return "unknown"
	}
}

// acceptsFile reports whether a document may be (re)selected in s.
func (s State) acceptsFile() bool {
	return s == StateIdle || s == StateFileChosen || s == StateUploadFailed
}

// canUpload reports whether an upload may be started from s.
func (s State) canUpload() bool {
	return s == StateFileChosen || s == StateUploadFailed
}
