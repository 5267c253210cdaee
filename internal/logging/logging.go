// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers used across docqa.
//
// The TUI owns stdout, so in ModeTUI logs go to a JSON-lines file. The
// REPL and one-shot commands log to stderr through a ConsoleWriter, and
// only when verbose output was requested.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects the log sink.
type Mode int

const (
	// ModeTUI writes JSON lines to a file.
	ModeTUI Mode = iota
	// ModeCLI writes human-readable lines to stderr.
	ModeCLI
)

// Options configures New.
type Options struct {
	Mode  Mode
	Level string
	// File is the TUI log path. Parent directories are created.
	File string
	// Verbose enables ModeCLI output; without it the CLI logger is a no-op.
	Verbose bool
	// Out replaces stderr in ModeCLI.
	Out io.Writer
}

// New builds a logger. The returned closer releases the log file and is
// never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := ParseLevel(opts.Level)

	switch opts.Mode {
	case ModeCLI:
		if !opts.Verbose {
			return Nop(), nopCloser{}, nil
		}
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			Level(level).
			With().
			Timestamp().
			Logger()
		return log, nopCloser{}, nil

	default:
		if opts.File == "" {
			return Nop(), nopCloser{}, nil
		}
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return Nop(), nopCloser{}, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		log := zerolog.New(f).
			Level(level).
			With().
			Timestamp().
			Logger()
		return log, f, nil
	}
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// mean info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
