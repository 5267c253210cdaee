// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/storage"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// Runtime bundles what every entry point needs: configuration, logger,
// backend client, a fresh session and the history archive.
type Runtime struct {
	Config  *config.Config
	Log     zerolog.Logger
	Client  *backend.Client
	Machine *session.Machine
	Theme   *styles.Theme
	History *storage.Store // nil when history is disabled or unavailable

	closer io.Closer
}

// NewRuntime loads configuration (applying --config and --backend),
// builds the logger for mode, and wires the client into a new session.
func NewRuntime(args Args, mode logging.Mode) (*Runtime, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	logPath := cfg.Logging.File
	if mode == logging.ModeTUI && logPath == "" {
		if p, err := cfg.LogPath(); err == nil {
			logPath = p
		}
	}
	log, closer, err := logging.New(logging.Options{
		Mode:    mode,
		Level:   cfg.Logging.Level,
		File:    logPath,
		Verbose: args.Verbose,
	})
	if err != nil {
		return nil, err
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:   cfg.Backend.URL,
		Timeout:   cfg.Timeout(),
		UserAgent: userAgent(cfg),
	}).WithLogger(log)

	machine := session.New(client, session.WithLogger(log))
	log.Debug().
		Str("backend", client.BaseURL()).
		Str("session", machine.ID()).
		Msg("runtime ready")

	return &Runtime{
		Config:  cfg,
		Log:     log,
		Client:  client,
		Machine: machine,
		Theme:   styles.NewTheme(cfg.UI.Theme),
		History: openHistory(cfg, log),
		closer:  closer,
	}, nil
}

// openHistory opens the session archive. Failures are logged and leave
// history off; they never stop the program.
func openHistory(cfg *config.Config, log zerolog.Logger) *storage.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		return nil
	}
	store, err := storage.Open(path, storage.WithMaxSessions(cfg.History.MaxSessions))
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("history disabled")
		return nil
	}
	return store
}

// sessionSaver is the part of *storage.Store the commands write through.
type sessionSaver interface {
	Save(ctx context.Context, sess storage.Session) error
}

// historyOf returns rt.History as a sessionSaver, or nil.
func historyOf(rt *Runtime) sessionSaver {
	if rt.History == nil {
		return nil
	}
	return rt.History
}

// saveSession archives m's session. It does nothing without a saver or
// before the first message.
func saveSession(ctx context.Context, saver sessionSaver, m *session.Machine) error {
	if saver == nil || m.TranscriptLen() == 0 {
		return nil
	}
	return saver.Save(ctx, storage.FromMachine(m))
}

// Close releases the history database and the log file.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.History != nil {
		errs = append(errs, r.History.Close())
	}
	if r.closer != nil {
		errs = append(errs, r.closer.Close())
	}
	return errors.Join(errs...)
}

// LoadConfig loads the config file named by --config (or the default one)
// and applies --backend on top.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigFile != "" {
		cfg, err = config.LoadFromPath(args.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func userAgent(cfg *config.Config) string {
	if cfg.Backend.UserAgent != "" {
		return cfg.Backend.UserAgent
	}
	return "docqa/" + Version
}

// =============================================================================
// FORMATTING
// =============================================================================

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
