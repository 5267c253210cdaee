// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_TUIWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docqa.log")
	log, closer, err := New(Options{Mode: ModeTUI, Level: "debug", File: path})
	require.NoError(t, err)

	log.Info().Str("session", "abc").Msg("document ready")
	log.Debug().Msg("transition")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["session"])
	assert.Equal(t, "document ready", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_TUIRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.log")
	log, closer, err := New(Options{Mode: ModeTUI, Level: "warn", File: path})
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	require.NoError(t, closer.Close())

	data, _ := os.ReadFile(path)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_CLIQuietUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Options{Mode: ModeCLI, Out: &buf})
	require.NoError(t, err)
	log.Error().Msg("should not appear")
	assert.Empty(t, buf.String())

	log, _, err = New(Options{Mode: ModeCLI, Verbose: true, Out: &buf})
	require.NoError(t, err)
	log.Info().Msg("uploading")
	assert.Contains(t, buf.String(), "uploading")
}

func TestNew_NoFileIsNop(t *testing.T) {
	log, closer, err := New(Options{Mode: ModeTUI})
	require.NoError(t, err)
	assert.NotNil(t, closer)
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
