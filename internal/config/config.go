// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docqa configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
	Export  ExportConfig  `toml:"export"`
	History HistoryConfig `toml:"history"`
}

// BackendConfig describes how to reach the answer service.
type BackendConfig struct {
	// URL is the service root, e.g. http://localhost:8000
	URL string `toml:"url"`
	// TimeoutSecs bounds a whole request. PDF indexing can be slow.
	TimeoutSecs int `toml:"timeout_secs"`
	// UserAgent overrides the default docqa/<version> header
	UserAgent string `toml:"user_agent"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme"`
	// ShowCitations expands the source passages under each answer
	ShowCitations bool `toml:"show_citations"`
	// CompactMode drops the blank line between messages
	CompactMode bool `toml:"compact_mode"`
}

// LoggingConfig controls the log sink.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level"`
	// File is the TUI log path (empty = ~/.docqa/docqa.log)
	File string `toml:"file"`
}

// ExportConfig controls transcript export.
type ExportConfig struct {
	// Dir receives exported transcripts (empty = ~/.docqa/exports)
	Dir string `toml:"dir"`
	// Format is "markdown", "json" or "text"
	Format string `toml:"format"`
}

// HistoryConfig controls the local session archive.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// File is the SQLite database (empty = ~/.docqa/history.db)
	File string `toml:"file"`
	// MaxSessions keeps the newest N sessions (0 = unlimited)
	MaxSessions int `toml:"max_sessions"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         "http://localhost:8000",
			TimeoutSecs: 120,
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Format: "markdown",
		},
		History: HistoryConfig{
			Enabled:     true,
			MaxSessions: 200,
		},
	}
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docqa configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docqa"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the effective TUI log file.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "docqa.log"), nil
}

// ExportDir returns the effective export directory.
func (c *Config) ExportDir() (string, error) {
	if c.Export.Dir != "" {
		return c.Export.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exports"), nil
}

// HistoryPath returns the effective history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.File != "" {
		return c.History.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.docqa/config.toml. A missing file yields the defaults.
// A .env file in the working directory and DOCQA_* variables are applied
// on top, then the result is validated.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit config file.
func LoadFromPath(path string) (*Config, error) {
	// A missing .env is the normal case.
	_ = LoadDotEnv()

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. With no arguments it reads
// ./.env.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// fillDefaults restores defaults for values a file set to empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.docqa/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# docqa configuration file\n")
	buf.WriteString("# Generated by docqa - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes        = []string{"auto", "dark", "light"}
	validLevels        = []string{"debug", "info", "warn", "error"}
	validExportFormats = []string{"markdown", "json", "text"}
)

// Validate checks every field and returns ValidateErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Backend.URL),
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Backend.TimeoutSecs),
		})
	}

	if !oneOf(c.UI.Theme, validThemes) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(validThemes, ", ")),
		})
	}

	if !oneOf(c.Logging.Level, validLevels) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Logging.Level, strings.Join(validLevels, ", ")),
		})
	}

	if !oneOf(c.Export.Format, validExportFormats) {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: %s", c.Export.Format, strings.Join(validExportFormats, ", ")),
		})
	}

	if c.History.MaxSessions < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.max_sessions",
			Message: fmt.Sprintf("must be 0 (unlimited) or more, got %d", c.History.MaxSessions),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DOCQA_BACKEND_URL: overrides backend.url
//   - DOCQA_TIMEOUT_SECS: overrides backend.timeout_secs
//   - DOCQA_LOG_LEVEL: overrides logging.level
//   - DOCQA_LOG_FILE: overrides logging.file
//   - DOCQA_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCQA_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("DOCQA_TIMEOUT_SECS"); v != "" {
		// Unparseable values are left for Validate to report.
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = n
		} else {
			c.Backend.TimeoutSecs = -1
		}
	}
	if v := os.Getenv("DOCQA_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DOCQA_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("DOCQA_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using its TOML key (e.g. "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a configuration value from its string form. The caller is
// expected to Validate afterwards.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean value %q", key, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("cannot set field: %s", key)
	}
	return nil
}

// lookup walks the struct by toml tags.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(key)), ".")
	if len(parts) == 0 || parts[0] == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i], "."))
		}
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	sort.Strings(keys)
	return keys
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
