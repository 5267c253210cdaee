// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - the config command.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Change one value and save
//   reset               Write the built-in defaults
//   path                Show the config file location
//
// Keys use dot notation, e.g. backend.url, ui.show_citations,
// export.format. Run `docqa config show` for the full list.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/docqa-tui/internal/config"
)

// HandleConfig handles `docqa config`.
func HandleConfig(args Args) error {
	return runConfig(args, os.Stdout)
}

func runConfig(args Args, out io.Writer) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show", "list":
		return configShow(args, out)
	case "get":
		return configGet(args, out)
	case "set":
		return configSet(args, out)
	case "reset":
		return configReset(args, out)
	case "path":
		return configPath(args, out)
	default:
		return &UsageError{
			Command: "config",
			Reason:  fmt.Sprintf("unknown subcommand %q (use show, get, set, reset or path)", args.Subcommand),
		}
	}
}

func configShow(args Args, out io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	if args.JSON {
		values := make(map[string]interface{}, len(config.GetAllKeys()))
		for _, key := range config.GetAllKeys() {
			v, _ := cfg.Get(key)
			values[key] = v
		}
		return NewJSONResponse("config", values).Write(out)
	}

	fmt.Fprintln(out, TitleStyle.Render("Configuration"))
	for _, key := range config.GetAllKeys() {
		v, _ := cfg.Get(key)
		value := fmt.Sprint(v)
		if value == "" {
			value = DimStyle.Render("(default)")
		} else {
			value = ValueStyle.Render(value)
		}
		fmt.Fprintf(out, "  %s %s\n", LabelStyle.Render(key), value)
	}
	return nil
}

func configGet(args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return &UsageError{Command: "config get", Reason: "a key is required"}
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &UsageError{Command: "config get", Reason: err.Error()}
	}
	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{args.ConfigKey: v}).Write(out)
	}
	fmt.Fprintln(out, v)
	return nil
}

// configSet edits the file on disk. Environment and --backend overrides
// are not written back.
func configSet(args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return &UsageError{Command: "config set", Reason: "usage: config set KEY VALUE"}
	}
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &UsageError{Command: "config set", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return &CommandError{Command: "config", Action: "save", Err: err}
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{args.ConfigKey: args.ConfigVal}).Write(out)
	}
	if !args.Quiet {
		fmt.Fprintf(out, "%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, args.ConfigVal)
	}
	return nil
}

func configReset(args Args, out io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &CommandError{Command: "config", Action: "reset", Err: err}
	}
	if !args.Quiet {
		fmt.Fprintln(out, SuccessStyle.Render("Configuration reset to defaults: ")+path)
	}
	return nil
}

func configPath(args Args, out io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if args.JSON {
		_, statErr := os.Stat(path)
		return NewJSONResponse("config", map[string]interface{}{
			"path":   path,
			"exists": statErr == nil,
		}).Write(out)
	}
	fmt.Fprintln(out, path)
	return nil
}

func configFilePath(args Args) (string, error) {
	if args.ConfigFile != "" {
		return args.ConfigFile, nil
	}
	return config.ConfigPath()
}
