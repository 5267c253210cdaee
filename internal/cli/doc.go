// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for
// docqa.
//
// # Commands
//
//   - (none) / tui: the Bubble Tea interface, started by main
//   - chat: a line-oriented REPL with history (peterh/liner)
//   - ask: upload one PDF and ask one question
//   - config: show, get, set, path and reset ~/.docqa/config.toml
//   - version: build information
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	}
//
// ask and config accept --json for machine-readable output.
package cli
