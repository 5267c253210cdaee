// docqa - ask questions about a PDF from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/cli"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
	default:
		err = &cli.UsageError{Command: args.Subcommand, Reason: "unknown command"}
	}

	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("start the interactive UI"); err != nil {
		cli.PrintUsage(os.Stderr)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Use 'docqa ask' or 'docqa chat' when not attached to a terminal.")
		return err
	}

	rt, err := cli.NewRuntime(args, logging.ModeTUI)
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := chat.Options{
		Machine: rt.Machine,
		Pinger:  rt.Client,
		Config:  rt.Config,
		Theme:   rt.Theme,
		Logger:  &rt.Log,
	}
	if rt.History != nil {
		opts.History = rt.History
	}
	m := chat.New(opts)

	rt.Log.Info().Str("session", rt.Machine.ID()).Msg("starting TUI")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
