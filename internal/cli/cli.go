// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdConfig:
		return "config"
	case CmdHistory:
		return "history"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	Quiet      bool
	JSON       bool
	Backend    string // overrides backend.url
	ConfigFile string // overrides ~/.docqa/config.toml

	// Command-specific
	File       string // PDF to upload (ask, chat)
	Query      string // question (ask)
	Sources    bool   // print source passages (ask)
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Target     string // session ID or search text (history)
	Limit      int    // rows to list (history)
	Yes        bool   // confirm destructive actions (history clear)

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `docqa - ask questions about a PDF from the terminal

Usage:
  docqa                          Start the TUI (default, needs a terminal)
  docqa chat [--file PDF]        Interactive REPL
  docqa ask --file PDF QUESTION  Upload a PDF and ask one question
  docqa config [show|get|set|path|reset]
                                 Show or change ~/.docqa/config.toml
  docqa history [list|show ID|search TEXT|delete ID|clear]
                                 Browse past sessions
  docqa version                  Show version information
  docqa help                     Show this help

Global flags:
  --backend URL                  Backend base URL (default http://localhost:8000)
  --config PATH                  Use another config file
  --json                         JSON output (ask, config, history, version)
  -v, --verbose                  Log to stderr
  -q, --quiet                    Less output

Ask flags:
  -f, --file PDF                 Document to upload
  -s, --sources                  Print the passages the answer is based on

History flags:
  -n, --limit N                  Sessions to list (default 20, 0 for all)
  -s, --sources                  Show source passages (show)
  -y, --yes                      Confirm clear

Chat commands:
  /upload PATH    choose and upload a PDF (no PATH retries the last one)
  /sources        toggle source passages
  /copy           copy the last answer to the clipboard
  /export [FMT]   write the transcript (markdown, json, text)
  /reset          start over with a new PDF
  /status         show session state
  /help           list commands
  /quit           exit

Examples:
  docqa ask -f manual.pdf "What is the refund policy?"
  docqa config set backend.url http://qa.internal:8000
  docqa history show 3f2a
  DOCQA_BACKEND_URL=http://localhost:9000 docqa chat
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch name {
	case "tui":
		return CmdTUI, args
	case "ask", "a":
		parseAskArgs(&args, remaining)
		return CmdAsk, args
	case "chat", "c":
		parseChatArgs(&args, remaining)
		return CmdChat, args
	case "config", "cfg":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args
	case "history", "hist":
		parseHistoryArgs(&args, remaining)
		return CmdHistory, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		args.Subcommand = name
		return CmdUnknown, args
	}
}

// parseGlobalFlags strips flags that apply to every command.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--json":
			args.JSON = true
		case arg == "--backend" || arg == "--config":
			if i+1 < len(argv) {
				i++
				args.setGlobal(arg, argv[i])
			}
		case strings.HasPrefix(arg, "--backend="), strings.HasPrefix(arg, "--config="):
			name, value, _ := strings.Cut(arg, "=")
			args.setGlobal(name, value)
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

func (a *Args) setGlobal(flag, value string) {
	if flag == "--backend" {
		a.Backend = value
	} else {
		a.ConfigFile = value
	}
}

func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "sources", "s")
	args.File = p.Flag("file", "f")
	args.Sources = p.BoolFlag("sources", "s")
	args.Query = strings.Join(p.PositionalFrom(0), " ")
}

func parseChatArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.File = p.Flag("file", "f")
	if args.File == "" {
		args.File = p.Positional(0)
	}
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Positional(0))
	if args.Subcommand == "" {
		args.Subcommand = "show"
	}
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
}

func parseHistoryArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "sources", "s", "yes", "y")
	args.Subcommand = strings.ToLower(p.Positional(0))
	if args.Subcommand == "" {
		args.Subcommand = "list"
	}
	args.Target = strings.Join(p.PositionalFrom(1), " ")
	args.Sources = p.BoolFlag("sources", "s")
	args.Yes = p.BoolFlag("yes", "y")

	args.Limit = defaultHistoryLimit
	if v := p.Flag("limit", "n"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			args.Limit = n
		}
	}
}

// =============================================================================
// VERSION
// =============================================================================

// VersionData is the JSON form of `docqa version`.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// HandleVersion prints build information.
func HandleVersion(args Args) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if args.JSON {
		return NewJSONResponse("version", data).Print()
	}
	fmt.Printf("docqa %s\n", data.Version)
	if !args.Quiet {
		fmt.Printf("  commit:   %s\n", data.GitCommit)
		fmt.Printf("  built:    %s\n", data.BuildDate)
		fmt.Printf("  go:       %s\n", data.GoVersion)
		fmt.Printf("  platform: %s\n", data.Platform)
	}
	return nil
}
