// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - line-mode chat for terminals where the full-screen TUI is not
// wanted.
//
// Command: chat [PATH]
//
// Interactive commands:
//   /upload [PATH]   Select and upload a PDF (no PATH retries the last one)
//   /sources         Toggle the source passages under answers
//   /copy            Copy the last answer to the clipboard
//   /export [FMT]    Write the transcript (markdown, json, text)
//   /reset           Forget the document and start over
//   /status          Show the session state
//   /help            Show commands
//   /quit            Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/export"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing and input history for the chat prompt.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-blank input is added to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes history to disk, readable by the owner only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// chatREPL executes chat input against a session. It never reads input
// itself so it can be driven from tests.
type chatREPL struct {
	machine      *session.Machine
	out          io.Writer
	printer      *messagePrinter
	exportFormat string
	exportDir    string
	copy         func(string) error
	history      sessionSaver // may be nil
	log          zerolog.Logger
}

func newChatREPL(rt *Runtime, out io.Writer) *chatREPL {
	exportDir, err := rt.Config.ExportDir()
	if err != nil {
		exportDir = "."
	}
	return &chatREPL{
		machine: rt.Machine,
		out:     out,
		printer: &messagePrinter{
			out:           out,
			theme:         rt.Theme,
			width:         GetTerminalWidth(),
			showCitations: rt.Config.UI.ShowCitations,
			citationHint:  "/sources to show",
		},
		exportFormat: rt.Config.Export.Format,
		exportDir:    exportDir,
		copy:         clipboard.WriteAll,
		history:      historyOf(rt),
		log:          rt.Log,
	}
}

// prompt reflects whether the session can take questions yet.
func (r *chatREPL) prompt() string {
	if r.machine.State() == session.StateReady {
		return "docqa> "
	}
	return "upload> "
}

// handleLine runs one line of input. It reports whether the user asked to
// quit.
func (r *chatREPL) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "/upload", "/u":
		r.upload(ctx, rest)
	case "/sources":
		r.printer.showCitations = !r.printer.showCitations
		if r.printer.showCitations {
			r.info("Sources will be shown under answers.")
		} else {
			r.info("Sources hidden.")
		}
	case "/copy":
		r.copyLastAnswer()
	case "/export":
		r.export(rest)
	case "/reset":
		if err := r.machine.Reset(); err != nil {
			r.warn("Cannot start over while a request is running.")
			return false
		}
		r.info("Session cleared. Use /upload PATH to pick a new PDF.")
	case "/status", "/s":
		r.printStatus()
	case "/help", "/h", "/?":
		r.printHelp()
	case "/quit", "/q", "/exit":
		return true
	default:
		r.warn(fmt.Sprintf("Unknown command %s. Type /help for commands.", fields[0]))
	}
	return false
}

func (r *chatREPL) upload(ctx context.Context, path string) {
	if path == "" {
		if !r.machine.CanUpload() {
			r.warn("Usage: /upload PATH")
			return
		}
	} else {
		if r.machine.State() == session.StateReady {
			r.warn("A document is already loaded. Use /reset first.")
			return
		}
		doc, err := session.ReadDocument(expandHome(path))
		if err != nil {
			r.warn("Cannot read file: " + err.Error())
			return
		}
		if err := r.machine.SelectFile(doc); err != nil {
			if errors.Is(err, session.ErrInvalidFileType) {
				r.warn("Please select a PDF file.")
			} else {
				r.warn(err.Error())
			}
			return
		}
	}

	doc, _ := r.machine.Document()
	r.info(fmt.Sprintf("Uploading %s (%s)...", doc.Name, util.FormatSizeMB(doc.Size())))
	if err := r.machine.Upload(ctx); err != nil {
		var upErr *session.UploadError
		if !errors.As(err, &upErr) {
			writeError(r.out, err)
			return
		}
	}
	r.printLast()
	r.record(ctx)
	if r.machine.State() == session.StateUploadFailed {
		r.info("Type /upload to retry, or /upload PATH for another file.")
	}
}

func (r *chatREPL) ask(ctx context.Context, question string) {
	_, err := r.machine.Ask(ctx, question)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotReady):
		r.warn("Upload a PDF first: /upload PATH")
		return
	case errors.Is(err, session.ErrEmptyQuery):
		return
	default:
		var qErr *session.QueryError
		if !errors.As(err, &qErr) {
			writeError(r.out, err)
			return
		}
	}
	r.printLast()
	r.record(ctx)
}

func (r *chatREPL) record(ctx context.Context) {
	if err := saveSession(ctx, r.history, r.machine); err != nil {
		r.log.Warn().Err(err).Msg("failed to save history")
	}
}

func (r *chatREPL) printLast() {
	transcript := r.machine.Transcript()
	if len(transcript) == 0 {
		return
	}
	r.printer.print(transcript[len(transcript)-1])
}

func (r *chatREPL) copyLastAnswer() {
	answer, ok := r.machine.LastAnswer()
	if !ok {
		r.warn("No answer to copy.")
		return
	}
	text := export.PlainBody(answer)
	if err := r.copy(text); err != nil {
		r.log.Debug().Err(err).Msg("clipboard write failed")
		r.warn("Clipboard unavailable: " + err.Error())
		return
	}
	r.info(fmt.Sprintf("Copied answer (%d chars).", len([]rune(text))))
}

func (r *chatREPL) export(format string) {
	if r.machine.TranscriptLen() == 0 {
		r.warn("Nothing to export.")
		return
	}
	if format == "" {
		format = r.exportFormat
	}
	opts := export.DefaultOptions()
	opts.OutputDir = r.exportDir

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		r.warn(err.Error())
		return
	}
	path, err := export.ExportToFile(export.FromMachine(r.machine), exporter, opts)
	if err != nil {
		r.warn("Export failed: " + err.Error())
		return
	}
	r.info("Exported to " + path)
}

func (r *chatREPL) printStatus() {
	fmt.Fprintln(r.out, TitleStyle.Render("Session"))
	row := func(label, value string) {
		fmt.Fprintf(r.out, "  %s %s\n", LabelStyle.Render(label), ValueStyle.Render(value))
	}
	row("State", r.machine.State().String())
	if doc, ok := r.machine.Document(); ok {
		row("Document", fmt.Sprintf("%s (%s)", doc.Name, util.FormatSizeMB(doc.Size())))
	} else {
		row("Document", "none")
	}
	if ref := r.machine.CollectionRef(); ref != "" {
		row("Collection", ref)
	}
	row("Messages", fmt.Sprintf("%d", r.machine.TranscriptLen()))
	if q, ok := lastQuestion(r.machine.Transcript()); ok {
		row("Last question", q.Preview(max(r.printer.width-18, 20)))
	}
	row("Sources", onOff(r.printer.showCitations))
	fmt.Fprintln(r.out)
}

func lastQuestion(msgs []model.Message) (model.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

func (r *chatREPL) printHelp() {
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	for _, c := range [][2]string{
		{"/upload [PATH]", "Upload a PDF (no PATH retries)"},
		{"/sources", "Show or hide answer sources"},
		{"/copy", "Copy the last answer"},
		{"/export [FORMAT]", "Save the transcript (markdown, json, text)"},
		{"/reset", "Start over with a new document"},
		{"/status", "Show session state"},
		{"/quit", "Exit"},
	} {
		fmt.Fprintf(r.out, "  %s %s\n", LabelStyle.Render(c[0]), DimStyle.Render(c[1]))
	}
	fmt.Fprintln(r.out, DimStyle.Render("  Anything else is sent as a question."))
	fmt.Fprintln(r.out)
}

func (r *chatREPL) info(msg string) {
	fmt.Fprintln(r.out, DimStyle.Render(msg))
}

func (r *chatREPL) warn(msg string) {
	fmt.Fprintln(r.out, WarningStyle.Render(msg))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleChat handles `docqa chat`.
func HandleChat(args Args) error {
	rt, err := NewRuntime(args, logging.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.Close()

	repl := newChatREPL(rt, os.Stdout)
	ctx := context.Background()

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("docqa chat") + DimStyle.Render("  "+rt.Client.BaseURL()))
		fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
		fmt.Println()
	}
	if args.File != "" {
		repl.upload(ctx, args.File)
	} else if !args.Quiet {
		repl.info("Start with /upload PATH.")
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(repl.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			repl.info("(type /quit to exit)")
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				rt.Log.Debug().Err(err).Msg("read input")
			}
			fmt.Println()
			return nil
		}
		if repl.handleLine(ctx, line) {
			return nil
		}
	}
}
