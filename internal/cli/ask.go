// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// askOptions is everything runAsk needs besides the session.
type askOptions struct {
	File     string
	Question string
	JSON     bool
	Quiet    bool
	Sources  bool
	Width    int
	Theme    *styles.Theme
	Stdout   io.Writer
	Stderr   io.Writer
	History  sessionSaver // may be nil
}

// HandleAsk handles `docqa ask`: upload one PDF, ask one question, print
// the answer.
func HandleAsk(args Args) error {
	if args.File == "" {
		return &UsageError{Command: "ask", Reason: "--file is required"}
	}
	if args.Query == "" {
		return &UsageError{Command: "ask", Reason: "a question is required"}
	}

	rt, err := NewRuntime(args, logging.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runAsk(ctx, rt.Machine, askOptions{
		File:     args.File,
		Question: args.Query,
		JSON:     args.JSON,
		Quiet:    args.Quiet,
		Sources:  args.Sources || rt.Config.UI.ShowCitations,
		Width:    GetTerminalWidth(),
		Theme:    rt.Theme,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		History:  historyOf(rt),
	})
}

func runAsk(ctx context.Context, m *session.Machine, opts askOptions) error {
	doc, err := session.ReadDocument(opts.File)
	if err != nil {
		return &CommandError{Command: "ask", Action: "read", Err: err}
	}
	if err := m.SelectFile(doc); err != nil {
		if errors.Is(err, session.ErrInvalidFileType) {
			return &UsageError{Command: "ask", Reason: doc.Name + " is not a PDF file"}
		}
		return &CommandError{Command: "ask", Action: "select", Err: err}
	}

	progress := !opts.Quiet && !opts.JSON
	defer func() {
		if err := saveSession(ctx, opts.History, m); err != nil && progress {
			fmt.Fprintln(opts.Stderr, WarningStyle.Render("history not saved: "+err.Error()))
		}
	}()
	if progress {
		fmt.Fprintf(opts.Stderr, "Uploading %s (%s)...\n", doc.Name, util.FormatSizeMB(doc.Size()))
	}
	if err := m.Upload(ctx); err != nil {
		return &CommandError{Command: "ask", Action: "upload", Err: err}
	}

	start := time.Now()
	answer, err := m.Ask(ctx, opts.Question)
	if err != nil {
		return &CommandError{Command: "ask", Action: "query", Err: err}
	}

	if opts.JSON {
		transcript := m.Transcript()
		return NewJSONResponse("ask", AskData{
			Document:   doc.Name,
			Collection: m.CollectionRef(),
			Question:   transcript[len(transcript)-2].Body,
			Answer:     answer.Body,
			Citations:  answer.Citations,
		}).Write(opts.Stdout)
	}

	printer := &messagePrinter{
		out:           opts.Stdout,
		theme:         opts.Theme,
		width:         opts.Width,
		showCitations: opts.Sources,
		citationHint:  "--sources to show",
	}
	printer.print(answer)
	if progress {
		fmt.Fprintln(opts.Stderr, DimStyle.Render("answered in "+formatDurationShort(time.Since(start))))
	}
	return nil
}
