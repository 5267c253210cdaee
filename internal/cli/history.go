// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - the history command.
//
// Command: history [subcommand]
//
// Subcommands:
//   list (default)   Recent sessions, newest first
//   show ID          Print a session transcript
//   search TEXT      Sessions whose document or messages contain TEXT
//   delete ID        Remove one session
//   clear --yes      Remove every session
//
// IDs may be shortened to any unique prefix.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/docqa-tui/internal/storage"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

const (
	defaultHistoryLimit = 20
	shortIDLen          = 8
)

// HandleHistory handles `docqa history`.
func HandleHistory(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	store, err := storage.Open(path)
	if err != nil {
		return &CommandError{Command: "history", Action: "open", Err: err}
	}
	defer store.Close()

	return runHistory(context.Background(), store, args, historyView{
		out:   os.Stdout,
		theme: styles.NewTheme(cfg.UI.Theme),
		width: GetTerminalWidth(),
	})
}

type historyView struct {
	out   io.Writer
	theme *styles.Theme
	width int
}

func runHistory(ctx context.Context, store *storage.Store, args Args, v historyView) error {
	switch args.Subcommand {
	case "", "list", "ls":
		metas, err := store.List(ctx, args.Limit)
		if err != nil {
			return &CommandError{Command: "history", Action: "list", Err: err}
		}
		return v.printList(args, metas, "No saved sessions.")

	case "search", "find":
		if args.Target == "" {
			return &UsageError{Command: "history search", Reason: "search text is required"}
		}
		metas, err := store.Search(ctx, args.Target, args.Limit)
		if err != nil {
			return &CommandError{Command: "history", Action: "search", Err: err}
		}
		return v.printList(args, metas, fmt.Sprintf("No sessions mention %q.", args.Target))

	case "show", "view":
		if args.Target == "" {
			return &UsageError{Command: "history show", Reason: "a session ID is required"}
		}
		sess, err := store.Load(ctx, args.Target)
		if err != nil {
			return historyLookupError("show", err)
		}
		if args.JSON {
			return NewJSONResponse("history", sess).Write(v.out)
		}
		v.printSession(sess, args.Sources)
		return nil

	case "delete", "rm":
		if args.Target == "" {
			return &UsageError{Command: "history delete", Reason: "a session ID is required"}
		}
		id, err := store.Delete(ctx, args.Target)
		if err != nil {
			return historyLookupError("delete", err)
		}
		if args.JSON {
			return NewJSONResponse("history", map[string]string{"deleted": id}).Write(v.out)
		}
		if !args.Quiet {
			fmt.Fprintln(v.out, SuccessStyle.Render("Deleted session ")+shortID(id))
		}
		return nil

	case "clear":
		if !args.Yes {
			return &UsageError{Command: "history clear", Reason: "add --yes to delete every saved session"}
		}
		n, err := store.Clear(ctx)
		if err != nil {
			return &CommandError{Command: "history", Action: "clear", Err: err}
		}
		if args.JSON {
			return NewJSONResponse("history", map[string]int{"deleted": n}).Write(v.out)
		}
		if !args.Quiet {
			fmt.Fprintf(v.out, "%s %d session(s)\n", SuccessStyle.Render("Deleted"), n)
		}
		return nil

	default:
		return &UsageError{
			Command: "history",
			Reason:  fmt.Sprintf("unknown subcommand %q (use list, show, search, delete or clear)", args.Subcommand),
		}
	}
}

func historyLookupError(action string, err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) || errors.Is(err, storage.ErrAmbiguousID) {
		return &UsageError{Command: "history " + action, Reason: err.Error()}
	}
	return &CommandError{Command: "history", Action: action, Err: err}
}

func (v historyView) printList(args Args, metas []storage.SessionMeta, empty string) error {
	if args.JSON {
		return NewJSONResponse("history", metas).Write(v.out)
	}
	if len(metas) == 0 {
		fmt.Fprintln(v.out, DimStyle.Render(empty))
		return nil
	}

	for _, m := range metas {
		doc := m.Document
		if doc == "" {
			doc = "(no document)"
		}
		fmt.Fprintf(v.out, "%s  %s  %s  %s\n",
			PromptStyle.Render(shortID(m.ID)),
			DimStyle.Render(m.UpdatedAt.Local().Format("2006-01-02 15:04")),
			ValueStyle.Render(util.PadRight(util.TruncateWidth(doc, 28), 28)),
			DimStyle.Render(fmt.Sprintf("%d msgs", m.MessageCount)),
		)
		if m.Preview != "" {
			fmt.Fprintln(v.out, "          "+util.TruncateWidth(m.Preview, max(v.width-12, 20)))
		}
	}
	return nil
}

func (v historyView) printSession(sess *storage.Session, showCitations bool) {
	title := sess.Document
	if title == "" {
		title = "(no document)"
	}
	fmt.Fprintln(v.out, TitleStyle.Render(title))
	meta := []string{"session " + sess.ID, sess.CreatedAt.Local().Format("2006-01-02 15:04")}
	if sess.Collection != "" {
		meta = append(meta, "collection "+sess.Collection)
	}
	fmt.Fprintln(v.out, DimStyle.Render(strings.Join(meta, " · ")))
	fmt.Fprintln(v.out)

	p := &messagePrinter{
		out:           v.out,
		theme:         v.theme,
		width:         v.width,
		showCitations: showCitations,
		citationHint:  "--sources to show",
	}
	for _, msg := range sess.Messages {
		p.print(msg)
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
