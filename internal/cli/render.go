// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/components"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// messagePrinter writes transcript messages as indented, wrapped text.
type messagePrinter struct {
	out           io.Writer
	theme         *styles.Theme
	width         int
	showCitations bool
	citationHint  string // shown after the collapsed "N sources" line
}

const bodyIndent = "  "

func (p *messagePrinter) print(msg model.Message) {
	label := msg.Role.DisplayName() + ":"
	switch msg.Role {
	case model.RoleError:
		label = ErrorStyle.Render(label)
	case model.RoleSystem:
		label = DimStyle.Render(label)
	default:
		label = TitleStyle.Render(label)
	}
	fmt.Fprintln(p.out, label)

	body := components.RenderBody(msg.Body, p.width-len(bodyIndent), p.theme)
	if body != "" {
		fmt.Fprintln(p.out, indent(body))
	}

	if msg.Role == model.RoleAssistant && msg.HasCitations() {
		p.printCitations(msg.Citations)
	}
	fmt.Fprintln(p.out)
}

func (p *messagePrinter) printCitations(citations []string) {
	label := components.SourcesLabel(len(citations))
	if !p.showCitations {
		line := label
		if p.citationHint != "" {
			line += " (" + p.citationHint + ")"
		}
		fmt.Fprintln(p.out, bodyIndent+DimStyle.Render(line))
		return
	}

	fmt.Fprintln(p.out, bodyIndent+DimStyle.Render(label+":"))
	for i, c := range citations {
		prefix := fmt.Sprintf("[%d] ", i+1)
		text := strings.Join(strings.Fields(components.Sanitize(c)), " ")
		text = util.TruncateWidth(text, max(p.width-len(bodyIndent)-len(prefix), 10))
		fmt.Fprintln(p.out, bodyIndent+DimStyle.Render(prefix+text))
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = bodyIndent + l
		}
	}
	return strings.Join(lines, "\n")
}
