// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/docqa-tui/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the docqa UI.
type KeyMap struct {
	Submit          key.Binding
	Reset           key.Binding
	Copy            key.Binding
	ToggleCitations key.Binding
	Export          key.Binding
	Up              key.Binding
	Down            key.Binding
	PageUp          key.Binding
	PageDown        key.Binding
	Quit            key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "new pdf"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy answer"),
		),
		ToggleCitations: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sources"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "export"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// UploadHelp returns the bindings shown on the upload screen.
func (k KeyMap) UploadHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose / upload")),
		k.Reset,
		k.Quit,
	}
}

// ChatHelp returns the bindings shown on the chat screen.
func (k KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Copy, k.ToggleCitations, k.Export, k.Reset, k.Quit}
}

// hints converts bindings to status bar hints.
func hints(bindings []key.Binding) []components.KeyHint {
	out := make([]components.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.KeyHint{Key: h.Key, Desc: h.Desc})
	}
	return out
}
