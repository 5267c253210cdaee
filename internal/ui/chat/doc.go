// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea model for the docqa terminal UI.

The model has two screens, chosen from the session state:

  - Upload screen (idle, file_chosen, uploading, upload_failed): a path
    input, the chosen file's name and size, and an upload spinner.
  - Chat screen (ready): the transcript in a viewport, the question input,
    and a typing indicator while an answer is pending.

# Key Components

## Model (model.go)

Holds the session machine, the backend pinger, and the bubbles widgets
(textinput, viewport, spinner). The machine is only ever touched from
Update, so it needs no locking.

## Update Loop (update.go)

Backend requests run inside tea.Cmd functions. Their outcomes come back as
uploadDoneMsg and queryDoneMsg and are resolved into the machine with
ResolveUpload and ResolveQuery.

## View Rendering (view.go)

Header, screen body, input line and status bar. Message bodies are parsed
by package markup and drawn by package components.

# Usage

	m := chat.New(chat.Options{
		Machine: session.New(client),
		Pinger:  client,
		Config:  cfg,
		Theme:   styles.NewTheme(cfg.UI.Theme),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
