// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docqa TUI.

All colors use Lip Gloss AdaptiveColor so one palette serves light and dark
terminals. The Theme detects the terminal's color profile with termenv and
can be pinned to dark or light from the config.

# Color System (colors.go)

  - Purple - assistant messages and the brand
  - Cyan - user messages, prompts and keys
  - Emerald - success and "backend online"
  - Amber - system notices and warnings
  - Rose - errors and "backend offline"

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	bubble := theme.BubbleFor(model.RoleAssistant)
*/
package styles
