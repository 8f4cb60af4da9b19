// Package tui renders checklints reports and talks to the user on a terminal.
package tui

import (
	"os"

	"github.com/charmbracelet/huh"

	"github.com/adam-gaia/checklints/internal/core"
)

// TUICallback is the core.UICallback used when both stdin and stdout are
// terminals: styled messages, huh prompts and a bubbletea progress bar.
type TUICallback struct {
	// accessible switches huh to plain line-based prompts for screen readers
	accessible bool
}

// NewTUICallback creates an interactive callback. Setting ACCESSIBLE in the
// environment selects huh's accessible prompt mode.
func NewTUICallback() *TUICallback {
	return &TUICallback{accessible: os.Getenv("ACCESSIBLE") != ""}
}

func (t *TUICallback) ShowError(title, message string) {
	PrintError(title, message)
}

func (t *TUICallback) ShowWarning(title, message string) {
	PrintWarning(title, message)
}

// AskConfirmation asks a yes/no question. A prompt that cannot run (for
// example after Ctrl-C) counts as "no".
func (t *TUICallback) AskConfirmation(title, message string) bool {
	var confirm bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(message).
			Affirmative("Use it").
			Negative("Abort").
			Value(&confirm),
	)).WithAccessible(t.accessible)

	if err := form.Run(); err != nil {
		return false
	}
	return confirm
}

func (t *TUICallback) StartProgress(total int, label string) core.ProgressTracker {
	return NewBubbleteaProgressTracker(total, label)
}

func (t *TUICallback) GetOutputMode() core.OutputMode {
	return core.OutputNormal
}
