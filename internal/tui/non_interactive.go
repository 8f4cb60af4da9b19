package tui

import (
	"fmt"
	"os"

	"github.com/adam-gaia/checklints/internal/core"
)

// NonInteractiveTUICallback handles output when stdout is not a terminal,
// or when --quiet or --json is set. Messages go to stderr so stdout only
// carries the report.
type NonInteractiveTUICallback struct {
	flags core.NonInteractiveFlags
}

// NewNonInteractiveTUICallback creates a new non-interactive callback
func NewNonInteractiveTUICallback(flags core.NonInteractiveFlags) *NonInteractiveTUICallback {
	return &NonInteractiveTUICallback{flags: flags}
}

// ShowError displays an error message unless output is JSON
func (n *NonInteractiveTUICallback) ShowError(title, message string) {
	if n.flags.Mode == core.OutputJSON {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s - %s\n", title, message)
}

// ShowWarning displays a warning message in normal mode
func (n *NonInteractiveTUICallback) ShowWarning(title, message string) {
	if n.flags.Mode != core.OutputNormal {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s - %s\n", title, message)
}

// AskConfirmation approves without prompting. Unless --yes was given the
// approval is reported as a warning.
func (n *NonInteractiveTUICallback) AskConfirmation(title, message string) bool {
	if !n.flags.Yes {
		n.ShowWarning(title, message+" (approved: no terminal to prompt on)")
	}
	return true
}

// StartProgress returns a text tracker in normal mode and a no-op otherwise.
func (n *NonInteractiveTUICallback) StartProgress(total int, label string) core.ProgressTracker {
	if n.flags.Mode != core.OutputNormal {
		return NewNoOpProgressTracker()
	}
	return NewTextProgressTracker(total, label)
}

// GetOutputMode returns the current output mode
func (n *NonInteractiveTUICallback) GetOutputMode() core.OutputMode {
	return n.flags.Mode
}
