package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// PrintError displays an error message with styling to stderr.
func PrintError(title, msg string) { FprintError(os.Stderr, title, msg) }

// FprintError writes a styled error message to w.
func FprintError(w io.Writer, title, msg string) {
	fmt.Fprintln(w, styleErr.Render("✖ "+title))
	if msg != "" {
		fmt.Fprintln(w, msg)
	}
}

// PrintWarning displays a warning message with styling to stderr.
func PrintWarning(title, msg string) {
	fmt.Fprintln(os.Stderr, styleWarn.Render("! "+title))
	fmt.Fprintln(os.Stderr, msg)
}

// StyleTitle applies title styling to the given text string.
func StyleTitle(text string) string { return styleTitle.Render(text) }
