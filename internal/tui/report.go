package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/adam-gaia/checklints/internal/types"
)

const indent = "    "

// PrintStatuses writes a per-checklist report followed by a summary line.
// In quiet mode passing checks are omitted.
func PrintStatuses(w io.Writer, statuses *types.Statuses, quiet bool) {
	for _, cl := range statuses.Checklists() {
		var lines []string
		for _, r := range cl.Checks {
			if quiet && r.Status.IsPass() {
				continue
			}
			lines = append(lines, formatResult(r)...)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintln(w, StyleTitle(cl.Checklist))
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, FormatSummary(statuses.Counts()))
}

func formatResult(r types.CheckResult) []string {
	var head string
	switch r.Status.Kind {
	case types.StatusPass:
		head = styleSuccess.Render("✔ " + r.Description)
	case types.StatusSkip:
		head = styleWarn.Render("- " + r.Description)
	default:
		head = styleErr.Render("✖ " + r.Description)
	}
	if r.Status.Cached {
		head += styleDim.Render(" (cached)")
	}

	lines := []string{indent + head}
	if reason := r.Status.Reason; reason != nil {
		lines = append(lines, indent+indent+reason.Main)
		if reason.Secondary != "" {
			for _, l := range strings.Split(strings.TrimRight(reason.Secondary, "\n"), "\n") {
				lines = append(lines, indent+indent+indent+styleDim.Render(l))
			}
		}
	}
	return lines
}

// FormatSummary renders the status counts on one line.
func FormatSummary(c types.StatusCounts) string {
	summary := fmt.Sprintf("%d passed, %d skipped, %d failed", c.Pass, c.Skip, c.Fail)
	if c.Cached > 0 {
		summary += fmt.Sprintf(" (%d cached)", c.Cached)
	}
	if c.Fail > 0 {
		return styleErr.Render(summary)
	}
	if c.Skip > 0 {
		return styleWarn.Render(summary)
	}
	return styleSuccess.Render(summary)
}
