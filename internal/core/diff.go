package core

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contentsEqual compares two texts after trimming surrounding whitespace.
func contentsEqual(expected, actual string) bool {
	return strings.TrimSpace(expected) == strings.TrimSpace(actual)
}

// LineDiff returns a unified diff of the trimmed texts, or "" when they match.
func LineDiff(expected, actual string) string {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if expected == actual {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected + "\n"),
		B:        difflib.SplitLines(actual + "\n"),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(diff, "\n")
}

// ListDiff diffs two sorted name lists one entry per line.
func ListDiff(expected, actual []string) string {
	return LineDiff(strings.Join(expected, "\n"), strings.Join(actual, "\n"))
}
