package core

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adam-gaia/checklints/internal/types"
)

// CheckEvaluator runs the gates and type-specific logic of a single check.
// It never consults the result cache; the engine wraps it.
type CheckEvaluator struct {
	fs        FileSystem
	renderer  *TemplateRenderer
	logger    *log.Logger
	lookPath  func(string) (string, error)
	lookupEnv func(string) (string, bool)
	condition func(types.CheckType, *types.Facts) (types.Status, []string)
}

// NewCheckEvaluator creates a CheckEvaluator.
func NewCheckEvaluator(fs FileSystem, renderer *TemplateRenderer, logger *log.Logger) *CheckEvaluator {
	if logger == nil {
		logger = log.Default()
	}
	e := &CheckEvaluator{
		fs:        fs,
		renderer:  renderer,
		logger:    logger,
		lookPath:  exec.LookPath,
		lookupEnv: os.LookupEnv,
	}
	e.condition = e.evaluateVariant
	return e
}

// Evaluate resolves a check to a status. inputs lists extra files the status
// depends on beyond the check's own paths, such as included templates.
// cacheable is false when the status came from a condition gate, which must
// never be cached.
//
// Conditions run first. A condition that skips passes its Skip through
// unchanged; a Fail skips the check as "Condition not met". Requirements
// (checklist-wide, then the check's own) run next; the first failure fails the
// check. Only then does the variant's own logic run.
func (e *CheckEvaluator) Evaluate(cl *types.Checklist, check types.Check, facts *types.Facts) (status types.Status, inputs []string, cacheable bool) {
	for _, cond := range check.Conditions {
		st, _ := e.condition(cond.Type, facts)
		if st.IsSkip() {
			e.logger.Debug("condition skipped", "check", check.Describe(), "condition", cond.Describe())
			return st, nil, false
		}
		if !st.IsPass() {
			detail := cond.Describe()
			if st.Reason != nil {
				detail += ": " + st.Reason.Main
			}
			e.logger.Debug("condition not met", "check", check.Describe(), "condition", cond.Describe())
			return types.Skip(ReasonConditionNotMet, detail), nil, false
		}
	}

	for _, req := range cl.RequirementsFor(check) {
		if st := e.EvaluateRequirement(req); !st.IsPass() {
			return st, nil, true
		}
	}

	status, inputs = e.evaluateVariant(check.Type, facts)
	return status, inputs, true
}

// evaluateVariant dispatches on the check variant. Variants without an
// implementation surface as a Fail whose main reason is "Not implemented".
func (e *CheckEvaluator) evaluateVariant(ct types.CheckType, facts *types.Facts) (types.Status, []string) {
	var err error
	switch c := ct.(type) {
	case *types.FileCheck:
		return e.evaluateFile(c, facts)
	case *types.DirectoryCheck:
		return e.evaluateDirectory(c), nil
	case *types.CommandCheck, *types.HTTPCheck, *types.VarCheck:
		err = NewNotImplementedError(ct.Kind())
	default:
		err = fmt.Errorf("unknown check variant %T: %w", ct, ErrNotImplemented)
	}
	e.logger.Debug("check not implemented", "kind", ct.Kind())
	return types.Fail(ReasonNotImplemented, err.Error()), nil
}

// EvaluateRequirement checks one requirement.
func (e *CheckEvaluator) EvaluateRequirement(req types.Requirement) types.Status {
	switch req.Kind {
	case types.RequireCommand:
		if _, err := e.lookPath(req.Command); err != nil {
			return types.Fail(ReasonCommandNotFound, req.Command)
		}
	case types.RequireEnv:
		if _, ok := e.lookupEnv(req.Key); !ok {
			return types.Fail(ReasonEnvVarNotSet, req.Key)
		}
	}
	return types.Pass()
}

// evaluateFile also returns the template files read while rendering.
func (e *CheckEvaluator) evaluateFile(c *types.FileCheck, facts *types.Facts) (types.Status, []string) {
	target := c.Target()
	info, err := e.fs.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return types.Fail(ReasonInvalidFile, target), nil
	}

	data, err := e.fs.ReadFile(target)
	if err != nil {
		return types.Fail(ReasonInvalidFile, err.Error()), nil
	}
	actual := string(data)

	if c.Contents != nil && !contentsEqual(*c.Contents, actual) {
		return types.Fail(ReasonContentsDiffer, LineDiff(*c.Contents, actual)), nil
	}

	for _, fragment := range c.Contains {
		if !strings.Contains(actual, fragment) {
			return types.Fail(ReasonFragmentNotFound, fragment), nil
		}
	}

	var inputs []string
	if tpl := c.TemplateFile(); tpl != "" {
		expected, read, err := e.renderer.RenderTracked(tpl, facts)
		if err != nil {
			return types.Fail(ReasonTemplateRenderErr, err.Error()), nil
		}
		if !contentsEqual(expected, actual) {
			return types.Fail(ReasonTemplateMismatch, LineDiff(expected, actual)), nil
		}
		inputs = read
	}

	return types.Pass(), inputs
}

func (e *CheckEvaluator) evaluateDirectory(c *types.DirectoryCheck) types.Status {
	target := c.Target()
	info, err := e.fs.Stat(target)
	if err != nil || !info.IsDir() {
		return types.Fail(ReasonInvalidDirectory, target)
	}

	entries, err := e.fs.ReadDir(target)
	if err != nil {
		return types.Fail(ReasonInvalidDirectory, err.Error())
	}
	present := make(map[string]bool, len(entries))
	for _, name := range entries {
		present[name] = true
	}

	if len(c.Contents) > 0 {
		expected := normalizeEntries(c.Contents)
		if !sameEntries(expected, entries) {
			return types.Fail(ReasonContentsDiffer, ListDiff(expected, entries))
		}
	}

	for _, name := range c.Contains {
		if !present[strings.TrimSuffix(name, "/")] {
			return types.Fail(ReasonEntryNotFound, name)
		}
	}

	return types.Pass()
}

// normalizeEntries strips trailing slashes, removes duplicates, and sorts.
func normalizeEntries(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSuffix(name, "/")
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// sameEntries compares two sorted, duplicate-free name lists.
func sameEntries(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
