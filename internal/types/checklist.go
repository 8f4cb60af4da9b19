package types

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChecklistFile is the on-disk layout of a checklist document.
type ChecklistFile struct {
	Facts        []Fact        `yaml:"fact"`
	Conditions   []Condition   `yaml:"condition"` // Parsed, not evaluated
	Checks       []Check       `yaml:"check"`
	Requirements []Requirement `yaml:"requires"` // Apply to every check in the file
}

// Checklist is a parsed checklist identified by its source path.
// It is immutable once ParseChecklist returns.
type Checklist struct {
	Path         string
	Facts        []Fact
	Conditions   []Condition
	Checks       []Check
	Requirements []Requirement
}

// ParseChecklist decodes a checklist document and anchors its relative paths:
// check targets against projectRoot, templates against the checklist's directory.
// Two checks with the same description are rejected.
func ParseChecklist(path string, data []byte, projectRoot string) (*Checklist, error) {
	var doc ChecklistFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cl := &Checklist{
		Path:         path,
		Facts:        doc.Facts,
		Conditions:   doc.Conditions,
		Checks:       doc.Checks,
		Requirements: doc.Requirements,
	}

	dir := cl.Dir()
	seen := make(map[string]bool, len(cl.Checks))
	for _, check := range cl.Checks {
		resolvePaths(check.Type, projectRoot, dir)
		desc := check.Describe()
		if seen[desc] {
			return nil, fmt.Errorf("duplicate check description %q: results are keyed by description, set a distinct 'description'", desc)
		}
		seen[desc] = true
		for _, cond := range check.Conditions {
			resolvePaths(cond.Type, projectRoot, dir)
		}
	}
	for _, cond := range cl.Conditions {
		resolvePaths(cond.Type, projectRoot, dir)
	}
	return cl, nil
}

// Dir returns the directory containing the checklist file.
func (c *Checklist) Dir() string {
	return filepath.Dir(c.Path)
}

// Name returns the checklist file name without its extension.
func (c *Checklist) Name() string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RequirementsFor returns the checklist-wide requirements followed by the
// check's own, in evaluation order.
func (c *Checklist) RequirementsFor(check Check) []Requirement {
	if len(c.Requirements) == 0 {
		return check.Requirements
	}
	reqs := make([]Requirement, 0, len(c.Requirements)+len(check.Requirements))
	reqs = append(reqs, c.Requirements...)
	return append(reqs, check.Requirements...)
}

// IsChecklistFile reports whether a file name has a checklist extension.
func IsChecklistFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
