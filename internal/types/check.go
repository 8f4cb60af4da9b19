// Package types defines data structures for checklints checklists, results, and remote references.
package types

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CheckKind is the type tag that selects a check variant in a checklist file.
type CheckKind string

// CheckKind constants for the supported check variants.
const (
	KindFile      CheckKind = "file"
	KindDirectory CheckKind = "directory"
	KindCommand   CheckKind = "command"
	KindHTTP      CheckKind = "http"
	KindVarSet    CheckKind = "varset"
)

// CheckType is the closed set of check variants: *FileCheck, *DirectoryCheck,
// *CommandCheck, *HTTPCheck and *VarCheck. The variant's exported fields fully
// determine its cache fingerprint.
type CheckType interface {
	Kind() CheckKind
	Describe() string
	validate() error
}

// FileCheck asserts facts about a regular file.
type FileCheck struct {
	Path     string   `yaml:"path" json:"path"`
	Contents *string  `yaml:"contents,omitempty" json:"contents,omitempty"` // Exact contents (trimmed before compare)
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"` // Fragments that must appear
	Template string   `yaml:"template,omitempty" json:"template,omitempty"` // Relative to the checklist file

	target       string
	templatePath string
}

// Kind implements CheckType.
func (c *FileCheck) Kind() CheckKind { return KindFile }

// Describe implements CheckType.
func (c *FileCheck) Describe() string {
	s := fmt.Sprintf("File %s: must exist", c.Path)
	if len(c.Contains) > 0 {
		s += fmt.Sprintf(", must contain %q", c.Contains)
	}
	if c.Contents != nil {
		s += fmt.Sprintf(", contents must exactly match %q", *c.Contents)
	}
	if c.Template != "" {
		s += fmt.Sprintf(", must match template %s", c.Template)
	}
	return s
}

func (c *FileCheck) validate() error {
	if c.Path == "" {
		return fmt.Errorf("file check requires 'path'")
	}
	return nil
}

// Target returns the file path resolved against the project root.
func (c *FileCheck) Target() string {
	if c.target != "" {
		return c.target
	}
	return c.Path
}

// TemplateFile returns the template path resolved against the checklist
// directory, or "" when the check has no template.
func (c *FileCheck) TemplateFile() string {
	if c.Template == "" {
		return ""
	}
	if c.templatePath != "" {
		return c.templatePath
	}
	return c.Template
}

// CachePaths lists every file whose content a cached result depends on.
func (c *FileCheck) CachePaths() []string {
	paths := []string{c.Target()}
	if tpl := c.TemplateFile(); tpl != "" {
		paths = append(paths, tpl)
	}
	return paths
}

// DirectoryCheck asserts facts about a directory and its immediate children.
type DirectoryCheck struct {
	Path     string   `yaml:"path" json:"path"`
	Contents []string `yaml:"contents,omitempty" json:"contents,omitempty"` // Exhaustive listing of children
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"` // Non-exhaustive required children

	target string
}

// Kind implements CheckType.
func (c *DirectoryCheck) Kind() CheckKind { return KindDirectory }

// Describe implements CheckType.
func (c *DirectoryCheck) Describe() string {
	s := fmt.Sprintf("Directory %s: must exist", c.Path)
	if len(c.Contains) > 0 {
		s += fmt.Sprintf(", must contain %q", c.Contains)
	}
	if len(c.Contents) > 0 {
		s += fmt.Sprintf(", contents must exactly match %q", c.Contents)
	}
	return s
}

func (c *DirectoryCheck) validate() error {
	if c.Path == "" {
		return fmt.Errorf("directory check requires 'path'")
	}
	return nil
}

// Target returns the directory path resolved against the project root.
func (c *DirectoryCheck) Target() string {
	if c.target != "" {
		return c.target
	}
	return c.Path
}

// CommandCheck asserts the outcome of running a command.
type CommandCheck struct {
	Cmd            string   `yaml:"cmd" json:"cmd"`
	Code           int      `yaml:"code" json:"code"`
	ExpectedStdout *string  `yaml:"expected_stdout,omitempty" json:"expected_stdout,omitempty"`
	ExpectedStderr *string  `yaml:"expected_stderr,omitempty" json:"expected_stderr,omitempty"`
	StdoutContains []string `yaml:"stdout_contains,omitempty" json:"stdout_contains,omitempty"`
	StderrContains []string `yaml:"stderr_contains,omitempty" json:"stderr_contains,omitempty"`
}

// Kind implements CheckType.
func (c *CommandCheck) Kind() CheckKind { return KindCommand }

// Describe implements CheckType.
func (c *CommandCheck) Describe() string {
	s := fmt.Sprintf("Command '%s' must exit with %d", c.Cmd, c.Code)
	if c.ExpectedStdout != nil {
		s += fmt.Sprintf(", stdout must match %q", *c.ExpectedStdout)
	}
	if len(c.StdoutContains) > 0 {
		s += fmt.Sprintf(", stdout must contain %q", c.StdoutContains)
	}
	if c.ExpectedStderr != nil {
		s += fmt.Sprintf(", stderr must match %q", *c.ExpectedStderr)
	}
	if len(c.StderrContains) > 0 {
		s += fmt.Sprintf(", stderr must contain %q", c.StderrContains)
	}
	return s
}

func (c *CommandCheck) validate() error {
	if strings.TrimSpace(c.Cmd) == "" {
		return fmt.Errorf("command check requires 'cmd'")
	}
	return nil
}

// HTTPMethod is the request method of an http check.
type HTTPMethod string

// HTTPMethod constants accepted in checklist files.
const (
	MethodGet     HTTPMethod = "Get"
	MethodPost    HTTPMethod = "Post"
	MethodPut     HTTPMethod = "Put"
	MethodDelete  HTTPMethod = "Delete"
	MethodHead    HTTPMethod = "Head"
	MethodConnect HTTPMethod = "Connect"
	MethodOptions HTTPMethod = "Options"
	MethodTrace   HTTPMethod = "Trace"
	MethodPatch   HTTPMethod = "Patch"
)

var httpMethods = []HTTPMethod{
	MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead,
	MethodConnect, MethodOptions, MethodTrace, MethodPatch,
}

// DefaultHTTPCode is the expected status code when an http check omits 'code'.
const DefaultHTTPCode = 200

// HTTPCheck asserts the response of an HTTP request.
type HTTPCheck struct {
	Method       HTTPMethod `yaml:"method" json:"method"`
	Code         int        `yaml:"code" json:"code"`
	URL          string     `yaml:"url" json:"url"`
	BodyContains []string   `yaml:"body_contains,omitempty" json:"body_contains,omitempty"`
	ExpectedBody *string    `yaml:"expected_body,omitempty" json:"expected_body,omitempty"`
}

// Kind implements CheckType.
func (c *HTTPCheck) Kind() CheckKind { return KindHTTP }

// Describe implements CheckType.
func (c *HTTPCheck) Describe() string {
	s := fmt.Sprintf("Http %s request to %s must return %d", c.Method, c.URL, c.Code)
	if c.ExpectedBody != nil {
		s += fmt.Sprintf(", body must match '%s'", *c.ExpectedBody)
	}
	if len(c.BodyContains) > 0 {
		s += fmt.Sprintf(", body must contain %q", c.BodyContains)
	}
	return s
}

func (c *HTTPCheck) validate() error {
	if c.URL == "" {
		return fmt.Errorf("http check requires 'url'")
	}
	for _, m := range httpMethods {
		if c.Method == m {
			return nil
		}
	}
	return fmt.Errorf("invalid http method %q", c.Method)
}

// VarCheck asserts an environment variable is set, optionally to a value.
type VarCheck struct {
	Key   string  `yaml:"key" json:"key"`
	Value *string `yaml:"value,omitempty" json:"value,omitempty"` // nil means any value
}

// Kind implements CheckType.
func (c *VarCheck) Kind() CheckKind { return KindVarSet }

// Describe implements CheckType.
func (c *VarCheck) Describe() string {
	if c.Value != nil {
		return fmt.Sprintf("Var %s must be set to %s", c.Key, *c.Value)
	}
	return fmt.Sprintf("Var %s must be set", c.Key)
}

func (c *VarCheck) validate() error {
	if c.Key == "" {
		return fmt.Errorf("varset check requires 'key'")
	}
	return nil
}

// decodeCheckType decodes the variant selected by the node's 'type' field.
func decodeCheckType(node *yaml.Node) (CheckType, error) {
	var tag struct {
		Type CheckKind `yaml:"type"`
	}
	if err := node.Decode(&tag); err != nil {
		return nil, err
	}

	var ct CheckType
	switch tag.Type {
	case KindFile:
		ct = &FileCheck{}
	case KindDirectory:
		ct = &DirectoryCheck{}
	case KindCommand:
		ct = &CommandCheck{}
	case KindHTTP:
		ct = &HTTPCheck{Method: MethodGet, Code: DefaultHTTPCode}
	case KindVarSet:
		ct = &VarCheck{}
	case "":
		return nil, fmt.Errorf("line %d: check is missing 'type'", node.Line)
	default:
		return nil, fmt.Errorf("line %d: unknown check type %q", node.Line, tag.Type)
	}

	if err := node.Decode(ct); err != nil {
		return nil, err
	}
	if err := ct.validate(); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return ct, nil
}

// Check is one auditable assertion: a variant plus its gates.
type Check struct {
	Type         CheckType
	Description  string
	Conditions   []Condition
	Requirements []Requirement
}

// UnmarshalYAML decodes the flattened check block.
func (c *Check) UnmarshalYAML(node *yaml.Node) error {
	var header struct {
		Description  string        `yaml:"description"`
		Conditions   []Condition   `yaml:"conditions"`
		Requirements []Requirement `yaml:"requirements"`
	}
	if err := node.Decode(&header); err != nil {
		return err
	}
	ct, err := decodeCheckType(node)
	if err != nil {
		return err
	}
	*c = Check{
		Type:         ct,
		Description:  header.Description,
		Conditions:   header.Conditions,
		Requirements: header.Requirements,
	}
	return nil
}

// Describe returns the declared description, falling back to a generated one.
func (c Check) Describe() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Type.Describe()
}

// Condition gates its parent check on the outcome of an inner check.
type Condition struct {
	Type        CheckType
	Description string
}

// UnmarshalYAML decodes the flattened condition block.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var header struct {
		Description string `yaml:"description"`
	}
	if err := node.Decode(&header); err != nil {
		return err
	}
	ct, err := decodeCheckType(node)
	if err != nil {
		return err
	}
	*c = Condition{Type: ct, Description: header.Description}
	return nil
}

// Describe returns the declared description, falling back to the inner check's.
func (c Condition) Describe() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Type.Describe()
}

// resolvePaths anchors relative check paths: targets to the project root,
// templates to the checklist directory.
func resolvePaths(ct CheckType, projectRoot, checklistDir string) {
	switch c := ct.(type) {
	case *FileCheck:
		c.target = anchor(projectRoot, c.Path)
		if c.Template != "" {
			c.templatePath = anchor(checklistDir, c.Template)
		}
	case *DirectoryCheck:
		c.target = anchor(projectRoot, c.Path)
	}
}

func anchor(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
