package types

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleChecklist = `
requires:
  - type: command
    command: git
fact:
  - key: NAME
    type: literal
    value: demo
  - key: HOME_DIR
    type: env-var
    var: HOME
  - key: BRANCH
    type: eval-command
    command: git branch --show-current
    requires:
      - type: command
        command: git
check:
  - type: file
    path: README.md
    contains: ["# demo"]
    template: templates/readme.j2
  - type: directory
    path: src
    contains: [main.go]
    description: source directory
    conditions:
      - type: file
        path: go.mod
  - type: http
    url: https://example.com
  - type: varset
    key: CI
    requirements:
      - type: env
        key: CI
`

func TestParseChecklist_Sample(t *testing.T) {
	cl, err := ParseChecklist("/repo/.checklists/base.yml", []byte(sampleChecklist), "/repo")
	if err != nil {
		t.Fatalf("Failed to parse checklist: %v", err)
	}

	if cl.Name() != "base" {
		t.Errorf("Name() = %q, want %q", cl.Name(), "base")
	}
	if len(cl.Facts) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(cl.Facts))
	}
	if cl.Facts[1].EnvName() != "HOME" {
		t.Errorf("EnvName() = %q, want HOME", cl.Facts[1].EnvName())
	}
	if len(cl.Facts[2].Requirements) != 1 {
		t.Errorf("expected fact requirement, got %d", len(cl.Facts[2].Requirements))
	}
	if len(cl.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(cl.Checks))
	}

	file, ok := cl.Checks[0].Type.(*FileCheck)
	if !ok {
		t.Fatalf("expected *FileCheck, got %T", cl.Checks[0].Type)
	}
	if file.Target() != filepath.Join("/repo", "README.md") {
		t.Errorf("Target() = %q", file.Target())
	}
	if file.TemplateFile() != filepath.Join("/repo/.checklists", "templates/readme.j2") {
		t.Errorf("TemplateFile() = %q", file.TemplateFile())
	}
	if got := file.CachePaths(); len(got) != 2 {
		t.Errorf("CachePaths() = %v, want target and template", got)
	}

	dir, ok := cl.Checks[1].Type.(*DirectoryCheck)
	if !ok {
		t.Fatalf("expected *DirectoryCheck, got %T", cl.Checks[1].Type)
	}
	if dir.Target() != filepath.Join("/repo", "src") {
		t.Errorf("Target() = %q", dir.Target())
	}
	if cl.Checks[1].Describe() != "source directory" {
		t.Errorf("Describe() = %q", cl.Checks[1].Describe())
	}
	cond := cl.Checks[1].Conditions[0].Type.(*FileCheck)
	if cond.Target() != filepath.Join("/repo", "go.mod") {
		t.Errorf("condition Target() = %q", cond.Target())
	}

	http := cl.Checks[2].Type.(*HTTPCheck)
	if http.Method != MethodGet || http.Code != DefaultHTTPCode {
		t.Errorf("http defaults = %s %d, want Get 200", http.Method, http.Code)
	}

	reqs := cl.RequirementsFor(cl.Checks[3])
	if len(reqs) != 2 || reqs[0].Kind != RequireCommand || reqs[1].Kind != RequireEnv {
		t.Errorf("RequirementsFor() = %+v, want checklist requirement first", reqs)
	}
}

func TestParseChecklist_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "unknown check type", input: "check:\n  - type: socket\n    path: x\n", wantErr: "unknown check type"},
		{name: "missing type", input: "check:\n  - path: x\n", wantErr: "missing 'type'"},
		{name: "file without path", input: "check:\n  - type: file\n", wantErr: "requires 'path'"},
		{name: "bad http method", input: "check:\n  - type: http\n    url: https://x\n    method: GET\n", wantErr: "invalid http method"},
		{name: "unknown fact type", input: "fact:\n  - key: A\n    type: magic\n", wantErr: "unknown fact type"},
		{name: "command fact without command", input: "fact:\n  - key: A\n    type: eval-command\n", wantErr: "requires 'command'"},
		{name: "unknown requirement", input: "requires:\n  - type: file\n    key: x\n", wantErr: "unknown requirement type"},
		{name: "duplicate description", input: "check:\n  - type: file\n    path: a\n    description: docs\n  - type: directory\n    path: b\n    description: docs\n", wantErr: "duplicate check description \"docs\""},
		{name: "duplicate fallback description", input: "check:\n  - type: directory\n    path: src\n  - type: directory\n    path: src\n", wantErr: "duplicate check description"},
		{name: "malformed yaml", input: "check: [\n", wantErr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChecklist("c.yml", []byte(tt.input), "/repo")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCheck_DescribeFallback(t *testing.T) {
	value := "1"
	tests := []struct {
		name  string
		check Check
		want  string
	}{
		{
			name:  "file",
			check: Check{Type: &FileCheck{Path: "a.txt"}},
			want:  "File a.txt: must exist",
		},
		{
			name:  "varset with value",
			check: Check{Type: &VarCheck{Key: "CI", Value: &value}},
			want:  "Var CI must be set to 1",
		},
		{
			name:  "explicit description wins",
			check: Check{Type: &VarCheck{Key: "CI"}, Description: "ci flag"},
			want:  "ci flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsChecklistFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.yml":  true,
		"a.YAML": true,
		"a.toml": false,
		"a":      false,
	} {
		if got := IsChecklistFile(name); got != want {
			t.Errorf("IsChecklistFile(%q) = %v, want %v", name, got, want)
		}
	}
}
