package core

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adam-gaia/checklints/internal/testutil"
	"github.com/adam-gaia/checklints/internal/types"
)

func TestHashBytes_Deterministic(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	if a != b {
		t.Errorf("same input hashed differently: %s vs %s", a, b)
	}
	if a == HashBytes([]byte("hello!")) {
		t.Error("different inputs produced the same hash")
	}
	// Known SHA-256 of "hello"
	if a != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected digest %s", a)
	}
}

func TestHashReader_MatchesHashBytes(t *testing.T) {
	// Larger than one chunk to exercise streaming
	data := bytes.Repeat([]byte("checklints"), hashChunkSize)

	got, err := HashReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("HashReader failed: %v", err)
	}
	if got != HashBytes(data) {
		t.Error("HashReader and HashBytes disagree")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.txt", "hello")

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != HashBytes([]byte("hello")) {
		t.Errorf("HashFile = %s, want digest of file contents", got)
	}

	if _, err := HashFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFingerprint_FieldSensitivity(t *testing.T) {
	base := &types.FileCheck{Path: "README.md", Contains: []string{"# Title"}}

	tests := []struct {
		name  string
		other types.CheckType
		same  bool
	}{
		{name: "identical", other: &types.FileCheck{Path: "README.md", Contains: []string{"# Title"}}, same: true},
		{name: "different path", other: &types.FileCheck{Path: "README", Contains: []string{"# Title"}}},
		{name: "different contains", other: &types.FileCheck{Path: "README.md", Contains: []string{"# Other"}}},
		{name: "added contents", other: &types.FileCheck{Path: "README.md", Contains: []string{"# Title"}, Contents: testutil.StrPtr("")}},
		{name: "different kind same field", other: &types.DirectoryCheck{Path: "README.md", Contains: []string{"# Title"}}},
	}

	want, err := Fingerprint(base)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(want) != 64 || strings.ToLower(want) != want {
		t.Errorf("fingerprint should be lower-case hex sha256, got %q", want)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fingerprint(tt.other)
			if err != nil {
				t.Fatalf("Fingerprint failed: %v", err)
			}
			if (got == want) != tt.same {
				t.Errorf("fingerprint equality = %v, want %v", got == want, tt.same)
			}
		})
	}
}

func TestFingerprint_IgnoresResolvedPaths(t *testing.T) {
	input := []byte("check:\n  - type: file\n    path: README.md\n")
	a, err := types.ParseChecklist("/one/list.yml", input, "/project-a")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	b, err := types.ParseChecklist("/two/list.yml", input, "/project-b")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	fa, _ := Fingerprint(a.Checks[0].Type)
	fb, _ := Fingerprint(b.Checks[0].Type)
	if fa != fb {
		t.Error("identical declarations in different checklists should share a fingerprint")
	}
}
