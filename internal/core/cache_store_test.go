package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adam-gaia/checklints/internal/testutil"
	"github.com/adam-gaia/checklints/internal/types"
)

// newTestCache creates an empty result cache rooted in a temp directory
func newTestCache(t *testing.T) *ResultCache {
	t.Helper()
	return NewResultCache(NewOSFileSystem(), testutil.QuietLogger(), t.TempDir(), "project")
}

// ============================================================================
// Get / Insert Tests
// ============================================================================

func TestResultCache_PassHitThenMissOnModify(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path}

	if err := cache.Insert(check, types.Pass()); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := cache.Get(check)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit, got miss")
	}
	if !got.Cached || !got.IsPass() {
		t.Errorf("Get() = %+v, want cached pass", got)
	}

	if err := os.WriteFile(path, []byte("hello, world"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}
	got, err = cache.Get(check)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss after modification, got %+v", got)
	}
}

func TestResultCache_ExtraInputInvalidates(t *testing.T) {
	cache := newTestCache(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "README.md", "hello")
	partial := testutil.WriteFile(t, dir, "partials/footer.j2", "MIT")
	check := &types.FileCheck{Path: path}

	if err := cache.Insert(check, types.Pass(), partial); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got, _ := cache.Get(check); got == nil {
		t.Fatal("expected cache hit with unchanged inputs")
	}

	if err := os.WriteFile(partial, []byte("GPL"), 0644); err != nil {
		t.Fatalf("Failed to modify partial: %v", err)
	}
	if got, _ := cache.Get(check); got != nil {
		t.Errorf("expected miss after included file changed, got %+v", got)
	}
}

func TestResultCache_UnreadableExtraInputNeverHits(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path}

	if err := cache.Insert(check, types.Pass(), filepath.Join(t.TempDir(), "gone.j2")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got, _ := cache.Get(check); got != nil {
		t.Errorf("expected miss, got %+v", got)
	}
}

func TestResultCache_FailNeverFreezesHash(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path, Contains: []string{"missing"}}

	if err := cache.Insert(check, types.Fail(ReasonFragmentNotFound, "")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got, err := cache.Get(check)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss after Fail insert, got %+v", got)
	}
	if _, ok := cache.paths[path]; ok {
		t.Error("Fail should not record a content hash")
	}
}

func TestResultCache_FailMissesEvenWhenPathHashedByOtherCheck(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	passing := &types.FileCheck{Path: path}
	failing := &types.FileCheck{Path: path, Contains: []string{"missing"}}

	_ = cache.Insert(passing, types.Pass())
	_ = cache.Insert(failing, types.Fail(ReasonFragmentNotFound, ""))

	if got, _ := cache.Get(failing); got != nil {
		t.Errorf("expected failing check to miss, got %+v", got)
	}
	if got, _ := cache.Get(passing); got == nil {
		t.Error("expected passing check to hit")
	}
}

func TestResultCache_StaleEntryFromSharedPath(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "v1")
	a := &types.FileCheck{Path: path}
	b := &types.FileCheck{Path: path, Contains: []string{"v"}}

	_ = cache.Insert(a, types.Pass())
	os.WriteFile(path, []byte("v2"), 0644)
	_ = cache.Insert(b, types.Pass())

	if got, _ := cache.Get(a); got != nil {
		t.Error("check a was computed against old contents and must miss")
	}
	if got, _ := cache.Get(b); got == nil {
		t.Error("check b should hit")
	}
}

func TestResultCache_DifferentDefinitionsCachedIndependently(t *testing.T) {
	cache := newTestCache(t)
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	a := &types.FileCheck{Path: path, Contains: []string{"hel"}}
	b := &types.FileCheck{Path: path, Contains: []string{"llo"}}

	_ = cache.Insert(a, types.Pass())

	if got, _ := cache.Get(b); got != nil {
		t.Errorf("expected miss for a different definition, got %+v", got)
	}
	if got, _ := cache.Get(a); got == nil {
		t.Error("expected hit for the inserted definition")
	}
}

func TestResultCache_NonFileChecksNeverHit(t *testing.T) {
	cache := newTestCache(t)
	dir := t.TempDir()

	checks := []types.CheckType{
		&types.VarCheck{Key: "HOME"},
		&types.DirectoryCheck{Path: dir},
		&types.CommandCheck{Cmd: "true"},
		&types.HTTPCheck{Method: types.MethodGet, Code: 200, URL: "https://example.com"},
	}
	for _, check := range checks {
		if err := cache.Insert(check, types.Pass()); err != nil {
			t.Fatalf("Insert(%s) failed: %v", check.Kind(), err)
		}
		got, err := cache.Get(check)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", check.Kind(), err)
		}
		if got != nil {
			t.Errorf("%s check should never hit, got %+v", check.Kind(), got)
		}
	}
	if len(cache.checks) != 0 {
		t.Errorf("non-file checks should not be stored, got %d entries", len(cache.checks))
	}
}

func TestResultCache_TemplateChangeMisses(t *testing.T) {
	cache := newTestCache(t)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "README.md", "hello")
	testutil.WriteFile(t, dir, "lists/readme.j2", "hello")
	input := []byte("check:\n  - type: file\n    path: README.md\n    template: readme.j2\n")
	cl, err := types.ParseChecklist(filepath.Join(dir, "lists", "base.yml"), input, dir)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	check := cl.Checks[0].Type

	_ = cache.Insert(check, types.Pass())
	if got, _ := cache.Get(check); got == nil {
		t.Fatal("expected hit before template change")
	}

	testutil.WriteFile(t, dir, "lists/readme.j2", "goodbye")
	if got, _ := cache.Get(check); got != nil {
		t.Error("expected miss after template change")
	}
}

// ============================================================================
// Persistence Tests
// ============================================================================

func TestLoadResultCache_Missing(t *testing.T) {
	cache, err := LoadResultCache(NewOSFileSystem(), testutil.QuietLogger(), t.TempDir(), "project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache != nil {
		t.Error("expected nil cache when no tables exist")
	}
}

func TestLoadResultCache_RequiresPathsAndChecks(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "project/project-paths.json", "{}")

	cache, err := LoadResultCache(NewOSFileSystem(), testutil.QuietLogger(), root, "project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache != nil {
		t.Error("expected nil cache when the checks table is missing")
	}
}

func TestLoadResultCache_CorruptedJSON(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "project/project-paths.json", "{invalid json content}")
	testutil.WriteFile(t, root, "project/project-checks.json", "{}")

	_, err := LoadResultCache(NewOSFileSystem(), testutil.QuietLogger(), root, "project")
	if err == nil {
		t.Fatal("Expected error for corrupted cache file")
	}
}

func TestResultCache_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	fs := NewOSFileSystem()
	cache := NewResultCache(fs, testutil.QuietLogger(), root, "project")
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path}

	facts := types.NewFacts()
	facts.Set("NAME", "demo")
	cache.SetFacts(facts)
	cache.Remotes()["abc"] = "/tmp/x.yml"
	_ = cache.Insert(check, types.Pass())

	if err := cache.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for _, table := range []string{"paths", "checks", "facts", "remotes"} {
		if _, err := os.Stat(filepath.Join(root, "project", "project-"+table+".json")); err != nil {
			t.Errorf("expected %s table on disk: %v", table, err)
		}
	}

	loaded, err := LoadResultCache(fs, testutil.QuietLogger(), root, "project")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected cache to load")
	}
	if got, _ := loaded.Get(check); got == nil || !got.Cached {
		t.Errorf("expected cached hit after reload, got %+v", got)
	}
	if !loaded.FactsMatch(facts) {
		t.Error("expected stored facts to match")
	}
	changed := types.NewFacts()
	changed.Set("NAME", "other")
	if loaded.FactsMatch(changed) {
		t.Error("expected changed facts to mismatch")
	}
	if loaded.Remotes()["abc"] != "/tmp/x.yml" {
		t.Errorf("remotes table not restored: %v", loaded.Remotes())
	}
}

func TestResultCache_Wipe(t *testing.T) {
	root := t.TempDir()
	cache := NewResultCache(NewOSFileSystem(), testutil.QuietLogger(), root, "project")
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path}
	remotes := cache.Remotes()
	remotes["abc"] = "/tmp/x.yml"

	_ = cache.Insert(check, types.Pass())
	if err := cache.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := cache.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	if _, err := os.Stat(cache.Dir()); !os.IsNotExist(err) {
		t.Errorf("expected cache dir removed, stat err = %v", err)
	}
	if got, _ := cache.Get(check); got != nil {
		t.Error("expected miss after wipe")
	}
	if len(remotes) != 0 {
		t.Error("wipe should clear the shared remotes table in place")
	}
}

func TestResultCache_InvalidateKeepsRemotes(t *testing.T) {
	root := t.TempDir()
	fs := NewOSFileSystem()
	cache := NewResultCache(fs, testutil.QuietLogger(), root, "project")
	path := testutil.WriteFile(t, t.TempDir(), "README.md", "hello")
	check := &types.FileCheck{Path: path}
	remote := testutil.WriteFile(t, root, "project/remote-checklists/templates/readme.j2", "{{ NAME }}")
	cache.Remotes()["abc"] = remote

	_ = cache.Insert(check, types.Pass())
	if err := cache.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := cache.Invalidate(); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if got, _ := cache.Get(check); got != nil {
		t.Error("expected miss after invalidate")
	}
	if _, err := os.Stat(remote); err != nil {
		t.Errorf("fetched resource should survive invalidate: %v", err)
	}
	if cache.Remotes()["abc"] != remote {
		t.Error("remotes table should survive invalidate")
	}
	if _, err := os.Stat(filepath.Join(root, "project", "project-checks.json")); !os.IsNotExist(err) {
		t.Errorf("checks table should be removed, stat err = %v", err)
	}
	loaded, err := LoadResultCache(fs, testutil.QuietLogger(), root, "project")
	if err != nil || loaded != nil {
		t.Errorf("expected no loadable cache after invalidate, got %v, %v", loaded, err)
	}
}

func TestResultCache_Sweep(t *testing.T) {
	cache := newTestCache(t)
	dir := t.TempDir()
	kept := &types.FileCheck{Path: testutil.WriteFile(t, dir, "a.txt", "a")}
	dropped := &types.FileCheck{Path: testutil.WriteFile(t, dir, "b.txt", "b")}

	_ = cache.Insert(kept, types.Pass())
	_ = cache.Insert(dropped, types.Pass())

	cache.Sweep([]types.CheckType{kept, &types.VarCheck{Key: "X"}})

	if len(cache.paths) != 1 || len(cache.checks) != 1 {
		t.Errorf("expected one path and one check after sweep, got %d/%d", len(cache.paths), len(cache.checks))
	}
	if got, _ := cache.Get(kept); got == nil {
		t.Error("swept cache lost a live entry")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"base.yml":     "base.yml",
		"my project":   "my_project",
		"../../escape": ".._.._escape",
		"":             "_",
		"..":           "_",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
