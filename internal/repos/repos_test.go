package repos

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dbxdev/dbx/internal/config"
)

func testConfig(baseDir string) *config.Config {
	return &config.Config{
		BaseDir:      baseDir,
		GlobalGroups: []string{"shared"},
		Groups: map[string]config.Group{
			"shared": {Repos: []string{"git@github.com:acme/common-lib.git"}},
			"billing": {Repos: []string{
				"git@github.com:acme/billing-api.git",
				"https://github.com/acme/billing-worker.git",
			}},
		},
		Project: config.Project{Dir: "projects"},
	}
}

func TestAll(t *testing.T) {
	t.Parallel()

	cfg := testConfig("/srv/dev")
	all := All(cfg)
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	// Ordered by group then name.
	if all[0].Name != "billing-api" || all[0].Group != "billing" {
		t.Errorf("all[0] = %+v", all[0])
	}
	if all[0].Path != "/srv/dev/billing/billing-api" {
		t.Errorf("Path = %q", all[0].Path)
	}
	if all[2].Name != "common-lib" || all[2].Group != "shared" {
		t.Errorf("all[2] = %+v", all[2])
	}
}

func TestForGroupIncludesGlobals(t *testing.T) {
	t.Parallel()

	cfg := testConfig("/srv/dev")
	got := ForGroup(cfg, "billing")
	names := map[string]bool{}
	for _, r := range got {
		names[r.Name] = true
	}
	for _, want := range []string{"billing-api", "billing-worker", "common-lib"} {
		if !names[want] {
			t.Errorf("ForGroup(billing) missing %q", want)
		}
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	cfg := testConfig("/srv/dev")
	r, err := Find(cfg, "billing-worker")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if r.Group != "billing" {
		t.Errorf("Group = %q", r.Group)
	}
	if r.GroupPath() != "/srv/dev/billing" {
		t.Errorf("GroupPath() = %q", r.GroupPath())
	}
}

func TestFindInGroupDisambiguates(t *testing.T) {
	t.Parallel()

	// The same repo name configured in two groups.
	cfg := &config.Config{
		BaseDir: "/srv/dev",
		Groups: map[string]config.Group{
			"alpha": {Repos: []string{"git@github.com:acme/common.git"}},
			"beta":  {Repos: []string{"git@github.com:other/common.git"}},
		},
	}

	r, err := FindInGroup(cfg, "beta", "common")
	if err != nil {
		t.Fatalf("FindInGroup() error = %v", err)
	}
	if r.Group != "beta" || r.Path != "/srv/dev/beta/common" {
		t.Errorf("FindInGroup(beta) = %+v, want the beta clone", r)
	}

	// Without a group the first match wins; with one, the other clone.
	r, err = FindInGroup(cfg, "", "common")
	if err != nil {
		t.Fatalf("FindInGroup(no group) error = %v", err)
	}
	if r.Group != "alpha" {
		t.Errorf("FindInGroup(\"\") group = %q", r.Group)
	}

	// A repo outside the named group still resolves.
	cfg.Groups["gamma"] = config.Group{Repos: []string{"git@github.com:acme/solo.git"}}
	r, err = FindInGroup(cfg, "beta", "solo")
	if err != nil {
		t.Fatalf("FindInGroup(beta, solo) error = %v", err)
	}
	if r.Group != "gamma" {
		t.Errorf("Group = %q, want fallback to the global lookup", r.Group)
	}
}

func TestFindUnknownSuggests(t *testing.T) {
	t.Parallel()

	cfg := testConfig("/srv/dev")
	_, err := Find(cfg, "biling-api")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find() = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("error is not a *NotFoundError")
	}
	found := false
	for _, s := range nf.Suggestions {
		if s == "billing-api" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggestions = %v, want billing-api", nf.Suggestions)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg := testConfig(base)

	// billing-api is cloned, billing-worker is not, rogue is unconfigured.
	for _, dir := range []string{
		filepath.Join(base, "billing", "billing-api", ".git"),
		filepath.Join(base, "billing", "rogue"),
		filepath.Join(base, "billing", ".venv"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	listings := List(cfg)
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2 groups", len(listings))
	}

	billing := listings[0]
	if billing.Group != "billing" {
		t.Fatalf("first group = %q", billing.Group)
	}
	states := map[string]State{}
	for _, e := range billing.Entries {
		states[e.Name] = e.State
	}
	if states["billing-api"] != StateCloned {
		t.Errorf("billing-api state = %v, want cloned", states["billing-api"])
	}
	if states["billing-worker"] != StateAvailable {
		t.Errorf("billing-worker state = %v, want available", states["billing-worker"])
	}
	if states["rogue"] != StateUnknown {
		t.Errorf("rogue state = %v, want unknown", states["rogue"])
	}
	if _, ok := states[".venv"]; ok {
		t.Error(".venv listed as an entry")
	}
	if states["common-lib"] != StateAvailable {
		t.Errorf("common-lib state = %v, want the global repo folded in as available", states["common-lib"])
	}
}

func TestProjects(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg := testConfig(base)

	proj := filepath.Join(base, "projects", "brave_otter")
	if err := os.MkdirAll(proj, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proj, "pyproject.toml"), []byte("[project]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory without pyproject.toml is not a project.
	if err := os.MkdirAll(filepath.Join(base, "projects", "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := Projects(cfg)
	if len(got) != 1 || got[0].Name != "brave_otter" {
		t.Errorf("Projects() = %v, want brave_otter only", got)
	}

	// Find falls back to projects after the configured repos.
	r, err := Find(cfg, "brave_otter")
	if err != nil {
		t.Fatalf("Find(brave_otter) error = %v", err)
	}
	if r.Group != "projects" {
		t.Errorf("Group = %q", r.Group)
	}
}
