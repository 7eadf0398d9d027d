package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dbxdev/dbx/internal/config"
)

func mkProject(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "pyproject.toml"), []byte("[project]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRandomName(t *testing.T) {
	t.Parallel()

	for range 20 {
		name := RandomName()
		adj, noun, ok := strings.Cut(name, "_")
		if !ok || adj == "" || noun == "" {
			t.Fatalf("RandomName() = %q, want adjective_noun", name)
		}
		if !validName(name) {
			t.Errorf("RandomName() = %q, not a valid project name", name)
		}
	}
}

func TestValidName(t *testing.T) {
	t.Parallel()

	valid := []string{"brave_otter", "myproject", "Proj2", "_private"}
	invalid := []string{"", "2cool", "my-project", "my project", "a.b"}
	for _, name := range valid {
		if !validName(name) {
			t.Errorf("validName(%q) = false", name)
		}
	}
	for _, name := range invalid {
		if validName(name) {
			t.Errorf("validName(%q) = true", name)
		}
	}
}

func TestNewest(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg := &config.Config{BaseDir: base, Project: config.Project{Dir: "projects"}}
	projectsDir := filepath.Join(base, "projects")

	older := mkProject(t, projectsDir, "older")
	newer := mkProject(t, projectsDir, "newer")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if err := os.Chtimes(newer, now, now); err != nil {
		t.Fatal(err)
	}

	p, err := Newest(cfg)
	if err != nil {
		t.Fatalf("Newest() error = %v", err)
	}
	if p.Name != "newer" {
		t.Errorf("Newest() = %q, want %q", p.Name, "newer")
	}
}

func TestNewestEmpty(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{BaseDir: t.TempDir(), Project: config.Project{Dir: "projects"}}
	if _, err := Newest(cfg); err != ErrNoProjects {
		t.Errorf("Newest() = %v, want ErrNoProjects", err)
	}
}

func TestFindDefaultsToNewest(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg := &config.Config{BaseDir: base, Project: config.Project{Dir: "projects"}}
	mkProject(t, filepath.Join(base, "projects"), "solo")

	p, err := Find(cfg, "")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if p.Name != "solo" {
		t.Errorf("Find(\"\") = %q", p.Name)
	}

	if _, err := Find(cfg, "missing"); err == nil {
		t.Error("Find(missing) = nil, want error")
	}
}

func TestPyproject(t *testing.T) {
	t.Parallel()

	content := Pyproject("brave_otter")
	for _, want := range []string{
		`name = "brave_otter"`,
		`DJANGO_SETTINGS_MODULE = "brave_otter.settings.brave_otter"`,
		"django-mongodb-backend",
		"pytest-django",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Pyproject() missing %q", want)
		}
	}
}

func TestMaterializeTemplate(t *testing.T) {
	t.Parallel()

	dir, cleanup, err := materializeTemplate()
	if err != nil {
		t.Fatalf("materializeTemplate() error = %v", err)
	}
	defer cleanup()

	for _, rel := range []string{
		"manage.py",
		filepath.Join("project_name", "settings", "base.py"),
		filepath.Join("project_name", "settings", "mongodb.py"),
		filepath.Join("project_name", "settings", "project_name.py"),
		filepath.Join("project_name", "apps.py"),
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("template file %s missing: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "project_name", "settings", "base.py"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "{{ project_name }}") {
		t.Error("template placeholders missing from base.py")
	}
}

func TestDjangoEnv(t *testing.T) {
	p := Project{Name: "brave_otter", Path: "/srv/dev/projects/brave_otter"}

	t.Setenv("PYTHONPATH", "/existing")
	env := p.DjangoEnv("")
	if env["DJANGO_SETTINGS_MODULE"] != "brave_otter.settings.brave_otter" {
		t.Errorf("DJANGO_SETTINGS_MODULE = %q", env["DJANGO_SETTINGS_MODULE"])
	}
	if env["PYTHONPATH"] != "/srv/dev/projects/brave_otter"+string(os.PathListSeparator)+"/existing" {
		t.Errorf("PYTHONPATH = %q", env["PYTHONPATH"])
	}

	env = p.DjangoEnv("test")
	if env["DJANGO_SETTINGS_MODULE"] != "brave_otter.settings.test" {
		t.Errorf("DJANGO_SETTINGS_MODULE = %q", env["DJANGO_SETTINGS_MODULE"])
	}
}
