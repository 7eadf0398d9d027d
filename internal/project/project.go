// Package project scaffolds and manages Django projects under the projects
// directory.
//
// A project is any directory under <base_dir>/projects carrying a
// pyproject.toml. Scaffolding runs django-admin startproject with the bundled
// template and generates a pyproject.toml; the Django settings package keeps
// one module per database backend so DJANGO_SETTINGS_MODULE selects the
// configuration.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/dispatch"
)

// Project is one scaffolded Django project.
type Project struct {
	Name string
	Path string
}

// ErrNoProjects indicates the projects directory holds no projects.
var ErrNoProjects = errors.New("no projects found")

// List returns the projects sorted by name.
func List(cfg *config.Config) []Project {
	dir := cfg.ProjectsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, "pyproject.toml")); err != nil {
			continue
		}
		out = append(out, Project{Name: entry.Name(), Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Newest returns the most recently modified project. When no name is given on
// the command line, commands default to this one.
func Newest(cfg *config.Config) (Project, error) {
	projects := List(cfg)
	if len(projects) == 0 {
		return Project{}, ErrNoProjects
	}
	newest := projects[0]
	var newestTime int64
	for _, p := range projects {
		info, err := os.Stat(p.Path)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); mod >= newestTime {
			newest, newestTime = p, mod
		}
	}
	return newest, nil
}

// Find returns the named project, or Newest when name is empty.
func Find(cfg *config.Config, name string) (Project, error) {
	if name == "" {
		return Newest(cfg)
	}
	for _, p := range List(cfg) {
		if p.Name == name {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("project %q not found", name)
}

// HasFrontend reports whether the project carries an npm frontend.
func (p Project) HasFrontend() bool {
	_, err := os.Stat(filepath.Join(p.Path, "frontend", "package.json"))
	return err == nil
}

// Scaffold creates a new Django project at <projectsDir>/<name>.
//
// django-admin renders the bundled template (materialized to a temp
// directory), then the generated pyproject.toml pins the project's
// dependencies and pytest settings.
func Scaffold(ctx context.Context, runner *dispatch.Runner, cfg *config.Config, name string) (Project, error) {
	if !validName(name) {
		return Project{}, fmt.Errorf("invalid project name %q: must be a valid Python identifier", name)
	}

	dir := cfg.ProjectsDir()
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return Project{}, fmt.Errorf("project %q already exists at %s", name, path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Project{}, fmt.Errorf("creating projects directory: %w", err)
	}

	templateDir, cleanup, err := materializeTemplate()
	if err != nil {
		return Project{}, err
	}
	defer cleanup()

	outcome, err := runner.RunTool(ctx, dispatch.Command{
		Argv: []string{"django-admin", "startproject", "--template", templateDir, name},
		Dir:  dir,
	})
	if err != nil {
		var spawn *dispatch.SpawnError
		if errors.As(err, &spawn) {
			return Project{}, fmt.Errorf("django-admin not found: install Django in the current environment")
		}
		return Project{}, err
	}
	if !outcome.Succeeded() {
		return Project{}, fmt.Errorf("django-admin startproject failed: %s", lastLine(outcome.Stderr))
	}

	if err := os.WriteFile(filepath.Join(path, "pyproject.toml"), []byte(Pyproject(name)), 0o644); err != nil {
		return Project{}, fmt.Errorf("writing pyproject.toml: %w", err)
	}
	return Project{Name: name, Path: path}, nil
}

// Pyproject returns the generated pyproject.toml content for a project.
func Pyproject(name string) string {
	return fmt.Sprintf(`[build-system]
requires = ["setuptools", "wheel"]
build-backend = "setuptools.build_meta"

[project]
name = %[2]q
version = "0.1.0"
description = "A Django project scaffolded by dbx"
dependencies = [
    "django-debug-toolbar",
    "django-mongodb-backend",
    "python-webpack-boilerplate",
]

[project.optional-dependencies]
dev = [
    "django-debug-toolbar",
]
test = [
    "pytest",
    "pytest-django",
    "ruff",
]
encryption = [
    "pymongocrypt",
]

[tool.pytest.ini_options]
DJANGO_SETTINGS_MODULE = "%[1]s.settings.%[1]s"
python_files = ["tests.py", "test_*.py", "*_tests.py"]

[tool.setuptools]
packages = [%[2]q]
`, name, name)
}

// validName checks that name works as a Python package name.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
