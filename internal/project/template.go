package project

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// templateFS bundles the django-admin startproject template. The directory
// and file named project_name are renamed by django-admin; {{ project_name }}
// placeholders inside .py files are rendered by its template engine.
//
//go:embed all:template
var templateFS embed.FS

// materializeTemplate writes the bundled template to a temporary directory
// so django-admin can read it from disk. The returned cleanup removes it.
func materializeTemplate() (dir string, cleanup func(), err error) {
	tmp, err := os.MkdirTemp("", "dbx-project-template-")
	if err != nil {
		return "", nil, fmt.Errorf("creating template dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(tmp) }

	err = fs.WalkDir(templateFS, "template", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("template", path)
		if err != nil {
			return err
		}
		target := filepath.Join(tmp, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("materializing project template: %w", err)
	}
	return tmp, cleanup, nil
}
