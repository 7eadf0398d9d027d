// Package repos locates repositories across the configured groups.
//
// The directory convention is <base_dir>/<group>/<repo>. A repository is
// "cloned" when a configured repo exists on disk as a git working tree,
// "available" when configured but absent, and "unknown" when a directory
// exists that no group configures. Scaffolded projects live under the
// projects directory and count as repositories when they carry a
// pyproject.toml.
package repos

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/git"
)

// Repo is one configured repository.
type Repo struct {
	Name  string
	Group string
	URL   string
	// Path is where the clone lives (or would live).
	Path string
}

// ErrNotFound indicates no configured repository matches a name.
var ErrNotFound = errors.New("repository not found")

// NotFoundError carries suggestions for a failed lookup.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("repository %q not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// All returns every configured repository, ordered by group then name.
func All(cfg *config.Config) []Repo {
	base := cfg.ExpandedBaseDir()
	var all []Repo
	for _, group := range cfg.GroupNames() {
		for _, url := range cfg.Groups[group].Repos {
			name := git.RepoNameFromURL(url)
			all = append(all, Repo{
				Name:  name,
				Group: group,
				URL:   url,
				Path:  filepath.Join(base, group, name),
			})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Group != all[j].Group {
			return all[i].Group < all[j].Group
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// ForGroup returns the repositories available to a group: its own plus those
// of the global groups.
func ForGroup(cfg *config.Config, group string) []Repo {
	var out []Repo
	for _, r := range All(cfg) {
		if r.Group == group {
			out = append(out, r)
			continue
		}
		for _, g := range cfg.GlobalGroups {
			if r.Group == g {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Find looks a repository up by name across all groups. Scaffolded projects
// count too, so test and tooling commands work on them. An unknown name
// yields a NotFoundError with fuzzy suggestions.
func Find(cfg *config.Config, name string) (Repo, error) {
	for _, r := range All(cfg) {
		if r.Name == name {
			return r, nil
		}
	}
	for _, r := range Projects(cfg) {
		if r.Name == name {
			return r, nil
		}
	}
	return Repo{}, &NotFoundError{Name: name, Suggestions: Suggest(cfg, name)}
}

// FindInGroup looks a repository up by name, preferring the named group's
// repositories (its own plus the global groups') so a name present in more
// than one group resolves to the intended clone. An empty group behaves like
// Find.
func FindInGroup(cfg *config.Config, group, name string) (Repo, error) {
	if group != "" {
		for _, r := range ForGroup(cfg, group) {
			if r.Name == name {
				return r, nil
			}
		}
	}
	return Find(cfg, name)
}

// Suggest returns up to three fuzzy-matched repository names for a mistyped
// name.
func Suggest(cfg *config.Config, name string) []string {
	all := All(cfg)
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	matches := fuzzy.Find(name, names)
	var out []string
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// Cloned reports whether the repository exists on disk as a git working tree.
func (r Repo) Cloned() bool {
	return git.IsRepo(r.Path)
}

// GroupPath returns the group directory containing the repository.
func (r Repo) GroupPath() string {
	return filepath.Dir(r.Path)
}

// Projects returns the scaffolded projects (directories under the projects
// dir carrying a pyproject.toml), sorted by name.
func Projects(cfg *config.Config) []Repo {
	dir := cfg.ProjectsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []Repo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, "pyproject.toml")); err != nil {
			continue
		}
		out = append(out, Repo{Name: entry.Name(), Group: "projects", Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
