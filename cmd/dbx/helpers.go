package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/styles"
	"github.com/dbxdev/dbx/internal/venv"
)

// groupDir returns <base_dir>/<group>.
func groupDir(group string) string {
	return filepath.Join(cfg.ExpandedBaseDir(), group)
}

// requireGroup returns the named group's settings or an error listing the
// configured groups.
func requireGroup(name string) (config.Group, error) {
	group, ok := cfg.Groups[name]
	if !ok {
		return config.Group{}, fmt.Errorf("group %q not configured (groups: %s)",
			name, strings.Join(cfg.GroupNames(), ", "))
	}
	return group, nil
}

// venvContext builds the resolution inputs for a repository.
func venvContext(r repos.Repo) venv.Context {
	return venv.Context{
		RepoPath:  r.Path,
		GroupPath: r.GroupPath(),
		BaseDir:   cfg.ExpandedBaseDir(),
		Activated: venv.ActivatedFromEnv(),
	}
}

// resolveEnv resolves the environment for a repository. Used by mutating
// operations: failure is a hard error, there is no system fallback.
func resolveEnv(ctx context.Context, r repos.Repo) (venv.Environment, error) {
	return resolveEnvIn(ctx, r, "")
}

// resolveEnvIn resolves like resolveEnv but, when group is set, uses that
// group's directory for the group step of the precedence chain.
func resolveEnvIn(ctx context.Context, r repos.Repo, group string) (venv.Environment, error) {
	vctx := venvContext(r)
	if group != "" {
		vctx.GroupPath = groupDir(group)
	}
	env, err := venv.Resolve(vctx)
	if err != nil {
		return venv.Environment{}, fmt.Errorf("resolving environment for %s: %w", r.Name, err)
	}
	log.FromContext(ctx).Verbosef("[verbose] using %s interpreter %s\n", env.Kind, env.Interpreter)
	return env, nil
}

// splitCommand splits a configured command string into argv fields.
func splitCommand(s string) []string {
	return strings.Fields(s)
}

// reportResults prints one status line per batch unit, in batch order.
func reportResults(ctx context.Context, results []dispatch.UnitResult) {
	out := output.FromContext(ctx)
	for _, result := range results {
		switch {
		case result.Err != nil:
			out.Printf("%s %s: %v\n", styles.Failed.Render("✗"), result.Name, result.Err)
		case !result.Outcome.Succeeded():
			out.Printf("%s %s (exit %d)\n", styles.Failed.Render("✗"), result.Name, result.Outcome.ExitCode)
		default:
			out.Printf("%s %s\n", styles.Cloned.Render("✓"), result.Name)
		}
	}
}

// findEditor returns $EDITOR, falling back to the first of vim, nano and vi
// found on PATH. Returns "" when no editor is available.
func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	for _, candidate := range []string{"vim", "nano", "vi"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// runEditor launches the editor on path, attached to the terminal.
func runEditor(ctx context.Context, editor, path string) error {
	child := exec.CommandContext(ctx, editor, path)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	return child.Run()
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
