// Package venv resolves Python virtual environments for dbx commands.
//
// Resolution walks a strict precedence chain and is side-effect free: only
// stat calls, no subprocesses, no environment mutation. Every successful
// resolution carries the environment's kind and root so callers can explain
// which interpreter they picked and why.
package venv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Kind identifies where a resolved environment came from.
type Kind string

const (
	// KindRepo is a .venv in the repository itself.
	KindRepo Kind = "repo"
	// KindGroup is the shared .venv of the repository's group.
	KindGroup Kind = "group"
	// KindBase is a .venv directly under the base directory.
	KindBase Kind = "base"
	// KindActivated is the caller's currently activated environment.
	KindActivated Kind = "activated"
	// KindAuto is the single auto-detected group venv under the base directory.
	KindAuto Kind = "auto"
	// KindSystem is the system interpreter. Never produced by Resolve; only
	// the explicit read-only fallback yields it.
	KindSystem Kind = "system"
)

// Environment is a resolved Python environment.
type Environment struct {
	// Interpreter is the absolute path to the python executable.
	Interpreter string
	// Kind records which precedence step matched.
	Kind Kind
	// Root is the venv directory, empty for KindSystem.
	Root string
}

// Context holds the inputs to resolution. All fields are optional except
// BaseDir; empty fields simply skip their precedence step. Activated is the
// caller's VIRTUAL_ENV value, passed in explicitly so Resolve stays pure.
type Context struct {
	RepoPath  string
	GroupPath string
	BaseDir   string
	Activated string
}

// ErrNotFound reports that no usable environment exists anywhere in the
// precedence chain.
var ErrNotFound = errors.New("no virtual environment found")

// ErrAmbiguous reports that auto-detection found more than one candidate.
var ErrAmbiguous = errors.New("multiple virtual environments found")

// NotFoundError carries the locations that were searched.
type NotFoundError struct {
	Searched []string
}

func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s (searched %s)", ErrNotFound, strings.Join(e.Searched, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousError carries the conflicting auto-detection candidates.
type AmbiguousError struct {
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %s (pass a group explicitly)",
		ErrAmbiguous, strings.Join(e.Candidates, ", "))
}

// Unwrap matches both sentinels: ambiguity is a refusal to guess, so callers
// probing for a usable environment see ErrNotFound as well.
func (e *AmbiguousError) Unwrap() []error { return []error{ErrAmbiguous, ErrNotFound} }

// Resolve finds the environment for ctx. Precedence, first match wins:
//
//  1. <RepoPath>/.venv
//  2. <GroupPath>/.venv
//  3. <BaseDir>/.venv
//  4. the activated environment (Context.Activated)
//  5. a single <BaseDir>/<child>/.venv among the base directory's
//     immediate children
//
// A venv directory whose interpreter is missing or not executable is skipped,
// not fatal. More than one auto-detection candidate is an AmbiguousError;
// nothing usable anywhere is a NotFoundError listing what was searched.
// Resolve never falls back to the system interpreter.
func Resolve(ctx Context) (Environment, error) {
	var searched []string

	try := func(root string, kind Kind) (Environment, bool) {
		if root == "" {
			return Environment{}, false
		}
		searched = append(searched, root)
		py := interpreterIn(root)
		if !usable(py) {
			return Environment{}, false
		}
		return Environment{Interpreter: py, Kind: kind, Root: root}, true
	}

	if env, ok := try(venvDir(ctx.RepoPath), KindRepo); ok {
		return env, nil
	}
	if env, ok := try(venvDir(ctx.GroupPath), KindGroup); ok {
		return env, nil
	}
	if env, ok := try(venvDir(ctx.BaseDir), KindBase); ok {
		return env, nil
	}
	if env, ok := try(ctx.Activated, KindActivated); ok {
		return env, nil
	}

	candidates := autoCandidates(ctx.BaseDir)
	switch len(candidates) {
	case 0:
		// fall through to not found
	case 1:
		root := candidates[0]
		return Environment{Interpreter: interpreterIn(root), Kind: KindAuto, Root: root}, nil
	default:
		return Environment{}, &AmbiguousError{Candidates: candidates}
	}

	if ctx.BaseDir != "" {
		searched = append(searched, filepath.Join(ctx.BaseDir, "*", ".venv"))
	}
	return Environment{}, &NotFoundError{Searched: searched}
}

// System returns the system interpreter as an Environment. It is the explicit
// fallback for read-only operations; install paths must never call it.
func System() (Environment, error) {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return Environment{Interpreter: path, Kind: KindSystem}, nil
		}
	}
	return Environment{}, errors.New("no python interpreter on PATH")
}

// ActivatedFromEnv returns the caller's VIRTUAL_ENV, if any.
func ActivatedFromEnv() string {
	return os.Getenv("VIRTUAL_ENV")
}

// venvDir returns the .venv directory under dir, or "" when dir is empty.
func venvDir(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ".venv")
}

// interpreterIn returns the interpreter path inside a venv root.
func interpreterIn(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}

// usable reports whether path is an executable regular file. Symlinks are
// followed, matching what exec would do.
func usable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// autoCandidates returns the usable <base>/<child>/.venv roots, sorted for
// deterministic ambiguity reports.
func autoCandidates(baseDir string) []string {
	if baseDir == "" {
		return nil
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil
	}
	var roots []string
	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		root := filepath.Join(baseDir, entry.Name(), ".venv")
		if usable(interpreterIn(root)) {
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)
	return roots
}
