package git

import (
	"context"
	"errors"
	"os/exec"

	"github.com/dbxdev/dbx/internal/cmd"
)

// ErrGitNotFound indicates the git binary is not on PATH.
var ErrGitNotFound = errors.New("git not found in PATH")

// CheckInstalled verifies the git binary is available.
func CheckInstalled() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// gitArgs prepends the -C flag so commands run against dir without chdir.
func gitArgs(dir string, args ...string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContext(ctx, "", "git", gitArgs(dir, args...)...)
}

func outputGit(ctx context.Context, dir string, args ...string) (string, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args...)...)
}
