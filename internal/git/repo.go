package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsRepo reports whether dir is a git working tree.
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// Clone clones url into dest.
func Clone(ctx context.Context, url, dest string) error {
	return runGit(ctx, "", "clone", url, dest)
}

// CurrentBranch returns the checked-out branch, or "" on a detached HEAD.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := outputGit(ctx, dir, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("getting current branch: %w", err)
	}
	return out, nil
}

// Remotes returns the configured remote names.
func Remotes(ctx context.Context, dir string) ([]string, error) {
	out, err := outputGit(ctx, dir, "remote")
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// HasRemote reports whether the named remote exists.
func HasRemote(ctx context.Context, dir, name string) (bool, error) {
	remotes, err := Remotes(ctx, dir)
	if err != nil {
		return false, err
	}
	for _, r := range remotes {
		if r == name {
			return true, nil
		}
	}
	return false, nil
}

// RemoteURL returns the fetch URL of the named remote.
func RemoteURL(ctx context.Context, dir, name string) (string, error) {
	out, err := outputGit(ctx, dir, "remote", "get-url", name)
	if err != nil {
		return "", fmt.Errorf("getting %s URL: %w", name, err)
	}
	return out, nil
}

// AddRemote adds a remote.
func AddRemote(ctx context.Context, dir, name, url string) error {
	return runGit(ctx, dir, "remote", "add", name, url)
}

// Fetch fetches the named remote.
func Fetch(ctx context.Context, dir, remote string) error {
	return runGit(ctx, dir, "fetch", remote)
}

// Rebase rebases the current branch onto upstream ref.
func Rebase(ctx context.Context, dir, onto string) error {
	return runGit(ctx, dir, "rebase", onto)
}

// Push pushes branch to remote. With forceWithLease set, the push uses
// --force-with-lease.
func Push(ctx context.Context, dir, remote, branch string, forceWithLease bool) error {
	args := []string{"push", remote, branch}
	if forceWithLease {
		args = append(args, "--force-with-lease")
	}
	return runGit(ctx, dir, args...)
}

// Switch checks out branch.
func Switch(ctx context.Context, dir, branch string) error {
	return runGit(ctx, dir, "switch", branch)
}
