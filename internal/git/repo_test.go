package git

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/dbxdev/dbx/internal/log"
)

func logCtx() context.Context {
	return log.WithLogger(context.Background(), log.New(io.Discard, false, false))
}

// initRepo creates a git repo with one commit and returns its path.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	ctx := logCtx()
	for _, args := range [][]string{
		{"init", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
		{"commit", "--allow-empty", "-m", "initial"},
	} {
		if err := runGit(ctx, dir, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	return dir
}

func TestIsRepo(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	if !IsRepo(dir) {
		t.Error("IsRepo() = false for a git working tree")
	}
	if IsRepo(t.TempDir()) {
		t.Error("IsRepo() = true for a plain directory")
	}
}

func TestCurrentBranch(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	branch, err := CurrentBranch(logCtx(), dir)
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch() = %q, want %q", branch, "main")
	}
}

func TestCurrentBranchDetached(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	ctx := logCtx()
	if err := runGit(ctx, dir, "checkout", "--detach"); err != nil {
		t.Fatal(err)
	}
	branch, err := CurrentBranch(ctx, dir)
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "" {
		t.Errorf("CurrentBranch() = %q, want empty on detached HEAD", branch)
	}
}

func TestRemotes(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	ctx := logCtx()

	remotes, err := Remotes(ctx, dir)
	if err != nil {
		t.Fatalf("Remotes() error = %v", err)
	}
	if len(remotes) != 0 {
		t.Errorf("Remotes() = %v, want none", remotes)
	}

	if err := AddRemote(ctx, dir, "upstream", "https://github.com/acme/x.git"); err != nil {
		t.Fatalf("AddRemote() error = %v", err)
	}
	has, err := HasRemote(ctx, dir, "upstream")
	if err != nil {
		t.Fatalf("HasRemote() error = %v", err)
	}
	if !has {
		t.Error("HasRemote(upstream) = false after AddRemote")
	}
	url, err := RemoteURL(ctx, dir, "upstream")
	if err != nil {
		t.Fatalf("RemoteURL() error = %v", err)
	}
	if url != "https://github.com/acme/x.git" {
		t.Errorf("RemoteURL() = %q", url)
	}
}

func TestSyncWithoutUpstream(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	if err := Sync(logCtx(), dir, false); err != ErrNoUpstream {
		t.Errorf("Sync() = %v, want ErrNoUpstream", err)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	src := initRepo(t)
	dest := filepath.Join(t.TempDir(), "clone")
	if err := Clone(logCtx(), src, dest); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if !IsRepo(dest) {
		t.Error("clone destination is not a git repo")
	}
}
