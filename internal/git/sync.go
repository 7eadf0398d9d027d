package git

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoUpstream indicates a repo has no upstream remote to sync from.
var ErrNoUpstream = errors.New("no upstream remote")

// ErrDetachedHead indicates a repo is not on a branch.
var ErrDetachedHead = errors.New("detached HEAD")

// Sync updates a fork: fetch upstream, rebase the current branch onto
// upstream/<branch>, push the result to origin. forcePush uses
// --force-with-lease, which rebased branches usually need.
func Sync(ctx context.Context, dir string, forcePush bool) error {
	hasUpstream, err := HasRemote(ctx, dir, "upstream")
	if err != nil {
		return err
	}
	if !hasUpstream {
		return ErrNoUpstream
	}

	branch, err := CurrentBranch(ctx, dir)
	if err != nil {
		return err
	}
	if branch == "" {
		return ErrDetachedHead
	}

	if err := Fetch(ctx, dir, "upstream"); err != nil {
		return fmt.Errorf("fetching upstream: %w", err)
	}
	if err := Rebase(ctx, dir, "upstream/"+branch); err != nil {
		return fmt.Errorf("rebasing onto upstream/%s: %w", branch, err)
	}
	if err := Push(ctx, dir, "origin", branch, forcePush); err != nil {
		return fmt.Errorf("pushing to origin: %w", err)
	}
	return nil
}
