package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/git"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/progress"
)

func newSyncCmd() *cobra.Command {
	var (
		group string
		list  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:     "sync [repo]",
		Short:   "Sync forks with their upstream",
		GroupID: GroupRepo,
		Args:    cobra.MaximumNArgs(1),
		Long: `Fetch the upstream remote, rebase the current branch onto
upstream/<branch> and push the result to origin.

Repositories without an upstream remote or on a detached HEAD are
skipped with a warning. Rebased branches usually need --force to push.`,
		Example: `  dbx sync billing-api
  dbx sync -g billing --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if list {
				for _, r := range repos.All(cfg) {
					if r.Cloned() {
						out.Printf("%s (%s)\n", r.Name, r.Group)
					}
				}
				return nil
			}

			if group != "" {
				return syncGroup(ctx, group, force)
			}
			if len(args) == 0 {
				return fmt.Errorf("repository name required (or -g <group>, or --list)")
			}
			r, err := repos.Find(cfg, args[0])
			if err != nil {
				return err
			}
			if !r.Cloned() {
				return fmt.Errorf("%s is not cloned", r.Name)
			}
			return syncOne(ctx, r, force)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Sync every cloned repository of this group")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List syncable repositories")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Push with --force-with-lease")
	cmd.RegisterFlagCompletionFunc("group", completeGroups)
	cmd.ValidArgsFunction = completeRepos

	return cmd
}

// syncOne syncs a single repository, treating a missing upstream and a
// detached HEAD as skips rather than failures.
func syncOne(ctx context.Context, r repos.Repo, force bool) error {
	logger := log.FromContext(ctx)

	err := git.Sync(ctx, r.Path, force)
	switch {
	case errors.Is(err, git.ErrNoUpstream):
		logger.Warnf("%s has no upstream remote, skipping\n", r.Name)
		return nil
	case errors.Is(err, git.ErrDetachedHead):
		logger.Warnf("%s is on a detached HEAD, skipping\n", r.Name)
		return nil
	case err != nil:
		return fmt.Errorf("syncing %s: %w", r.Name, err)
	}
	logger.Printf("Synced %s\n", r.Name)
	return nil
}

func syncGroup(ctx context.Context, group string, force bool) error {
	if _, err := requireGroup(group); err != nil {
		return err
	}
	logger := log.FromContext(ctx)

	var targets []repos.Repo
	for _, r := range repos.ForGroup(cfg, group) {
		if r.Cloned() {
			targets = append(targets, r)
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("group %q has no cloned repositories", group)
	}

	spin := progress.New(fmt.Sprintf("Syncing %s...", group))
	if !verbose {
		spin.Start()
		defer spin.Stop()
	}

	failed := 0
	for _, r := range targets {
		spin.Update(fmt.Sprintf("Syncing %s...", r.Name))
		if err := syncOne(ctx, r, force); err != nil {
			logger.Warnf("%v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed to sync", failed, len(targets))
	}
	return nil
}
