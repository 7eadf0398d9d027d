package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/git"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/progress"
)

func newCloneCmd() *cobra.Command {
	var (
		group    string
		list     bool
		forkUser string
	)

	cmd := &cobra.Command{
		Use:     "clone [repo]",
		Short:   "Clone a repository or a whole group",
		GroupID: GroupRepo,
		Args:    cobra.MaximumNArgs(1),
		Long: `Clone a configured repository into <base_dir>/<group>/, or every
repository of a group with -g. Repositories that are already cloned are
skipped.

With --fork the clone uses your fork as origin and the configured URL is
added as the upstream remote.`,
		Example: `  dbx clone billing-api            # Clone one repo
  dbx clone billing-api --fork alice
  dbx clone -g billing             # Clone the whole group
  dbx clone --list                 # Show what can be cloned`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if list {
				for _, r := range repos.All(cfg) {
					out.Printf("%s (%s)\n", r.Name, r.Group)
				}
				return nil
			}

			if group != "" {
				return cloneGroup(ctx, group, forkUser)
			}

			if len(args) == 0 {
				return fmt.Errorf("repository name required (or -g <group>, or --list)")
			}
			r, err := repos.Find(cfg, args[0])
			if err != nil {
				return err
			}
			return cloneOne(ctx, r, forkUser)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Clone every repository of this group")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List cloneable repositories")
	cmd.Flags().StringVar(&forkUser, "fork", "", "Clone your fork as origin, keep the configured URL as upstream")
	cmd.RegisterFlagCompletionFunc("group", completeGroups)
	cmd.ValidArgsFunction = completeRepos

	return cmd
}

// cloneOne clones a single repository, wiring the fork workflow and the
// configured default branch.
func cloneOne(ctx context.Context, r repos.Repo, forkUser string) error {
	logger := log.FromContext(ctx)

	if r.Cloned() {
		logger.Printf("%s already cloned at %s\n", r.Name, r.Path)
		return nil
	}
	if err := os.MkdirAll(r.GroupPath(), 0o755); err != nil {
		return fmt.Errorf("creating group directory: %w", err)
	}

	cloneURL := r.URL
	if forkUser != "" {
		forked, err := git.ForkURL(r.URL, forkUser)
		if err != nil {
			return err
		}
		cloneURL = forked
	}

	logger.Printf("Cloning %s...\n", r.Name)
	if err := git.Clone(ctx, cloneURL, r.Path); err != nil {
		return fmt.Errorf("cloning %s: %w", r.Name, err)
	}

	if forkUser != "" {
		if err := git.AddRemote(ctx, r.Path, "upstream", r.URL); err != nil {
			return fmt.Errorf("adding upstream remote: %w", err)
		}
	}

	if branch := cfg.Groups[r.Group].DefaultBranchFor(r.Name); branch != "" {
		if err := git.Switch(ctx, r.Path, branch); err != nil {
			logger.Warnf("could not switch %s to %s: %v\n", r.Name, branch, err)
		}
	}
	return nil
}

// cloneGroup clones every repository of a group. A failing repo does not
// abort the rest; the command fails overall when any repo failed.
func cloneGroup(ctx context.Context, group, forkUser string) error {
	if _, err := requireGroup(group); err != nil {
		return err
	}
	logger := log.FromContext(ctx)

	targets := repos.ForGroup(cfg, group)
	if len(targets) == 0 {
		return fmt.Errorf("group %q has no repositories configured", group)
	}

	spin := progress.New(fmt.Sprintf("Cloning %s...", group))
	if !verbose {
		spin.Start()
		defer spin.Stop()
	}

	failed := 0
	for _, r := range targets {
		spin.Update(fmt.Sprintf("Cloning %s...", r.Name))
		if err := cloneOne(ctx, r, forkUser); err != nil {
			logger.Warnf("%v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed to clone", failed, len(targets))
	}
	return nil
}
