package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/repos"
)

func newJustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "just <repo> [recipe] [args...]",
		Short:   "Run a just recipe in a repository",
		GroupID: GroupEnv,
		Args:    cobra.MinimumNArgs(1),
		Long: `Run just in the repository with the group's expanded test
environment. The repository must carry a justfile.`,
		Example: `  dbx just billing-api lint
  dbx just billing-api test integration`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			r, err := repos.Find(cfg, args[0])
			if err != nil {
				return err
			}
			if !r.Cloned() {
				return fmt.Errorf("%s is not cloned", r.Name)
			}
			if !hasJustfile(r.Path) {
				return fmt.Errorf("%s has no justfile", r.Name)
			}

			runner := &dispatch.Runner{
				BaseDir: cfg.ExpandedBaseDir(),
				Group:   r.Group,
				Stream:  true,
			}
			outcome, err := runner.RunTool(ctx, dispatch.Command{
				Argv: append([]string{"just"}, args[1:]...),
				Dir:  r.Path,
				Env:  cfg.TestEnv(r.Group),
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("just exited with code %d", outcome.ExitCode)
			}
			return nil
		},
	}

	cmd.ValidArgsFunction = completeRepos
	return cmd
}

func hasJustfile(dir string) bool {
	for _, name := range []string{"justfile", "Justfile", ".justfile"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
