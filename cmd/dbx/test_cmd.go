package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/project"
	"github.com/dbxdev/dbx/internal/repos"
)

func newTestCmd() *cobra.Command {
	var (
		keyword   string
		groupName string
	)

	cmd := &cobra.Command{
		Use:     "test <repo> [pytest-args...]",
		Short:   "Run a repository's tests in its resolved environment",
		GroupID: GroupEnv,
		Args:    cobra.MinimumNArgs(1),
		Long: `Run pytest (or the repo's configured test_runner script) with the
resolved interpreter and the group's expanded test environment.

Extra arguments are passed through to pytest. With -g the named group's
virtual environment is used, which also disambiguates a repo name that
appears in more than one group. The exit code of the test run is
reported as the command result.`,
		Example: `  dbx test billing-api
  dbx test billing-api -k test_invoice
  dbx test billing-api -g billing
  dbx test billing-api tests/unit -x`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			if groupName != "" {
				if _, err := requireGroup(groupName); err != nil {
					return err
				}
			}
			r, err := repos.FindInGroup(cfg, groupName, args[0])
			if err != nil {
				return err
			}
			if !r.Cloned() {
				return fmt.Errorf("%s is not cloned", r.Name)
			}
			env, err := resolveEnvIn(ctx, r, groupName)
			if err != nil {
				return err
			}

			testEnv := cfg.TestEnv(r.Group)
			if testEnv == nil {
				testEnv = map[string]string{}
			}
			project.ApplyDefaultEnv(testEnv, cfg.Project.DefaultEnv)

			runnerScript := cfg.Groups[r.Group].TestRunnerFor(r.Name)
			passthrough := args[1:]

			var c dispatch.Command
			if runnerScript != "" {
				if keyword != "" {
					logger.Warnf("-k is not supported with the custom test runner %s, ignoring\n", runnerScript)
				}
				c = dispatch.Command{
					Argv: append([]string{runnerScript}, passthrough...),
					Dir:  r.Path,
					Env:  testEnv,
				}
			} else {
				argv := append([]string{"pytest"}, passthrough...)
				if keyword != "" {
					argv = append(argv, "-k", keyword)
				}
				c = dispatch.Command{
					Argv:      argv,
					Dir:       r.Path,
					Env:       testEnv,
					UseModule: true,
				}
			}

			runner := &dispatch.Runner{
				BaseDir: cfg.ExpandedBaseDir(),
				Group:   r.Group,
				Stream:  true,
			}
			outcome, err := runner.Run(ctx, env, c)
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("tests failed with exit code %d", outcome.ExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Only run tests matching this pytest expression")
	cmd.Flags().StringVarP(&groupName, "group", "g", "", "Group whose virtual environment to use")
	cmd.RegisterFlagCompletionFunc("group", completeGroups)
	cmd.ValidArgsFunction = completeRepos

	return cmd
}
