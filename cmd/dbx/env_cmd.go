package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/cmd"
	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/ui/prompt"
	"github.com/dbxdev/dbx/internal/ui/static"
	"github.com/dbxdev/dbx/internal/venv"
)

func newEnvCmd() *cobra.Command {
	envCmd := &cobra.Command{
		Use:     "env",
		Short:   "Manage group virtual environments",
		GroupID: GroupEnv,
	}
	envCmd.AddCommand(newEnvInitCmd())
	envCmd.AddCommand(newEnvListCmd())
	return envCmd
}

func newEnvInitCmd() *cobra.Command {
	var (
		group   string
		version string
	)

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a group's virtual environment with uv",
		Args:  cobra.NoArgs,
		Long: `Create <base_dir>/<group>/.venv with uv venv. An existing
environment is only recreated after confirmation.`,
		Example: `  dbx env init -g billing
  dbx env init -g billing -p 3.12`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()
			if group == "" {
				return fmt.Errorf("group required (-g)")
			}
			if _, err := requireGroup(group); err != nil {
				return err
			}

			dir := groupDir(group)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating group directory: %w", err)
			}

			venvPath := filepath.Join(dir, ".venv")
			if _, err := os.Stat(venvPath); err == nil {
				result, err := prompt.Confirm(fmt.Sprintf("%s already exists, recreate it?", venvPath))
				if err != nil {
					return err
				}
				if !result.Confirmed || result.Cancelled {
					return fmt.Errorf("aborted")
				}
				if err := os.RemoveAll(venvPath); err != nil {
					return fmt.Errorf("removing old environment: %w", err)
				}
			}

			argv := []string{"uv", "venv", venvPath}
			if version == "" {
				version = cfg.Project.PythonVersion
			}
			if version != "" {
				argv = append(argv, "--python", version)
			}

			runner := &dispatch.Runner{BaseDir: cfg.ExpandedBaseDir(), Group: group, Stream: true}
			outcome, err := runner.RunTool(ctx, dispatch.Command{Argv: argv})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("uv venv exited with code %d", outcome.ExitCode)
			}
			log.FromContext(ctx).Printf("Created %s\n", venvPath)
			return nil
		},
	}

	c.Flags().StringVarP(&group, "group", "g", "", "Group to create the environment for")
	c.Flags().StringVarP(&version, "python", "p", "", "Python version to use, e.g. 3.12")
	c.RegisterFlagCompletionFunc("group", completeGroups)
	c.MarkFlagRequired("group")

	return c
}

func newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List group virtual environments",
		Args:  cobra.NoArgs,
		Long: `Show each group's virtual environment and its interpreter version.
Reading versions is a read-only operation, so a missing environment is
reported rather than fatal.`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()
			out := output.FromContext(ctx)

			logger := log.FromContext(ctx)
			var rows [][]string
			for _, group := range cfg.GroupNames() {
				env, err := venv.Resolve(venv.Context{GroupPath: groupDir(group)})
				if err != nil {
					// Listing is read-only, so the system interpreter is an
					// acceptable stand-in for a missing environment.
					sysEnv, sysErr := venv.System()
					if sysErr != nil {
						rows = append(rows, []string{group, "-", "not created"})
						continue
					}
					logger.Warnf("group %s has no virtual environment, showing the system interpreter\n", group)
					env = sysEnv
				}
				version, err := cmd.OutputContext(ctx, "", env.Interpreter, "--version")
				if err != nil {
					version = "unknown"
				}
				root := env.Root
				if root == "" {
					root = "(system)"
				}
				rows = append(rows, []string{group, root, version})
			}
			if len(rows) == 0 {
				out.Println("No groups configured.")
				return nil
			}
			out.Print(static.RenderTable([]string{"GROUP", "VENV", "PYTHON"}, rows))
			return nil
		},
	}
}
