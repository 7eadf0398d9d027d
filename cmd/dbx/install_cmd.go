package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
)

func newInstallCmd() *cobra.Command {
	var (
		list    bool
		extras  string
		depGrps string
	)

	cmd := &cobra.Command{
		Use:     "install <repo>",
		Short:   "Install a repository's dependencies with uv",
		GroupID: GroupEnv,
		Args:    cobra.MaximumNArgs(1),
		Long: `Install a repository editable into its resolved virtual environment
using uv pip install.

Configured build_commands run first. Each configured install_dir is
installed in order; a failing directory does not stop the rest.
Installation requires a resolved virtual environment and never falls
back to the system interpreter.`,
		Example: `  dbx install billing-api
  dbx install billing-api -e test,aws
  dbx install billing-api --groups dev,test
  dbx install --list`,
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
			if len(args) == 0 {
				return fmt.Errorf("repository name required (or --list)")
			}

			r, err := repos.Find(cfg, args[0])
			if err != nil {
				return err
			}
			if !r.Cloned() {
				return fmt.Errorf("%s is not cloned (run 'dbx clone %s' first)", r.Name, r.Name)
			}

			env, err := resolveEnv(ctx, r)
			if err != nil {
				return err
			}
			group := cfg.Groups[r.Group]

			spec := "."
			if extras != "" {
				spec = fmt.Sprintf(".[%s]", strings.Join(splitList(extras), ","))
			}

			var units []dispatch.Unit
			for _, build := range group.BuildCommandsFor(r.Name) {
				argv := splitCommand(build)
				if len(argv) == 0 {
					continue
				}
				units = append(units, dispatch.Unit{
					Name:    "build: " + build,
					Tool:    true,
					Command: dispatch.Command{Argv: argv, Dir: r.Path},
				})
			}

			for _, dir := range group.InstallDirsFor(r.Name) {
				units = append(units, dispatch.Unit{
					Name: "install " + filepath.Join(r.Name, dir),
					Tool: true,
					Command: dispatch.Command{
						Argv: []string{"uv", "pip", "install", "--python", env.Interpreter, "-e", spec},
						Dir:  filepath.Join(r.Path, dir),
					},
				})
			}

			dependencyGroups := splitList(depGrps)
			if len(dependencyGroups) == 0 {
				dependencyGroups = group.DependencyGroups
			}
			for _, g := range dependencyGroups {
				units = append(units, dispatch.Unit{
					Name: "group " + g,
					Tool: true,
					Command: dispatch.Command{
						Argv: []string{"uv", "pip", "install", "--python", env.Interpreter, "--group", g},
						Dir:  r.Path,
					},
				})
			}

			runner := &dispatch.Runner{
				BaseDir: cfg.ExpandedBaseDir(),
				Group:   r.Group,
				Stream:  true,
			}
			results, ok := runner.RunBatch(ctx, env, units)
			reportResults(ctx, results)
			if !ok {
				return fmt.Errorf("installation of %s failed", r.Name)
			}
			log.FromContext(ctx).Printf("Installed %s into the %s environment\n", r.Name, env.Kind)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List installable repositories")
	cmd.Flags().StringVarP(&extras, "extras", "e", "", "Comma-separated extras, e.g. 'test,aws'")
	cmd.Flags().StringVarP(&depGrps, "groups", "g", "", "Comma-separated dependency groups to install")
	cmd.ValidArgsFunction = completeRepos

	return cmd
}
