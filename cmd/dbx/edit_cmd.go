package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
)

func newEditCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:     "edit <repo>",
		Short:   "Open a repository in your editor",
		GroupID: GroupRepo,
		Args:    cobra.MaximumNArgs(1),
		Long: `Open a cloned repository in $EDITOR, falling back to vim, nano or vi
when the variable is not set.`,
		Example: `  dbx edit billing-api
  dbx edit --list`,
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

			editor := findEditor()
			if editor == "" {
				return fmt.Errorf("no editor found: set $EDITOR")
			}
			log.FromContext(ctx).Printf("Opening %s in %s...\n", r.Name, editor)
			return runEditor(ctx, editor, r.Path)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List editable repositories")
	cmd.ValidArgsFunction = completeRepos

	return cmd
}
