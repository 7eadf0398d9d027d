package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/ui/prompt"
)

func newRemoveCmd() *cobra.Command {
	var (
		list  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:     "remove <group>",
		Short:   "Remove a group directory and all its clones",
		Aliases: []string{"rm"},
		GroupID: GroupRepo,
		Args:    cobra.MaximumNArgs(1),
		Long: `Delete <base_dir>/<group> including every clone and the group's
virtual environment. Asks for confirmation unless --force is given.`,
		Example: `  dbx remove billing
  dbx remove billing --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if list {
				for _, name := range cfg.GroupNames() {
					out.Println(name)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("group name required")
			}
			group := args[0]
			dir := groupDir(group)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("group directory %s does not exist", dir)
			}

			if !force {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return fmt.Errorf("refusing to remove %s without confirmation (use --force)", dir)
				}
				result, err := prompt.Confirm(fmt.Sprintf("Remove %s and everything in it?", dir))
				if err != nil {
					return err
				}
				if !result.Confirmed || result.Cancelled {
					return fmt.Errorf("aborted")
				}
			}

			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("removing %s: %w", dir, err)
			}
			log.FromContext(ctx).Printf("Removed %s\n", dir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List removable groups")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	cmd.ValidArgsFunction = completeGroupArgs

	return cmd
}
