package main

import (
	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/static"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List repositories grouped by status",
		Aliases: []string{"ls"},
		GroupID: GroupRepo,
		Args:    cobra.NoArgs,
		Long: `List every group with its repositories.

Markers: ✓ cloned, ○ configured but not cloned, ? present on disk but
not configured. Repositories of global groups appear in every group.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			out.Print(static.RenderStatusTree(repos.List(cfg)))
			return nil
		},
	}
}
