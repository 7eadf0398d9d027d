package main

import (
	"context"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/cmd"
	"github.com/dbxdev/dbx/internal/git"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
)

func newOpenCmd() *cobra.Command {
	var copyURL bool

	c := &cobra.Command{
		Use:     "open <repo>",
		Short:   "Open a repository's GitHub page",
		GroupID: GroupRepo,
		Args:    cobra.ExactArgs(1),
		Example: `  dbx open billing-api
  dbx open billing-api --copy`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()

			r, err := repos.Find(cfg, args[0])
			if err != nil {
				return err
			}
			url := git.WebURL(r.URL)

			if copyURL {
				if err := clipboard.WriteAll(url); err != nil {
					// Clipboard may be unavailable over SSH; print instead.
					log.FromContext(ctx).Warnf("could not copy to clipboard: %v\n", err)
					output.FromContext(ctx).Println(url)
					return nil
				}
				log.FromContext(ctx).Printf("Copied %s\n", url)
				return nil
			}
			return openBrowser(ctx, url)
		},
	}

	c.Flags().BoolVarP(&copyURL, "copy", "c", false, "Copy the URL instead of opening a browser")
	c.ValidArgsFunction = completeRepos

	return c
}

// openBrowser opens url with the platform's opener.
func openBrowser(ctx context.Context, url string) error {
	switch runtime.GOOS {
	case "darwin":
		return cmd.RunContext(ctx, "", "open", url)
	case "windows":
		return cmd.RunContext(ctx, "", "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return cmd.RunContext(ctx, "", "xdg-open", url)
	}
}
