package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage the dbx configuration",
		GroupID: GroupConfig,
	}
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigEditCmd())
	configCmd.AddCommand(newConfigShowCmd())
	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		baseDir string
	)

	c := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		Example: `  dbx config init
  dbx config init --base-dir ~/work
  dbx config init --force`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.Init(path, baseDir, force); err != nil {
				return err
			}
			log.FromContext(cobraCmd.Context()).Printf("Wrote %s\n", path)
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	c.Flags().StringVar(&baseDir, "base-dir", "", "Base directory to write into the config")

	return c
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration in your editor",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()
			path, err := config.Path()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no config at %s (run 'dbx config init' first)", path)
			}

			editor := findEditor()
			if editor == "" {
				return fmt.Errorf("no editor found: set $EDITOR")
			}
			return runEditor(ctx, editor, path)
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Long: `Print the effective configuration as TOML, including defaults for
anything the file does not set. On a terminal the output is paged
through less.`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()
			out := output.FromContext(ctx)

			if isatty.IsTerminal(os.Stdout.Fd()) {
				if _, err := exec.LookPath("less"); err == nil {
					return showPaged(cobraCmd, cfg)
				}
			}
			return toml.NewEncoder(out.Writer()).Encode(cfg)
		},
	}
}

// showPaged renders the config through "less -R".
func showPaged(cobraCmd *cobra.Command, c *config.Config) error {
	pager := exec.CommandContext(cobraCmd.Context(), "less", "-R")
	pipe, err := pager.StdinPipe()
	if err != nil {
		return err
	}
	pager.Stdout = os.Stdout
	pager.Stderr = os.Stderr

	if err := pager.Start(); err != nil {
		return err
	}
	encodeErr := toml.NewEncoder(pipe).Encode(c)
	pipe.Close()
	if err := pager.Wait(); err != nil {
		return err
	}
	return encodeErr
}
