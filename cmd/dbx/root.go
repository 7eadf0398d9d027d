package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/git"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/static"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg *config.Config
)

// Command group IDs for organizing help output
const (
	GroupRepo    = "repo"
	GroupEnv     = "env"
	GroupGit     = "git"
	GroupProject = "project"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbx",
	Short: "Developer workflow tool for grouped repositories",
	Long: `dbx manages clones of related repositories in groups, their shared
virtual environments, dependency installation, test runs and light
Django project scaffolding.

Repositories live at <base_dir>/<group>/<repo>; scaffolded projects
live under <base_dir>/projects.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		// Flags are parsed by now, so the logger can pick them up.
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet)))
		return git.CheckInstalled()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		if !list {
			return cmd.Help()
		}
		out := output.FromContext(cmd.Context())
		out.Print(static.RenderStatusTree(repos.List(cfg)))
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	path, err := config.Path()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbx: %v\n", err)
		os.Exit(1)
	}
	cfg, err = config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbx: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, verbose, quiet)
	ctx = log.WithLogger(ctx, logger)
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'dbx -h' for help")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Flags().BoolP("list", "l", false, "List all repositories and their status")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRepo, Title: "Repository Commands:"},
		&cobra.Group{ID: GroupEnv, Title: "Environment Commands:"},
		&cobra.Group{ID: GroupGit, Title: "Git Commands:"},
		&cobra.Group{ID: GroupProject, Title: "Project Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Repository commands
	rootCmd.AddCommand(newCloneCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newOpenCmd())

	// Environment commands
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newJustCmd())
	rootCmd.AddCommand(newEnvCmd())

	// Git passthroughs
	for _, g := range gitPassthroughs {
		rootCmd.AddCommand(newGitPassthroughCmd(g))
	}

	// Project commands
	rootCmd.AddCommand(newProjectCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
