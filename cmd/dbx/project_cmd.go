package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/project"
	"github.com/dbxdev/dbx/internal/ui/prompt"
	"github.com/dbxdev/dbx/internal/ui/static"
	"github.com/dbxdev/dbx/internal/venv"
)

func newProjectCmd() *cobra.Command {
	var list bool

	projectCmd := &cobra.Command{
		Use:     "project",
		Short:   "Scaffold and run Django projects",
		GroupID: GroupProject,
		Long: `Manage Django projects under <base_dir>/projects. When a command
takes an optional project name, the most recently modified project is
the default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list {
				return cmd.Help()
			}
			out := output.FromContext(cmd.Context())
			projects := project.List(cfg)
			if len(projects) == 0 {
				out.Println("No projects found.")
				return nil
			}
			var rows [][]string
			for _, p := range projects {
				frontend := "-"
				if p.HasFrontend() {
					frontend = "npm"
				}
				rows = append(rows, []string{p.Name, p.Path, frontend})
			}
			out.Print(static.RenderTable([]string{"PROJECT", "PATH", "FRONTEND"}, rows))
			return nil
		},
	}

	projectCmd.Flags().BoolVarP(&list, "list", "l", false, "List scaffolded projects")

	projectCmd.AddCommand(newProjectAddCmd())
	projectCmd.AddCommand(newProjectRemoveCmd())
	projectCmd.AddCommand(newProjectRunCmd())
	projectCmd.AddCommand(newProjectManageCmd())
	projectCmd.AddCommand(newProjectSuCmd())
	projectCmd.AddCommand(newProjectOpenCmd())

	return projectCmd
}

// projectRunner builds the dispatch runner used for project commands.
func projectRunner(stream bool) *dispatch.Runner {
	return &dispatch.Runner{BaseDir: cfg.ExpandedBaseDir(), Stream: stream}
}

// resolveProjectEnv resolves the project's own virtual environment.
func resolveProjectEnv(p project.Project) (venv.Environment, error) {
	env, err := venv.Resolve(venv.Context{
		RepoPath:  p.Path,
		BaseDir:   cfg.ExpandedBaseDir(),
		Activated: venv.ActivatedFromEnv(),
	})
	if err != nil {
		return venv.Environment{}, fmt.Errorf("resolving environment for project %s: %w", p.Name, err)
	}
	return env, nil
}

// projectEnv builds the full environment for Django management commands.
func projectEnv(p project.Project, settingsModule string) map[string]string {
	env := p.DjangoEnv(settingsModule)
	project.ApplyDefaultEnv(env, cfg.Project.DefaultEnv)
	return env
}

func newProjectAddCmd() *cobra.Command {
	var (
		random     bool
		noFrontend bool
		noInstall  bool
	)

	c := &cobra.Command{
		Use:   "add [name]",
		Short: "Scaffold a new Django project",
		Args:  cobra.MaximumNArgs(1),
		Long: `Create a Django project from the bundled template, generate its
pyproject.toml, create a virtual environment with uv and install the
project editable.`,
		Example: `  dbx project add myproject
  dbx project add --random
  dbx project add myproject --no-install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			var name string
			switch {
			case len(args) == 1:
				name = args[0]
			case random:
				name = project.RandomName()
			default:
				return fmt.Errorf("project name required (or --random)")
			}

			runner := projectRunner(true)
			p, err := project.Scaffold(ctx, runner, cfg, name)
			if err != nil {
				return err
			}
			logger.Printf("Created project %s at %s\n", p.Name, p.Path)

			if noInstall {
				return nil
			}

			outcome, err := runner.RunTool(ctx, dispatch.Command{
				Argv: []string{"uv", "venv", ".venv"},
				Dir:  p.Path,
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("uv venv exited with code %d", outcome.ExitCode)
			}

			env, err := resolveProjectEnv(p)
			if err != nil {
				return err
			}
			outcome, err = runner.RunTool(ctx, dispatch.Command{
				Argv: []string{"uv", "pip", "install", "--python", env.Interpreter, "-e", ".[test]"},
				Dir:  p.Path,
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("installing %s failed with exit code %d", p.Name, outcome.ExitCode)
			}

			if !noFrontend && p.HasFrontend() {
				if err := npmInstall(ctx, p); err != nil {
					logger.Warnf("frontend install failed: %v\n", err)
				}
			}
			return nil
		},
	}

	c.Flags().BoolVarP(&random, "random", "r", false, "Use a generated adjective_noun name")
	c.Flags().BoolVar(&noFrontend, "no-frontend", false, "Skip installing frontend dependencies")
	c.Flags().BoolVar(&noInstall, "no-install", false, "Skip creating a venv and installing the project")

	return c
}

func newProjectRemoveCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "remove [name]",
		Short: "Delete a scaffolded project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			p, err := project.Find(cfg, name)
			if err != nil {
				return err
			}

			if !force {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return fmt.Errorf("refusing to remove %s without confirmation (use --force)", p.Path)
				}
				result, err := prompt.Confirm(fmt.Sprintf("Remove project %s?", p.Name))
				if err != nil {
					return err
				}
				if !result.Confirmed || result.Cancelled {
					return fmt.Errorf("aborted")
				}
			}
			if err := os.RemoveAll(p.Path); err != nil {
				return fmt.Errorf("removing %s: %w", p.Path, err)
			}
			log.FromContext(ctx).Printf("Removed %s\n", p.Path)
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	c.ValidArgsFunction = completeProjects

	return c
}

func newProjectRunCmd() *cobra.Command {
	var (
		host     string
		port     int
		settings string
	)

	c := &cobra.Command{
		Use:   "run [name]",
		Short: "Run a project's Django development server",
		Args:  cobra.MaximumNArgs(1),
		Long: `Run manage.py runserver with the project's resolved interpreter and
Django environment. A project with an npm frontend gets "npm run watch"
started alongside; both stop together on interrupt.`,
		Example: `  dbx project run
  dbx project run myproject --port 9000
  dbx project run myproject -s test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			p, err := project.Find(cfg, name)
			if err != nil {
				return err
			}
			env, err := resolveProjectEnv(p)
			if err != nil {
				return err
			}

			if p.HasFrontend() {
				stop, err := startFrontend(ctx, p)
				if err != nil {
					logger.Warnf("could not start the frontend watcher: %v\n", err)
				} else {
					defer stop()
				}
			}

			logger.Printf("Running %s on http://%s:%d\n", p.Name, host, port)
			outcome, err := projectRunner(true).Run(ctx, env, dispatch.Command{
				Argv: []string{"manage.py", "runserver", fmt.Sprintf("%s:%d", host, port)},
				Dir:  p.Path,
				Env:  projectEnv(p, settings),
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("runserver exited with code %d", outcome.ExitCode)
			}
			return nil
		},
	}

	c.Flags().StringVar(&host, "host", "localhost", "Host to bind")
	c.Flags().IntVar(&port, "port", 8000, "Port to bind")
	c.Flags().StringVarP(&settings, "settings", "s", "", "Settings module under <name>.settings (default: the project name)")
	c.ValidArgsFunction = completeProjects

	return c
}

func newProjectManageCmd() *cobra.Command {
	var settings string

	c := &cobra.Command{
		Use:   "manage [name] [command] [args...]",
		Short: "Run a manage.py command in a project",
		Args:  cobra.MinimumNArgs(1),
		Example: `  dbx project manage myproject migrate
  dbx project manage myproject shell`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// The first argument is a project name when it matches one,
			// otherwise everything goes to manage.py of the newest project.
			name := ""
			manageArgs := args
			if p, err := project.Find(cfg, args[0]); err == nil {
				name, manageArgs = p.Name, args[1:]
			}
			p, err := project.Find(cfg, name)
			if err != nil {
				return err
			}
			env, err := resolveProjectEnv(p)
			if err != nil {
				return err
			}

			outcome, err := projectRunner(true).Run(ctx, env, dispatch.Command{
				Argv: append([]string{"manage.py"}, manageArgs...),
				Dir:  p.Path,
				Env:  projectEnv(p, settings),
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("manage.py exited with code %d", outcome.ExitCode)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&settings, "settings", "s", "", "Settings module under <name>.settings")
	c.ValidArgsFunction = completeProjects

	return c
}

func newProjectSuCmd() *cobra.Command {
	var (
		user     string
		password string
		email    string
	)

	c := &cobra.Command{
		Use:   "su [name]",
		Short: "Create a Django superuser non-interactively",
		Args:  cobra.MaximumNArgs(1),
		Example: `  dbx project su
  dbx project su myproject -u alice -p secret -e alice@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			p, err := project.Find(cfg, name)
			if err != nil {
				return err
			}
			env, err := resolveProjectEnv(p)
			if err != nil {
				return err
			}

			extraEnv := projectEnv(p, "")
			extraEnv["DJANGO_SUPERUSER_USERNAME"] = user
			extraEnv["DJANGO_SUPERUSER_PASSWORD"] = password
			extraEnv["DJANGO_SUPERUSER_EMAIL"] = email

			outcome, err := projectRunner(true).Run(ctx, env, dispatch.Command{
				Argv: []string{"manage.py", "createsuperuser", "--noinput"},
				Dir:  p.Path,
				Env:  extraEnv,
			})
			if err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return fmt.Errorf("createsuperuser exited with code %d", outcome.ExitCode)
			}
			log.FromContext(ctx).Printf("Created superuser %s\n", user)
			return nil
		},
	}

	c.Flags().StringVarP(&user, "user", "u", "admin", "Superuser name")
	c.Flags().StringVarP(&password, "password", "p", "admin", "Superuser password")
	c.Flags().StringVarP(&email, "email", "e", "admin@example.com", "Superuser email")
	c.ValidArgsFunction = completeProjects

	return c
}

func newProjectOpenCmd() *cobra.Command {
	var (
		host string
		port int
	)

	c := &cobra.Command{
		Use:   "open",
		Short: "Open the development server in a browser",
		Args:  cobra.NoArgs,
		Example: `  dbx project open
  dbx project open --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return openBrowser(cmd.Context(), fmt.Sprintf("http://%s:%d", host, port))
		},
	}

	c.Flags().StringVar(&host, "host", "localhost", "Host to open")
	c.Flags().IntVar(&port, "port", 8000, "Port to open")

	return c
}

// npmInstall installs the project's frontend dependencies.
func npmInstall(ctx context.Context, p project.Project) error {
	outcome, err := projectRunner(true).RunTool(ctx, dispatch.Command{
		Argv: []string{"npm", "install"},
		Dir:  p.FrontendPath(),
	})
	if err != nil {
		return err
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("npm install exited with code %d", outcome.ExitCode)
	}
	return nil
}

// startFrontend starts "npm run watch" in the background. The returned stop
// function terminates it; context cancellation does too.
func startFrontend(ctx context.Context, p project.Project) (func(), error) {
	log.FromContext(ctx).Printf("Starting frontend watcher...\n")
	child := exec.CommandContext(ctx, "npm", "run", "watch")
	child.Dir = p.FrontendPath()
	child.Stdout = os.Stderr
	child.Stderr = os.Stderr
	if err := child.Start(); err != nil {
		return nil, err
	}
	return func() {
		if child.Process != nil {
			_ = child.Process.Kill()
		}
		_ = child.Wait()
	}, nil
}
