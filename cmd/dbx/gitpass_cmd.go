package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/dispatch"
	"github.com/dbxdev/dbx/internal/git"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/output"
	"github.com/dbxdev/dbx/internal/project"
	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/styles"
)

// gitPassthrough describes one git subcommand exposed directly by dbx.
type gitPassthrough struct {
	name  string
	short string
}

var gitPassthroughs = []gitPassthrough{
	{"branch", "Run git branch in repositories"},
	{"fetch", "Run git fetch in repositories"},
	{"switch", "Run git switch in repositories"},
	{"status", "Run git status in repositories"},
	{"log", "Run git log in repositories"},
	{"remote", "Run git remote in repositories"},
	{"pull", "Run git pull in repositories"},
	{"reset", "Run git reset in repositories"},
}

// gitTarget is one directory a passthrough command runs in.
type gitTarget struct {
	name string
	dir  string
}

func newGitPassthroughCmd(g gitPassthrough) *cobra.Command {
	var (
		groupName   string
		projectName string
		list        bool
	)

	cmd := &cobra.Command{
		Use:     g.name + " [repo] [git-args...]",
		Short:   g.short,
		GroupID: GroupGit,
		Args:    cobra.ArbitraryArgs,
		Long: fmt.Sprintf(`Run git %s in a repository, in every cloned repository of a
group (-g), or in a scaffolded project (-p). Remaining arguments are
passed to git unchanged.`, g.name),
		Example: fmt.Sprintf(`  dbx %[1]s billing-api
  dbx %[1]s -g billing
  dbx %[1]s -p brave_otter
  dbx %[1]s --list`, g.name),
		// Pass unknown flags like -v or --all through to git.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if list {
				for _, t := range allGitTargets() {
					out.Println(t.name)
				}
				return nil
			}

			targets, gitArgs, err := resolveGitTargets(groupName, projectName, args)
			if err != nil {
				return err
			}
			return runGitPassthrough(ctx, g.name, targets, gitArgs)
		},
	}

	cmd.Flags().StringVarP(&groupName, "group", "g", "", "Run in every cloned repository of this group")
	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Run in a scaffolded project")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List possible targets")
	cmd.RegisterFlagCompletionFunc("group", completeGroups)
	cmd.RegisterFlagCompletionFunc("project", completeProjects)
	cmd.ValidArgsFunction = completeRepos

	return cmd
}

// resolveGitTargets turns the flags and leading repo argument into the
// directories to run in plus the arguments forwarded to git.
func resolveGitTargets(groupName, projectName string, args []string) ([]gitTarget, []string, error) {
	switch {
	case groupName != "" && projectName != "":
		return nil, nil, fmt.Errorf("-g and -p are mutually exclusive")

	case groupName != "":
		if _, err := requireGroup(groupName); err != nil {
			return nil, nil, err
		}
		var targets []gitTarget
		for _, r := range repos.ForGroup(cfg, groupName) {
			if r.Cloned() {
				targets = append(targets, gitTarget{name: r.Name, dir: r.Path})
			}
		}
		if len(targets) == 0 {
			return nil, nil, fmt.Errorf("group %q has no cloned repositories", groupName)
		}
		return targets, args, nil

	case projectName != "":
		p, err := project.Find(cfg, projectName)
		if err != nil {
			return nil, nil, err
		}
		return []gitTarget{{name: p.Name, dir: p.Path}}, args, nil

	default:
		if len(args) == 0 {
			return nil, nil, fmt.Errorf("repository name required (or -g <group>, -p <project>, --list)")
		}
		r, err := repos.Find(cfg, args[0])
		if err != nil {
			return nil, nil, err
		}
		if !r.Cloned() {
			return nil, nil, fmt.Errorf("%s is not cloned", r.Name)
		}
		return []gitTarget{{name: r.Name, dir: r.Path}}, args[1:], nil
	}
}

// runGitPassthrough runs the git subcommand in every target, in order.
// Non-git directories are skipped with a warning; a failing target never
// stops the rest.
func runGitPassthrough(ctx context.Context, subcommand string, targets []gitTarget, args []string) error {
	logger := log.FromContext(ctx)
	out := output.FromContext(ctx)
	runner := &dispatch.Runner{Stream: true}

	failed := 0
	for _, t := range targets {
		if !git.IsRepo(t.dir) {
			logger.Warnf("%s is not a git repository, skipping\n", t.name)
			continue
		}
		if len(targets) > 1 {
			out.Println(styles.GroupHeader.Render(t.name))
		}
		argv := append([]string{"git", "-C", t.dir, subcommand}, args...)
		outcome, err := runner.RunTool(ctx, dispatch.Command{Argv: argv})
		if err != nil {
			logger.Warnf("%s: %v\n", t.name, err)
			failed++
			continue
		}
		if !outcome.Succeeded() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("git %s failed in %d of %d repositories", subcommand, failed, len(targets))
	}
	return nil
}

// allGitTargets lists every cloned repository and project.
func allGitTargets() []gitTarget {
	var targets []gitTarget
	for _, r := range repos.All(cfg) {
		if r.Cloned() {
			targets = append(targets, gitTarget{name: r.Name, dir: r.Path})
		}
	}
	for _, p := range project.List(cfg) {
		targets = append(targets, gitTarget{name: p.Name, dir: p.Path})
	}
	return targets
}
