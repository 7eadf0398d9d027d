package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbxdev/dbx/internal/project"
	"github.com/dbxdev/dbx/internal/repos"
)

// completeRepos completes configured repository names for the first
// positional argument.
func completeRepos(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, r := range repos.All(cfg) {
		if strings.HasPrefix(r.Name, toComplete) {
			names = append(names, r.Name+"\t"+r.Group)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeGroups completes group names for -g flags.
func completeGroups(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, name := range cfg.GroupNames() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeGroupArgs completes group names for positional arguments.
func completeGroupArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeGroups(cmd, args, toComplete)
}

// completeProjects completes scaffolded project names.
func completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, p := range project.List(cfg) {
		if strings.HasPrefix(p.Name, toComplete) {
			names = append(names, p.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
