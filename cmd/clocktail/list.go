package main

import (
	"fmt"

	"github.com/mark3labs/clocktail/internal/shell"
	"github.com/spf13/cobra"
)

var listFlags struct {
	all bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and their tasks",
	Long: `List running projects and their tasks, with snooze deadlines.

Use --all to include completed projects that are still retained.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listFlags.all, "all", "a", false, "Include completed projects")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	projects := a.store.RunningProjects()
	if listFlags.all {
		projects = a.store.Projects()
	}
	_, err = fmt.Fprint(output(cmd.OutOrStdout()), shell.RenderList(projects))
	return err
}
