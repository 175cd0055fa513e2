package main

import (
	"fmt"

	"github.com/mark3labs/clocktail/internal/shell"
	"github.com/mark3labs/clocktail/internal/theme"
	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next task to work on",
	Long: `Print the next task to work on and exit.

Snoozed tasks whose time has passed are woken and saved.`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	t, err := a.store.NextTask()
	if err != nil {
		return err
	}

	out := output(cmd.OutOrStdout())
	if t == nil {
		_, err = fmt.Fprintln(out, theme.Current().S().Hint.Render("Nothing to work on right now."))
		return err
	}
	_, err = fmt.Fprint(out, shell.RenderTask(a.store.ProjectOf(t), t))
	return err
}
