package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/clocktail/internal/model"
	"github.com/mark3labs/clocktail/internal/store"
	"github.com/spf13/cobra"
)

var addFlags struct {
	project     string
	name        string
	description string
	create      bool
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task to a project",
	Long: `Add a running task to a project without opening the menu.

The project is given by its number in 'clocktail list', its exact name,
or its name as a slug (e.g. home-chores). With --create a project that
does not exist yet is created.`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addFlags.project, "project", "p", "", "Project number, name, or slug")
	addCmd.Flags().StringVarP(&addFlags.name, "name", "n", "", "Task name")
	addCmd.Flags().StringVarP(&addFlags.description, "description", "d", "", "Task description")
	addCmd.Flags().BoolVarP(&addFlags.create, "create", "c", false, "Create the project if it does not exist")
	_ = addCmd.MarkFlagRequired("project")
	_ = addCmd.MarkFlagRequired("name")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	p, err := resolveProject(a.store, addFlags.project, addFlags.create)
	if err != nil {
		return err
	}

	t, err := a.store.AddTask(p, addFlags.name, addFlags.description)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added task %q to project %q\n", t.Name, p.Name)
	return nil
}

func resolveProject(s *store.Store, ref string, create bool) (*model.Project, error) {
	ref = strings.TrimSpace(ref)
	p, err := s.FindProject(ref)
	if err == nil {
		return p, nil
	}
	if !create || !store.IsNotFound(err) {
		return nil, err
	}
	return s.AddProject(ref, "")
}
