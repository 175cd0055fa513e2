package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/fang"
	"github.com/mark3labs/clocktail/internal/editor"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/shell"
	"github.com/mark3labs/clocktail/internal/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █   █▀█ █▀▀ █▄▀ ▀█▀ ▄▀█ █ █  "
	logoText2 = "█▄▄ █▄▄ █▄█ █▄▄ █ █  █  █▀█ █ █▄▄"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	dataFile string
}

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clocktail",
	Short: "Rotate through your projects one task at a time",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

clocktail keeps projects and their tasks in a local JSON file and shows
one task at a time, rotating fairly across projects. Tasks can be marked
done or snoozed; snoozed tasks come back once their time has passed.

Run without a subcommand for the interactive menu.`

	rootCmd.PersistentFlags().StringVarP(&rootFlags.dataFile, "data-file", "f", "", "Task file (default: tasks.json next to the executable)")

	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setupCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	sh := shell.New(a.store, cmd.InOrStdin(), cmd.OutOrStdout(), editor.NewExternal(), shell.Options{
		ClearScreen: a.cfg.ClearScreen,
		Profile:     colorprofile.Detect(cmd.OutOrStdout(), os.Environ()),
	})
	return sh.Run(cmd.Context())
}
