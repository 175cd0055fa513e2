// Package shell implements the interactive menu: it shows the next task to
// work on, reads single-letter commands line by line and drives the store.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/clocktail/internal/editor"
	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/model"
	"github.com/mark3labs/clocktail/internal/store"
	"github.com/mark3labs/clocktail/internal/theme"
)

const clearSequence = "\033[H\033[2J"

// maxLine caps a single input line. Longer lines are discarded and the
// prompt repeats.
const maxLine = 64 * 1024

// errInputClosed ends the session when the input reaches EOF.
var errInputClosed = errors.New("input closed")

// Options configures a Shell.
type Options struct {
	// ClearScreen clears the terminal before each menu.
	ClearScreen bool
	// Profile is the color profile output is downsampled to.
	Profile colorprofile.Profile
}

// Shell is the interactive menu loop.
type Shell struct {
	store  *store.Store
	lines  *bufio.Reader
	out    io.Writer
	editor editor.Editor
	opts   Options

	current *model.Task
}

// New creates a shell reading commands from in and writing to out.
func New(s *store.Store, in io.Reader, out io.Writer, ed editor.Editor, opts Options) *Shell {
	return &Shell{
		store:  s,
		lines:  bufio.NewReader(in),
		out:    &colorprofile.Writer{Forward: out, Profile: opts.Profile},
		editor: ed,
		opts:   opts,
	}
}

// Run shows the menu until the operator exits or the input closes.
// Invalid input is reported and the prompt repeats. Malformed-document and
// I/O errors end the loop and are returned.
func (sh *Shell) Run(ctx context.Context) error {
	if err := sh.advance(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sh.drawMenu()
		choice, err := sh.readLine("Select an option: ")
		if err != nil {
			if !ierr.IsValidation(err) {
				return finish(err)
			}
			sh.printError(err)
			continue
		}

		exit, err := sh.dispatch(ctx, choice)
		if err != nil {
			if !recoverable(err) {
				return finish(err)
			}
			sh.printError(err)
			continue
		}
		if exit {
			return nil
		}
	}
}

func (sh *Shell) dispatch(ctx context.Context, choice string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(choice))
	logger.Debug("Menu choice %q", key)

	switch key {
	case "a":
		return false, sh.addTask(ctx)
	case "l":
		return false, sh.list()
	case "w":
		return false, sh.wake()
	case "x":
		return true, nil
	case "":
		return false, sh.advance()
	}

	if sh.current != nil {
		switch key {
		case "d":
			return false, sh.markDone()
		case "s":
			return false, sh.snooze()
		case "e":
			return false, sh.editTask(ctx)
		case "p":
			return false, sh.editProject(ctx)
		}
	}
	return false, ierr.NewValidation("choice", choice, "try again")
}

func (sh *Shell) drawMenu() {
	s := theme.Current().S()
	if sh.opts.ClearScreen {
		fmt.Fprint(sh.out, clearSequence)
	}
	if sh.current != nil {
		fmt.Fprint(sh.out, RenderTask(sh.store.ProjectOf(sh.current), sh.current))
	} else {
		fmt.Fprintln(sh.out, s.Hint.Render("Nothing to work on right now."))
	}

	fmt.Fprintln(sh.out, "--- Actions ---")
	item := func(key, label string) {
		fmt.Fprintf(sh.out, "%s - %s\n", s.Key.Render(key), label)
	}
	item("a", "Add Task")
	item("l", "List Projects and Tasks")
	if sh.current != nil {
		item("d", "Mark Task as done")
		item("s", "Snooze Task")
		item("e", "Edit Task")
		item("p", "Edit Project")
	}
	if len(sh.store.WaitingTasks()) > 0 {
		item("w", "Wake a snoozed Task")
	}
	item("x", "Exit")
	fmt.Fprintln(sh.out, s.Hint.Render("<enter> skips task"))
}

// advance moves to the next task in the rotation.
func (sh *Shell) advance() error {
	t, err := sh.store.NextTask()
	if err != nil {
		return err
	}
	sh.current = t
	return nil
}

func (sh *Shell) addTask(ctx context.Context) error {
	fmt.Fprintln(sh.out, "--- Add Task ---")
	fmt.Fprintln(sh.out, "Available Projects:")

	var project *model.Project
	running := sh.store.RunningProjects()
	if len(running) == 0 {
		fmt.Fprintln(sh.out, theme.Current().S().Hint.Render("<No Projects>"))
	} else {
		for i, p := range running {
			fmt.Fprintf(sh.out, "%d. %s\n", i+1, p.Name)
		}
		_, err := sh.ask("Select a project by number or press Enter to create a new project: ", func(line string) error {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			idx, err := ParseChoice(line, len(running))
			if err != nil {
				return err
			}
			project = running[idx]
			return nil
		})
		if err != nil {
			return err
		}
	}

	// A new project is only stored once the task is complete too.
	var projectName, projectDescription string
	if project == nil {
		var err error
		if projectName, err = sh.askName("New Project Name: "); err != nil {
			return err
		}
		if projectDescription, err = sh.edit(ctx, "Project Description:"); err != nil {
			return err
		}
	}

	name, err := sh.askName("Task Name: ")
	if err != nil {
		return err
	}
	description, err := sh.edit(ctx, "Task Description:")
	if err != nil {
		return err
	}

	if project == nil {
		if project, err = sh.store.AddProject(projectName, projectDescription); err != nil {
			return err
		}
	}
	if _, err := sh.store.AddTask(project, name, description); err != nil {
		return err
	}

	if sh.current == nil {
		return sh.advance()
	}
	return nil
}

func (sh *Shell) list() error {
	fmt.Fprint(sh.out, RenderList(sh.store.RunningProjects()))
	_, err := sh.readLine("Press Enter to continue...")
	return err
}

func (sh *Shell) markDone() error {
	if err := sh.store.MarkTask(sh.current, model.StatusDone); err != nil {
		return err
	}
	return sh.advance()
}

func (sh *Shell) snooze() error {
	var d time.Duration
	_, err := sh.ask("Duration to snooze (minutes, or e.g. 1h30m): ", func(line string) error {
		var err error
		d, err = ParseSnooze(line)
		return err
	})
	if err != nil {
		return err
	}
	if err := sh.store.SnoozeTask(sh.current, d); err != nil {
		return err
	}
	return sh.advance()
}

func (sh *Shell) editTask(ctx context.Context) error {
	t := sh.current
	name, err := sh.readLine("Task Name <enter=unchanged>: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		name = t.Name
	}
	description, err := sh.edit(ctx, t.Description)
	if err != nil {
		return err
	}
	return sh.store.EditTask(t, strings.TrimSpace(name), description)
}

func (sh *Shell) editProject(ctx context.Context) error {
	p := sh.store.ProjectOf(sh.current)
	if p == nil {
		return ierr.NewValidation("task", sh.current.Name, "has no project")
	}
	name, err := sh.readLine("Project Name <enter=unchanged>: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		name = p.Name
	}
	description, err := sh.edit(ctx, p.Description)
	if err != nil {
		return err
	}
	return sh.store.EditProject(p, strings.TrimSpace(name), description)
}

func (sh *Shell) wake() error {
	waiting := sh.store.WaitingTasks()
	if len(waiting) == 0 {
		fmt.Fprintln(sh.out, theme.Current().S().Hint.Render("No snoozed tasks."))
		return nil
	}

	fmt.Fprintln(sh.out, "--- Snoozed Tasks ---")
	for i, t := range waiting {
		project := ""
		if p := sh.store.ProjectOf(t); p != nil {
			project = p.Name + ": "
		}
		fmt.Fprintf(sh.out, "%d. %s%s%s\n", i+1, project, t.Name, snoozeInfo(t))
	}

	var chosen *model.Task
	_, err := sh.ask("Select a task to wake or press Enter to cancel: ", func(line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		idx, err := ParseChoice(line, len(waiting))
		if err != nil {
			return err
		}
		chosen = waiting[idx]
		return nil
	})
	if err != nil || chosen == nil {
		return err
	}

	if err := sh.store.WakeTask(chosen); err != nil {
		return err
	}
	if sh.current == nil {
		return sh.advance()
	}
	return nil
}

// ask prompts until accept takes the line. Validation errors are reported
// and the prompt repeats; any other error is returned.
func (sh *Shell) ask(prompt string, accept func(string) error) (string, error) {
	for {
		line, err := sh.readLine(prompt)
		if err == nil {
			err = accept(line)
		}
		if err != nil {
			if !ierr.IsValidation(err) {
				return "", err
			}
			sh.printError(err)
			continue
		}
		return line, nil
	}
}

func (sh *Shell) askName(prompt string) (string, error) {
	line, err := sh.ask(prompt, func(line string) error {
		if strings.TrimSpace(line) == "" {
			return ierr.NewValidation("name", "", "must not be empty")
		}
		return nil
	})
	return strings.TrimSpace(line), err
}

func (sh *Shell) edit(ctx context.Context, seed string) (string, error) {
	text, err := sh.editor.Edit(ctx, seed)
	if err != nil {
		return "", fmt.Errorf("editing description: %w", err)
	}
	return strings.TrimRight(text, "\r\n"), nil
}

func (sh *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(sh.out, prompt)
	var line []byte
	for {
		chunk, err := sh.lines.ReadSlice('\n')
		if len(line) <= maxLine {
			line = append(line, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				fmt.Fprintln(sh.out)
				return "", errInputClosed
			}
		} else if err != nil {
			return "", ierr.NewIO("read", "input", err)
		}
		break
	}

	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) > maxLine {
		return "", ierr.NewValidation("input", "", fmt.Sprintf("line longer than %d bytes", maxLine))
	}
	return string(line), nil
}

func (sh *Shell) printError(err error) {
	fmt.Fprintln(sh.out, theme.Current().S().Error.Render(err.Error()))
}

// recoverable reports whether the menu can carry on after err.
func recoverable(err error) bool {
	switch {
	case ierr.IsFatal(err),
		errors.Is(err, errInputClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func finish(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}
