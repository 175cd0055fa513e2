// Package editor runs the operator's $EDITOR on a seed text and returns the
// edited result.
package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/clocktail/internal/logger"
)

// Editor edits long-form text, blocking until the session ends.
type Editor interface {
	Edit(ctx context.Context, seed string) (string, error)
}

// CommandFunc builds the command that opens path in an editor.
type CommandFunc func(app, path string) (*exec.Cmd, error)

// External launches $VISUAL/$EDITOR through charmbracelet/x/editor.
type External struct {
	App    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Command overrides how the editor process is built. Nil uses editor.Command.
	Command CommandFunc
}

// NewExternal returns an editor attached to the process's terminal.
func NewExternal() *External {
	return &External{
		App:    "clocktail",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Edit writes seed to a temp file, opens it in the editor, and returns the
// file's content once the editor exits.
func (e *External) Edit(ctx context.Context, seed string) (string, error) {
	tmpfile, err := os.CreateTemp("", "clocktail_*.txt")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := tmpfile.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := tmpfile.WriteString(seed); err != nil {
		_ = tmpfile.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	build := e.Command
	if build == nil {
		build = func(app, path string) (*exec.Cmd, error) {
			return editor.Command(app, path)
		}
	}
	cmd, err := build(e.App, path)
	if err != nil {
		return "", fmt.Errorf("building editor command: %w", err)
	}
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	logger.Debug("Launching editor: %s", cmd.String())
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting editor: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("editor exited: %w", err)
		}
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return "", ctx.Err()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading edited text: %w", err)
	}
	return string(content), nil
}
