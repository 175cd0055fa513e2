package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/clocktail/internal/model"
)

// Styles contains the pre-built lipgloss styles.
type Styles struct {
	Rule        lipgloss.Style
	ProjectName lipgloss.Style
	TaskName    lipgloss.Style
	Description lipgloss.Style
	Hint        lipgloss.Style
	Key         lipgloss.Style
	Error       lipgloss.Style

	StatusRunning lipgloss.Style
	StatusWaiting lipgloss.Style
	StatusDone    lipgloss.Style
}

// Status renders a task status as an upper-case tag, e.g. [RUNNING].
func (s *Styles) Status(status model.Status) string {
	tag := "[" + strings.ToUpper(string(status)) + "]"
	switch status {
	case model.StatusRunning:
		return s.StatusRunning.Render(tag)
	case model.StatusWaiting:
		return s.StatusWaiting.Render(tag)
	case model.StatusDone:
		return s.StatusDone.Render(tag)
	default:
		return tag
	}
}
