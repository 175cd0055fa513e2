package shell

import (
	"fmt"
	"strings"
	"time"

	"charm.land/glamour/v2"
	"github.com/mark3labs/clocktail/internal/model"
	"github.com/mark3labs/clocktail/internal/theme"
)

const ruleWidth = 80

// SnoozeLayout formats snooze deadlines for display.
const SnoozeLayout = "2006-01-02 15:04"

// renderDescription renders a description as markdown wrapped to the rule
// width. Falls back to the plain description style if glamour fails.
func renderDescription(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(ruleWidth),
	)
	if err != nil {
		return theme.Current().S().Description.Render(text)
	}
	rendered, err := r.Render(text)
	if err != nil {
		return theme.Current().S().Description.Render(text)
	}
	return strings.Trim(rendered, "\n")
}

// RenderProject renders a project header with a one-line summary per task.
func RenderProject(p *model.Project) string {
	s := theme.Current().S()
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", s.ProjectName.Render(p.Name))
	if p.Description != "" {
		b.WriteString(renderDescription(p.Description))
		b.WriteString("\n")
	}
	for _, t := range p.Tasks {
		fmt.Fprintf(&b, "  %s %s\n", s.Status(t.Status), t.Name)
	}
	return b.String()
}

// RenderTask renders a task with its project, framed by rules.
func RenderTask(p *model.Project, t *model.Task) string {
	s := theme.Current().S()
	rule := s.Rule.Render(strings.Repeat("=", ruleWidth)) + "\n"

	var b strings.Builder
	b.WriteString(rule)
	if p != nil {
		b.WriteString(RenderProject(p))
		b.WriteString(rule)
	}
	b.WriteString("Task:\n")
	fmt.Fprintf(&b, "%s %s%s\n", s.Status(t.Status), s.TaskName.Render(t.Name), snoozeInfo(t))
	if t.Description != "" {
		b.WriteString(renderDescription(t.Description))
		b.WriteString("\n")
	}
	b.WriteString(rule)
	return b.String()
}

// RenderList renders projects and their tasks, including snooze deadlines.
func RenderList(projects []*model.Project) string {
	s := theme.Current().S()
	if len(projects) == 0 {
		return s.Hint.Render("<No Projects>") + "\n"
	}
	var b strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&b, "Project: %s\n", s.ProjectName.Render(p.Name))
		for _, t := range p.Tasks {
			fmt.Fprintf(&b, "  %s %s%s\n", s.Status(t.Status), t.Name, snoozeInfo(t))
		}
	}
	return b.String()
}

func snoozeInfo(t *model.Task) string {
	if t.SnoozeUntil == nil {
		return ""
	}
	return theme.Current().S().Hint.Render(
		fmt.Sprintf(" (Snoozed until %s)", t.SnoozeUntil.In(time.Local).Format(SnoozeLayout)))
}
