// Package model holds the Project and Task entities and enforces their invariants.
// Nothing in this package performs I/O.
package model

import (
	"time"

	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/rs/xid"
)

// DefaultRetention is how long a fully completed project is kept before it
// is pruned from storage.
const DefaultRetention = 15 * 24 * time.Hour

// Status is the lifecycle state of a task.
type Status string

const (
	StatusRunning Status = "running"
	StatusWaiting Status = "waiting"
	StatusDone    Status = "done"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRunning, StatusWaiting, StatusDone:
		return Status(s), nil
	default:
		return "", ierr.NewValidation("status", s, "must be running, waiting, or done")
	}
}

// Task is a unit of work inside a project.
//
// SnoozeUntil is non-nil if and only if Status is StatusWaiting.
type Task struct {
	ID          string
	Name        string
	Description string
	Status      Status
	SnoozeUntil *time.Time

	// ProjectID is a lookup handle for the owning project. It never keeps
	// the project alive and is never serialized.
	ProjectID string
}

// NewTask creates a running task.
func NewTask(name, description string) *Task {
	return &Task{
		ID:          xid.New().String(),
		Name:        name,
		Description: description,
		Status:      StatusRunning,
	}
}

// Snooze defers the task until the given instant.
func (t *Task) Snooze(until time.Time) {
	t.Status = StatusWaiting
	t.SnoozeUntil = &until
}

// Wake clears the snooze and makes the task running again.
func (t *Task) Wake() {
	t.SnoozeUntil = nil
	t.Status = StatusRunning
}

// SnoozeElapsed reports whether the task is waiting and its deferral has passed.
func (t *Task) SnoozeElapsed(now time.Time) bool {
	return t.Status == StatusWaiting && t.SnoozeUntil != nil && !now.Before(*t.SnoozeUntil)
}

// Actionable reports whether the task can be presented at now, either
// because it is running or because its snooze has elapsed.
func (t *Task) Actionable(now time.Time) bool {
	return t.Status == StatusRunning || t.SnoozeElapsed(now)
}

// SetStatus moves the task to running or done. Waiting needs a deadline
// and must go through Snooze.
func (t *Task) SetStatus(status Status) error {
	switch status {
	case StatusRunning, StatusDone:
		t.Status = status
		t.SnoozeUntil = nil
		return nil
	case StatusWaiting:
		return ierr.NewValidation("status", string(status), "waiting requires a snooze deadline")
	default:
		return ierr.NewValidation("status", string(status), "must be running, waiting, or done")
	}
}

// Project groups tasks. Task order is insertion order and defines rotation order.
type Project struct {
	ID           string
	Name         string
	Description  string
	CreationTime time.Time
	Tasks        []*Task
}

// NewProject creates an empty project created at the given time.
func NewProject(name, description string, created time.Time) *Project {
	return &Project{
		ID:           xid.New().String(),
		Name:         name,
		Description:  description,
		CreationTime: created,
	}
}

// AddTask appends a task and points its back-reference at this project.
func (p *Project) AddTask(t *Task) {
	t.ProjectID = p.ID
	p.Tasks = append(p.Tasks, t)
}

// TaskIndex returns the position of the task with the given ID, or -1.
func (p *Project) TaskIndex(id string) int {
	for i, t := range p.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// IsDone is true when every task is done. A project without tasks is done.
func (p *Project) IsDone() bool {
	for _, t := range p.Tasks {
		if t.Status != StatusDone {
			return false
		}
	}
	return true
}

// CanBeDeleted reports whether the project is done and older than retention.
func (p *Project) CanBeDeleted(now time.Time, retention time.Duration) bool {
	return p.IsDone() && now.Sub(p.CreationTime) > retention
}

// Running filters projects down to those that are not done, preserving order.
func Running(projects []*Project) []*Project {
	running := make([]*Project, 0, len(projects))
	for _, p := range projects {
		if !p.IsDone() {
			running = append(running, p)
		}
	}
	return running
}
