// Package scheduler decides which task to present next.
//
// The Scheduler is a cursor over the running projects (projects that are
// not done) and their tasks, in stored order. Each call to Next produces at
// most one task and leaves the cursor just past it, so consecutive calls
// rotate through every actionable task before any task repeats.
package scheduler

import (
	"time"

	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/model"
)

// Cursor is the scheduler's position, exposed for inspection.
type Cursor struct {
	// Active is true while a pass is in progress.
	Active bool
	// Project indexes the running-projects snapshot.
	Project int
	// Task is the index of the next task to inspect within Project.
	Task int
	// SnapshotLen is the number of running projects when the cursor was last valid.
	SnapshotLen int
}

// Result is the outcome of one Next call.
type Result struct {
	// Task is the task to act on, or nil when nothing is actionable.
	Task *model.Task
	// Project owns Task.
	Project *model.Project
	// Woke is set when Task was waiting and Next moved it to running.
	// The caller must persist.
	Woke bool
}

// Scheduler holds rotation state between calls. The zero value is ready to use.
type Scheduler struct {
	cur Cursor
}

// New returns an idle scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Cursor returns the current position.
func (s *Scheduler) Cursor() Cursor {
	return s.cur
}

// Reset drops the current pass; the next call starts from the first running project.
func (s *Scheduler) Reset() {
	s.cur = Cursor{}
}

// Next advances to the next actionable task.
//
// A waiting task whose snooze has elapsed at now is woken in place and
// reported with Woke set. When no running project holds an actionable task
// at the start of a pass, Next returns an empty Result; callers simply ask
// again later.
func (s *Scheduler) Next(projects []*model.Project, now time.Time) Result {
	running := model.Running(projects)

	if s.cur.Active && len(running) != s.cur.SnapshotLen {
		logger.Debug("Running projects changed (%d -> %d), restarting pass", s.cur.SnapshotLen, len(running))
		s.Reset()
	}

	passes := 0
	for {
		if !s.cur.Active {
			// A fresh pass that found nothing means nothing is left to find.
			if passes > 0 || !hasActionable(running, now) {
				s.Reset()
				return Result{}
			}
			passes++
			s.cur = Cursor{Active: true, SnapshotLen: len(running)}
		}

		if s.cur.Project >= len(running) {
			s.cur.Active = false
			continue
		}

		p := running[s.cur.Project]
		if s.cur.Task >= len(p.Tasks) {
			s.cur.Project++
			s.cur.Task = 0
			continue
		}

		t := p.Tasks[s.cur.Task]
		s.cur.Task++

		switch {
		case t.SnoozeElapsed(now):
			t.Wake()
			logger.Info("Woke task %q in project %q", t.Name, p.Name)
			return Result{Task: t, Project: p, Woke: true}
		case t.Status == model.StatusRunning:
			return Result{Task: t, Project: p}
		}
	}
}

// hasActionable reports whether any running project has a task that is
// running or ready to wake. It does not mutate anything.
func hasActionable(running []*model.Project, now time.Time) bool {
	for _, p := range running {
		for _, t := range p.Tasks {
			if t.Actionable(now) {
				return true
			}
		}
	}
	return false
}
