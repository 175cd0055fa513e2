// Package store owns the project collection, applies every mutation through
// the model, and persists synchronously after each one.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/clocktail/internal/codec"
	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/model"
	"github.com/mark3labs/clocktail/internal/scheduler"
)

// Options configures a Store.
type Options struct {
	// Path of the persisted document.
	Path string
	// Retention is how long done projects are kept. Zero means model.DefaultRetention.
	Retention time.Duration
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Store is the task manager. It is not safe for concurrent use.
type Store struct {
	path      string
	retention time.Duration
	now       func() time.Time

	projects []*model.Project
	byID     map[string]*model.Project
	sched    *scheduler.Scheduler

	// err is the first persistence failure. Once set, the store refuses
	// further mutations so memory cannot drift further from disk.
	err error
}

// Open loads the document at opts.Path. A missing file yields an empty store.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	s := &Store{
		path:      opts.Path,
		retention: opts.Retention,
		now:       opts.Now,
		byID:      make(map[string]*model.Project),
		sched:     scheduler.New(),
	}
	if s.retention <= 0 {
		s.retention = model.DefaultRetention
	}
	if s.now == nil {
		s.now = time.Now
	}

	projects, err := codec.Load(s.path, s.now())
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		s.attach(p)
	}

	logger.Info("Opened store %s: %d projects, %d running", s.path, len(s.projects), len(s.RunningProjects()))
	return s, nil
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Projects returns all retained projects in stored order.
func (s *Store) Projects() []*model.Project {
	return slices.Clone(s.projects)
}

// RunningProjects returns the projects that are not done, in stored order.
func (s *Store) RunningProjects() []*model.Project {
	return model.Running(s.projects)
}

// WaitingTasks returns every snoozed task across running projects.
func (s *Store) WaitingTasks() []*model.Task {
	var waiting []*model.Task
	for _, p := range s.RunningProjects() {
		for _, t := range p.Tasks {
			if t.Status == model.StatusWaiting {
				waiting = append(waiting, t)
			}
		}
	}
	return waiting
}

// ProjectOf resolves a task's back-reference. It returns nil for tasks the
// store does not own.
func (s *Store) ProjectOf(t *model.Task) *model.Project {
	if t == nil {
		return nil
	}
	p, ok := s.byID[t.ProjectID]
	if !ok || p.TaskIndex(t.ID) < 0 {
		return nil
	}
	return p
}

// Scheduler exposes the rotation cursor for inspection.
func (s *Store) Scheduler() *scheduler.Scheduler {
	return s.sched
}

const reasonNotFound = "no such project"

// IsNotFound reports whether err is FindProject failing to match any project.
func IsNotFound(err error) bool {
	var ve *ierr.ValidationError
	return errors.As(err, &ve) && ve.Reason == reasonNotFound
}

// FindProject resolves a reference given on the command line: a 1-based
// index into the running projects, an exact name, or a name slug.
func (s *Store) FindProject(ref string) (*model.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ierr.NewValidation("project", ref, "reference is empty")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		running := s.RunningProjects()
		if n < 1 || n > len(running) {
			return nil, ierr.NewValidation("project", ref, fmt.Sprintf("choose 1-%d", len(running)))
		}
		return running[n-1], nil
	}

	for _, p := range s.projects {
		if p.Name == ref {
			return p, nil
		}
	}

	want := slug.Make(ref)
	var matches []*model.Project
	for _, p := range s.projects {
		if slug.Make(p.Name) == want {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, ierr.NewValidation("project", ref, reasonNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, ierr.NewValidation("project", ref, fmt.Sprintf("ambiguous, matches %d projects", len(matches)))
	}
}

// AddProject creates and persists an empty project.
func (s *Store) AddProject(name, description string) (*model.Project, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ierr.NewValidation("project name", name, "must not be empty")
	}

	p := model.NewProject(name, description, s.now())
	s.attach(p)
	logger.Info("Added project %q", name)
	return p, s.Save()
}

// AddTask appends a running task to the project and persists.
func (s *Store) AddTask(p *model.Project, name, description string) (*model.Task, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	if err := s.owns(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ierr.NewValidation("task name", name, "must not be empty")
	}

	t := model.NewTask(name, description)
	p.AddTask(t)
	logger.Info("Added task %q to project %q", name, p.Name)
	return t, s.Save()
}

// MarkTask sets a task's status and persists.
func (s *Store) MarkTask(t *model.Task, status model.Status) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.ownsTask(t); err != nil {
		return err
	}
	if err := t.SetStatus(status); err != nil {
		return err
	}
	logger.Info("Marked task %q %s", t.Name, status)
	return s.Save()
}

// SnoozeTask defers a task for d and persists. A negative d yields a
// deadline in the past, so the task wakes the next time it is reached.
func (s *Store) SnoozeTask(t *model.Task, d time.Duration) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.ownsTask(t); err != nil {
		return err
	}
	until := s.now().Add(d)
	t.Snooze(until)
	logger.Info("Snoozed task %q until %s", t.Name, until.Format(time.RFC3339))
	return s.Save()
}

// WakeTask makes a waiting task running immediately and persists.
func (s *Store) WakeTask(t *model.Task) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.ownsTask(t); err != nil {
		return err
	}
	if t.Status != model.StatusWaiting {
		return ierr.NewValidation("task", t.Name, "is not snoozed")
	}
	t.Wake()
	logger.Info("Woke task %q manually", t.Name)
	return s.Save()
}

// EditTask replaces a task's name and description and persists.
func (s *Store) EditTask(t *model.Task, name, description string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.ownsTask(t); err != nil {
		return err
	}
	t.Name = name
	t.Description = description
	return s.Save()
}

// EditProject replaces a project's name and description and persists.
func (s *Store) EditProject(p *model.Project, name, description string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.owns(p); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	return s.Save()
}

// NextTask returns the next task to act on, or nil when nothing is
// actionable. Waking a snoozed task is persisted before returning.
func (s *Store) NextTask() (*model.Task, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	res := s.sched.Next(s.projects, s.now())
	if res.Woke {
		if err := s.Save(); err != nil {
			return nil, err
		}
	}
	return res.Task, nil
}

// Save prunes done projects older than the retention window and writes
// the document atomically. A failure poisons the store.
func (s *Store) Save() error {
	if err := s.writable(); err != nil {
		return err
	}
	s.prune()
	if err := codec.Save(s.path, s.projects); err != nil {
		logger.Error("Failed to save store: %v", err)
		s.err = err
		return err
	}
	return nil
}

// Err returns the persistence failure that poisoned the store, if any.
func (s *Store) Err() error {
	return s.err
}

func (s *Store) prune() {
	now := s.now()
	kept := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.CanBeDeleted(now, s.retention) {
			logger.Info("Pruning completed project %q created %s", p.Name, p.CreationTime.Format(time.RFC3339))
			delete(s.byID, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	s.projects = kept
}

func (s *Store) attach(p *model.Project) {
	s.projects = append(s.projects, p)
	s.byID[p.ID] = p
}

func (s *Store) writable() error {
	if s.err != nil {
		return fmt.Errorf("store is read-only after a failed save: %w", s.err)
	}
	return nil
}

func (s *Store) owns(p *model.Project) error {
	if p == nil || s.byID[p.ID] != p {
		return ierr.NewValidation("project", "", "not part of this store")
	}
	return nil
}

func (s *Store) ownsTask(t *model.Task) error {
	if s.ProjectOf(t) == nil {
		return ierr.NewValidation("task", "", "not part of this store")
	}
	return nil
}
