// Package codec converts the project collection to and from the persisted
// JSON document and replaces the file on disk atomically.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/model"
)

// TimeLayout is the timestamp format written to the document.
const TimeLayout = time.RFC3339Nano

// naiveLayout accepts offset-less ISO-8601 timestamps, as written by
// older versions of the tracker. They are interpreted in local time.
const naiveLayout = "2006-01-02T15:04:05"

type projectRecord struct {
	Name         *string      `json:"name"`
	Description  string       `json:"description"`
	CreationTime *string      `json:"creation_time"`
	Tasks        []taskRecord `json:"tasks"`
}

type taskRecord struct {
	Name        *string `json:"name"`
	Description string  `json:"description"`
	Status      *string `json:"status"`
	SnoozeUntil *string `json:"snooze_until"`
}

// Serialize renders projects as an indented JSON document.
func Serialize(projects []*model.Project) ([]byte, error) {
	records := make([]projectRecord, 0, len(projects))
	for _, p := range projects {
		records = append(records, toRecord(p))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding projects: %w", err)
	}
	return buf.Bytes(), nil
}

func toRecord(p *model.Project) projectRecord {
	name := p.Name
	created := p.CreationTime.Format(TimeLayout)
	rec := projectRecord{
		Name:         &name,
		Description:  p.Description,
		CreationTime: &created,
		Tasks:        make([]taskRecord, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		taskName := t.Name
		status := string(t.Status)
		tr := taskRecord{
			Name:        &taskName,
			Description: t.Description,
			Status:      &status,
		}
		if t.SnoozeUntil != nil {
			until := t.SnoozeUntil.Format(TimeLayout)
			tr.SnoozeUntil = &until
		}
		rec.Tasks = append(rec.Tasks, tr)
	}
	return rec
}

// Deserialize parses a document. Missing optional fields take defaults:
// empty description, creation time now, no snooze.
func Deserialize(data []byte, now time.Time) ([]*model.Project, error) {
	var records []projectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ierr.MalformedDocumentError{Reason: "decoding projects", Err: err}
	}

	projects := make([]*model.Project, 0, len(records))
	for i, rec := range records {
		p, err := fromRecord(i, rec, now)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func fromRecord(idx int, rec projectRecord, now time.Time) (*model.Project, error) {
	if rec.Name == nil {
		return nil, ierr.NewMalformedDocument("project %d: missing name", idx)
	}

	created := now
	if rec.CreationTime != nil {
		ts, err := ParseTime(*rec.CreationTime)
		if err != nil {
			return nil, ierr.NewMalformedDocument("project %q: creation_time: %v", *rec.Name, err)
		}
		created = ts
	}

	p := model.NewProject(*rec.Name, rec.Description, created)
	for j, tr := range rec.Tasks {
		t, err := taskFromRecord(*rec.Name, j, tr)
		if err != nil {
			return nil, err
		}
		p.AddTask(t)
	}
	return p, nil
}

func taskFromRecord(project string, idx int, tr taskRecord) (*model.Task, error) {
	if tr.Name == nil {
		return nil, ierr.NewMalformedDocument("project %q task %d: missing name", project, idx)
	}
	if tr.Status == nil {
		return nil, ierr.NewMalformedDocument("task %q: missing status", *tr.Name)
	}
	status, err := model.ParseStatus(*tr.Status)
	if err != nil {
		return nil, ierr.NewMalformedDocument("task %q: %v", *tr.Name, err)
	}

	t := model.NewTask(*tr.Name, tr.Description)
	t.Status = status
	if tr.SnoozeUntil != nil {
		until, err := ParseTime(*tr.SnoozeUntil)
		if err != nil {
			return nil, ierr.NewMalformedDocument("task %q: snooze_until: %v", *tr.Name, err)
		}
		t.SnoozeUntil = &until
	}

	switch {
	case t.Status == model.StatusWaiting && t.SnoozeUntil == nil:
		logger.Warn("Task %q is waiting without snooze_until, marking running", t.Name)
		t.Status = model.StatusRunning
	case t.Status != model.StatusWaiting && t.SnoozeUntil != nil:
		logger.Warn("Task %q is %s but has snooze_until, clearing it", t.Name, t.Status)
		t.SnoozeUntil = nil
	}
	return t, nil
}

// ParseTime accepts RFC 3339 timestamps and offset-less ISO-8601 timestamps.
func ParseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(naiveLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", s)
	}
	return ts, nil
}
