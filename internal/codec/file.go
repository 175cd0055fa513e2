package codec

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/model"
)

// Load reads and parses the document at path. A missing file is an empty
// collection, not an error.
func Load(path string, now time.Time) ([]*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No document at %s, starting empty", path)
			return nil, nil
		}
		return nil, ierr.NewIO("read", path, err)
	}

	projects, err := Deserialize(data, now)
	if err != nil {
		var md *ierr.MalformedDocumentError
		if errors.As(err, &md) {
			md.Path = path
		}
		return nil, err
	}

	logger.Debug("Loaded %d projects from %s", len(projects), path)
	return projects, nil
}

// WriteFile replaces path with data in one step: the bytes go to a temp
// file in the same directory, which is synced and renamed over the target.
// Other processes see either the old document or the new one.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ierr.NewIO("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return ierr.NewIO("create temp", dir, err)
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return ierr.NewIO(op, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ierr.NewIO("close", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ierr.NewIO("rename", path, err)
	}
	return nil
}

// Save serializes projects and writes them to path atomically.
func Save(path string, projects []*model.Project) error {
	data, err := Serialize(projects)
	if err != nil {
		return err
	}
	if err := WriteFile(path, data); err != nil {
		return err
	}
	logger.Debug("Saved %d projects to %s", len(projects), path)
	return nil
}
