package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/colorprofile"
	ierr "github.com/mark3labs/clocktail/internal/errors"
	"github.com/mark3labs/clocktail/internal/model"
	"github.com/mark3labs/clocktail/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

// fakeEditor replays canned replies and records the seeds it was given.
// With no replies left it returns the seed unchanged.
type fakeEditor struct {
	replies []string
	seeds   []string
	err     error
}

func (f *fakeEditor) Edit(_ context.Context, seed string) (string, error) {
	f.seeds = append(f.seeds, seed)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return seed, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// failingEditor delegates to inner for the first after calls, then fails.
type failingEditor struct {
	after int
	inner *fakeEditor
}

func (f *failingEditor) Edit(ctx context.Context, seed string) (string, error) {
	if f.after == 0 {
		return "", errors.New("editor crashed")
	}
	f.after--
	return f.inner.Edit(ctx, seed)
}

type harness struct {
	store  *store.Store
	clock  *clock
	editor *fakeEditor
	out    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := &clock{t: fixedTime}
	s, err := store.Open(store.Options{
		Path: filepath.Join(t.TempDir(), "tasks.json"),
		Now:  clk.Now,
	})
	require.NoError(t, err)
	return &harness{store: s, clock: clk, editor: &fakeEditor{}, out: &bytes.Buffer{}}
}

func (h *harness) shell(input string) *Shell {
	return New(h.store, strings.NewReader(input), h.out, h.editor, Options{Profile: colorprofile.NoTTY})
}

func (h *harness) run(t *testing.T, input string) *Shell {
	t.Helper()
	sh := h.shell(input)
	require.NoError(t, sh.Run(context.Background()))
	return sh
}

// seed adds a project with the given running tasks.
func (h *harness) seed(t *testing.T, project string, tasks ...string) (*model.Project, []*model.Task) {
	t.Helper()
	p, err := h.store.AddProject(project, "")
	require.NoError(t, err)
	var out []*model.Task
	for _, name := range tasks {
		task, err := h.store.AddTask(p, name, "")
		require.NoError(t, err)
		out = append(out, task)
	}
	return p, out
}

func TestRunExit(t *testing.T) {
	h := newHarness(t)
	h.run(t, "x\n")

	out := h.out.String()
	assert.Contains(t, out, "Nothing to work on right now.")
	assert.Contains(t, out, "--- Actions ---")
	assert.Contains(t, out, "x - Exit")
	assert.NotContains(t, out, "d - Mark Task as done", "task keys are hidden without a task")
}

func TestRunEndsAtEOF(t *testing.T) {
	h := newHarness(t)
	h.run(t, "")
}

func TestRunCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.shell("x\n").Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddTaskCreatesProject(t *testing.T) {
	h := newHarness(t)
	h.editor.replies = []string{"project notes", "task notes\n"}

	sh := h.run(t, "a\nAlpha\nfirst\nx\n")

	require.Len(t, h.store.Projects(), 1)
	p := h.store.Projects()[0]
	assert.Equal(t, "Alpha", p.Name)
	assert.Equal(t, "project notes", p.Description)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "first", p.Tasks[0].Name)
	assert.Equal(t, "task notes", p.Tasks[0].Description, "trailing newline from the editor is dropped")
	assert.Equal(t, []string{"Project Description:", "Task Description:"}, h.editor.seeds)

	assert.Same(t, p.Tasks[0], sh.current, "the new task becomes current when nothing was")
	assert.Contains(t, h.out.String(), "<No Projects>")
	assert.Contains(t, h.out.String(), "[RUNNING] first")
}

func TestAddTaskToExistingProject(t *testing.T) {
	h := newHarness(t)
	p, tasks := h.seed(t, "Alpha", "a1")

	sh := h.run(t, "a\n1\nsecond\nx\n")

	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "second", p.Tasks[1].Name)
	assert.Same(t, tasks[0], sh.current)
	assert.Contains(t, h.out.String(), "1. Alpha")
}

func TestAddTaskRepromptsOnInvalidInput(t *testing.T) {
	h := newHarness(t)
	p, _ := h.seed(t, "Alpha", "a1")

	h.run(t, "a\n7\nfoo\n1\n\nsecond\nx\n")

	out := h.out.String()
	assert.Contains(t, out, `invalid selection "7"`)
	assert.Contains(t, out, `invalid selection "foo"`)
	assert.Contains(t, out, "invalid name: must not be empty")
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "second", p.Tasks[1].Name)
}

func TestAddTaskEditorFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Alpha", "a1")
	h.editor.err = errors.New("editor crashed")

	h.run(t, "a\n1\nsecond\nx\n")

	assert.Contains(t, h.out.String(), "editor crashed")
	assert.Len(t, h.store.Projects()[0].Tasks, 1)
}

func TestAddTaskEditorFailureLeavesNoProject(t *testing.T) {
	h := newHarness(t)
	h.editor.replies = []string{"project notes"}

	sh := h.shell("a\nAlpha\nfirst\nx\n")
	sh.editor = &failingEditor{after: 1, inner: h.editor}
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, h.out.String(), "editor crashed")
	assert.Empty(t, h.store.Projects(), "the project is only stored with its first task")
}

func TestOverlongLineIsRejected(t *testing.T) {
	h := newHarness(t)
	long := strings.Repeat("a", maxLine+1)

	h.run(t, long+"\na\n"+long+"\nAlpha\nfirst\nx\n")

	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, "invalid input: line longer than 65536 bytes"))
	require.Len(t, h.store.Projects(), 1)
	assert.Equal(t, "Alpha", h.store.Projects()[0].Name)
}

func TestLineAtLimitIsAccepted(t *testing.T) {
	h := newHarness(t)
	name := strings.Repeat("n", maxLine)

	h.run(t, "a\n"+name+"\nfirst\nx\n")

	require.Len(t, h.store.Projects(), 1)
	p := h.store.Projects()[0]
	assert.Equal(t, name, p.Name)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "first", p.Tasks[0].Name)
}

func TestMarkDoneAdvances(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1", "t2")

	sh := h.run(t, "d\nx\n")

	assert.Equal(t, model.StatusDone, tasks[0].Status)
	assert.Same(t, tasks[1], sh.current)
}

func TestSkipRotates(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1", "t2")

	sh := h.run(t, "x\n")
	assert.Same(t, tasks[0], sh.current)

	sh = h.run(t, "x\n")
	assert.Same(t, tasks[1], sh.current, "a fresh shell continues the store's rotation")

	sh = h.run(t, "\nx\n")
	assert.Same(t, tasks[1], sh.current)
}

func TestSnooze(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "minutes", input: "30", want: 30 * time.Minute},
		{name: "duration", input: "1h30m", want: 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, tasks := h.seed(t, "Alpha", "t1", "t2")

			sh := h.run(t, "s\nsoon\n"+tt.input+"\nx\n")

			assert.Contains(t, h.out.String(), `invalid duration "soon"`)
			assert.Equal(t, model.StatusWaiting, tasks[0].Status)
			require.NotNil(t, tasks[0].SnoozeUntil)
			assert.Equal(t, fixedTime.Add(tt.want), *tasks[0].SnoozeUntil)
			assert.Same(t, tasks[1], sh.current)
		})
	}
}

func TestSnoozeNegativeWakesImmediately(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1")

	sh := h.run(t, "s\n-5\nx\n")

	assert.Same(t, tasks[0], sh.current)
	assert.Equal(t, model.StatusRunning, tasks[0].Status)
	assert.Nil(t, tasks[0].SnoozeUntil)
}

func TestEditTask(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1")
	h.editor.replies = []string{"new notes", "renamed notes"}

	h.run(t, "e\n\nx\n")
	assert.Equal(t, "t1", tasks[0].Name, "enter keeps the name")
	assert.Equal(t, "new notes", tasks[0].Description)

	h.run(t, "e\nRenamed\nx\n")
	assert.Equal(t, "Renamed", tasks[0].Name)
	assert.Equal(t, "renamed notes", tasks[0].Description)
	assert.Equal(t, []string{"", "new notes"}, h.editor.seeds, "the editor is seeded with the current description")
}

func TestEditProject(t *testing.T) {
	h := newHarness(t)
	p, _ := h.seed(t, "Alpha", "t1")
	h.editor.replies = []string{"about alpha"}

	h.run(t, "p\nBeta\nx\n")

	assert.Equal(t, "Beta", p.Name)
	assert.Equal(t, "about alpha", p.Description)
}

func TestWake(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1")
	require.NoError(t, h.store.SnoozeTask(tasks[0], time.Hour))

	sh := h.run(t, "w\n2\n1\nx\n")

	out := h.out.String()
	assert.Contains(t, out, "w - Wake a snoozed Task")
	assert.Contains(t, out, "1. Alpha: t1 (Snoozed until")
	assert.Contains(t, out, `invalid selection "2"`)
	assert.Equal(t, model.StatusRunning, tasks[0].Status)
	assert.Same(t, tasks[0], sh.current)
}

func TestWakeCancel(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1")
	require.NoError(t, h.store.SnoozeTask(tasks[0], time.Hour))

	h.run(t, "w\n\nx\n")
	assert.Equal(t, model.StatusWaiting, tasks[0].Status)
}

func TestWakeWithoutSnoozedTasks(t *testing.T) {
	h := newHarness(t)
	h.run(t, "w\nx\n")
	assert.Contains(t, h.out.String(), "No snoozed tasks.")
}

func TestList(t *testing.T) {
	h := newHarness(t)
	_, tasks := h.seed(t, "Alpha", "t1", "t2")
	require.NoError(t, h.store.SnoozeTask(tasks[1], time.Hour))

	h.run(t, "l\n\nx\n")

	out := h.out.String()
	assert.Contains(t, out, "Project: Alpha")
	assert.Contains(t, out, "  [RUNNING] t1\n")
	assert.Contains(t, out, "  [WAITING] t2 (Snoozed until")
	assert.Contains(t, out, "Press Enter to continue...")
}

func TestTaskKeysNeedATask(t *testing.T) {
	h := newHarness(t)
	h.run(t, "d\nq\nx\n")

	out := h.out.String()
	assert.Contains(t, out, `invalid choice "d"`)
	assert.Contains(t, out, `invalid choice "q"`)
}

func TestSaveFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Alpha", "t1", "t2")
	require.NoError(t, os.Remove(h.store.Path()))
	require.NoError(t, os.MkdirAll(filepath.Join(h.store.Path(), "child"), 0755))

	err := h.shell("d\nx\n").Run(context.Background())
	require.Error(t, err)
	assert.True(t, ierr.IsFatal(err))
}

func TestClearScreen(t *testing.T) {
	h := newHarness(t)
	sh := New(h.store, strings.NewReader("x\n"), h.out, h.editor, Options{
		ClearScreen: true,
		Profile:     colorprofile.TrueColor,
	})
	require.NoError(t, sh.Run(context.Background()))
	assert.True(t, strings.HasPrefix(h.out.String(), clearSequence))
}
