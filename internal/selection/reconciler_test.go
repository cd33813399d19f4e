package selection

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/models"
	"github.com/clockworkpc/clockify/internal/pomodoro"
	"github.com/clockworkpc/clockify/internal/tracker"
	"github.com/clockworkpc/clockify/internal/workspace"
)

// fakeGateway holds a mutable workspace and tracks the active entry.
type fakeGateway struct {
	clients  []models.Client
	projects []models.Project
	tasks    map[string][]models.Task
	entries  []models.TimeEntry
	active   *models.TimeEntry
}

func (f *fakeGateway) CurrentUser() (models.User, error)       { return models.User{ID: "u1"}, nil }
func (f *fakeGateway) Workspaces() ([]models.Workspace, error) { return nil, nil }
func (f *fakeGateway) Clients() ([]models.Client, error)       { return f.clients, nil }
func (f *fakeGateway) Projects() ([]models.Project, error)     { return f.projects, nil }

func (f *fakeGateway) ProjectTasks(projectID string) ([]models.Task, error) {
	return f.tasks[projectID], nil
}

func (f *fakeGateway) TimeEntries(limit int) ([]models.TimeEntry, error) { return f.entries, nil }

func (f *fakeGateway) ActiveTimeEntry() (*models.TimeEntry, error) { return f.active, nil }

func (f *fakeGateway) StartTimeEntry(description, projectID, taskID string) (*models.TimeEntry, error) {
	f.active = &models.TimeEntry{ID: "e-live", Description: description, ProjectID: projectID, TaskID: taskID}
	return f.active, nil
}

func (f *fakeGateway) StopTimeEntry() (*models.TimeEntry, error) {
	entry := f.active
	if entry == nil {
		entry = &models.TimeEntry{ID: "e-live"}
	}
	f.active = nil
	return entry, nil
}

func (f *fakeGateway) CreateTimeEntry(projectID, taskID, description, start, end string) (*models.TimeEntry, error) {
	return &models.TimeEntry{ID: "e-closed"}, nil
}

func (f *fakeGateway) CreateTask(projectID, name string) (*models.Task, error) {
	task := models.Task{ID: "t-new", Name: name, ProjectID: projectID}
	f.tasks[projectID] = append(f.tasks[projectID], task)
	return &task, nil
}

func (f *fakeGateway) DeleteTask(projectID, taskID string) error {
	tasks := f.tasks[projectID][:0:0]
	for _, task := range f.tasks[projectID] {
		if task.ID != taskID {
			tasks = append(tasks, task)
		}
	}
	f.tasks[projectID] = tasks
	return nil
}

func (f *fakeGateway) DeleteTimeEntry(entryID string) error { return nil }

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		clients: []models.Client{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}},
		projects: []models.Project{
			{ID: "p1", Name: "Website", ClientID: "c1"},
			{ID: "p2", Name: "Backend", ClientID: "c2"},
		},
		tasks: map[string][]models.Task{
			"p1": {{ID: "t1", Name: "Design", ProjectID: "p1"}},
			"p2": {{ID: "t2", Name: "API", ProjectID: "p2"}},
		},
	}
}

// scriptPrompter replays queued answers and records the prompt titles.
type scriptPrompter struct {
	picks    []PickResult
	inputs   []string
	confirms []bool
	titles   []string
}

func (p *scriptPrompter) Pick(title string, options []string, current string) (PickResult, error) {
	p.titles = append(p.titles, title)
	if len(p.picks) == 0 {
		return PickResult{Cancelled: true}, nil
	}
	res := p.picks[0]
	p.picks = p.picks[1:]
	return res, nil
}

func (p *scriptPrompter) Input(prompt string) (string, bool, error) {
	if len(p.inputs) == 0 {
		return "", false, nil
	}
	in := p.inputs[0]
	p.inputs = p.inputs[1:]
	return in, true, nil
}

func (p *scriptPrompter) Confirm(prompt string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, nil
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

type breakStub struct{}

func (breakStub) IsAvailable() bool     { return false }
func (breakStub) State() pomodoro.State { return pomodoro.StateUnknown }
func (breakStub) IsRunning() bool       { return false }
func (breakStub) Pause() error          { return nil }
func (breakStub) Resume() error         { return nil }

func newTestReconciler(t *testing.T, gw *fakeGateway, prompt Prompter) (*Reconciler, *config.Config, *config.Store) {
	t.Helper()
	store := config.NewStore(t.TempDir())
	cfg := &config.Config{Token: "secret", WorkspaceID: "ws1"}
	cat := workspace.NewDirect(gw)
	trk := tracker.New(gw, store, cfg, breakStub{}, io.Discard)
	rec := New(gw, cat, store, cfg, trk, prompt, io.Discard)
	return rec, cfg, store
}

func TestReconciler_CurrentProject(t *testing.T) {
	t.Run("config wins", func(t *testing.T) {
		gw := newFakeGateway()
		gw.active = &models.TimeEntry{ID: "e1", ProjectID: "p2"}
		rec, cfg, _ := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.ProjectID = "p1"

		project, err := rec.CurrentProject()
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, "p1", project.ID)
	})

	t.Run("falls back to active entry", func(t *testing.T) {
		gw := newFakeGateway()
		gw.active = &models.TimeEntry{ID: "e1", ProjectID: "p2"}
		rec, cfg, _ := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.ProjectID = "p-deleted"

		project, err := rec.CurrentProject()
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, "p2", project.ID)
	})

	t.Run("nothing set", func(t *testing.T) {
		rec, _, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})

		project, err := rec.CurrentProject()
		require.NoError(t, err)
		assert.Nil(t, project)
	})
}

func TestReconciler_SetProjectPropagatesClient(t *testing.T) {
	rec, cfg, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
	cfg.ClientID = "c1"

	require.NoError(t, rec.SetProject("p2"))
	assert.Equal(t, "p2", cfg.ProjectID)
	assert.Equal(t, "c2", cfg.ClientID)
}

func TestReconciler_SetProjectUnknown(t *testing.T) {
	rec, _, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
	assert.Error(t, rec.SetProject("p-missing"))
}

func TestReconciler_DescriptionCandidates(t *testing.T) {
	gw := newFakeGateway()
	gw.entries = []models.TimeEntry{
		{ID: "e1", Description: "Writing report", ProjectID: "p1", TaskID: "t1"},
		{ID: "e2", Description: "Planning", ProjectID: "p1"}, // legacy, no task
		{ID: "e3", Description: "Writing report", ProjectID: "p1", TaskID: "t1"},
		{ID: "e4", Description: "Other project", ProjectID: "p2"},
		{ID: "e5", Description: "Other task", ProjectID: "p1", TaskID: "t-other"},
		{ID: "e6", Description: "  ", ProjectID: "p1", TaskID: "t1"},
	}
	rec, _, _ := newTestReconciler(t, gw, &scriptPrompter{})

	candidates, err := rec.DescriptionCandidates("p1", "t1", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"Planning", "Writing report"}, candidates)
}

func TestReconciler_Apply(t *testing.T) {
	t.Run("commits and snapshots previous", func(t *testing.T) {
		rec, cfg, store := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
		cfg.SetSelection(models.Selection{ClientID: "c1", ProjectID: "p1", Description: "Old work"})

		sel := models.Selection{ProjectID: "p2", TaskID: "t2", TaskName: "API", Description: "New work"}
		require.NoError(t, rec.Apply(sel, ApplyOptions{SnapshotPrevious: true}))

		assert.Equal(t, "p2", cfg.ProjectID)
		assert.Equal(t, "c2", cfg.ClientID) // derived from the project
		assert.Equal(t, "New work", cfg.Description)

		prev, err := store.LoadPrevious()
		require.NoError(t, err)
		assert.Equal(t, "p1", prev.ProjectID)
		assert.Equal(t, "Old work", prev.Description)
	})

	t.Run("empty selection is never snapshotted", func(t *testing.T) {
		rec, _, store := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})

		sel := models.Selection{ProjectID: "p1", Description: "First work"}
		require.NoError(t, rec.Apply(sel, ApplyOptions{SnapshotPrevious: true}))

		prev, err := store.LoadPrevious()
		require.NoError(t, err)
		assert.True(t, prev.Empty())
	})

	t.Run("restarts a running timer", func(t *testing.T) {
		gw := newFakeGateway()
		gw.active = &models.TimeEntry{ID: "e1", Description: "Old work", ProjectID: "p1"}
		rec, cfg, _ := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.SetSelection(models.Selection{ClientID: "c1", ProjectID: "p1", Description: "Old work"})

		sel := models.Selection{ProjectID: "p2", Description: "New work"}
		require.NoError(t, rec.Apply(sel, ApplyOptions{StopTimer: true, SnapshotPrevious: true}))

		require.NotNil(t, gw.active)
		assert.Equal(t, "New work", gw.active.Description)
		assert.Equal(t, "p2", gw.active.ProjectID)
	})
}

func TestReconciler_SwitchToPrevious(t *testing.T) {
	t.Run("no previous", func(t *testing.T) {
		rec, _, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
		assert.ErrorIs(t, rec.SwitchToPrevious(), ErrNoPrevious)
	})

	t.Run("previous without description", func(t *testing.T) {
		rec, cfg, store := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
		cfg.SetSelection(models.Selection{ProjectID: "p1", Description: "Current"})
		require.NoError(t, store.SavePrevious(models.Selection{ProjectID: "p2"}))

		assert.Error(t, rec.SwitchToPrevious())
	})

	t.Run("previous project deleted", func(t *testing.T) {
		rec, cfg, store := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
		cfg.SetSelection(models.Selection{ProjectID: "p1", Description: "Current"})
		require.NoError(t, store.SavePrevious(models.Selection{ProjectID: "p-gone", Description: "Old"}))

		assert.Error(t, rec.SwitchToPrevious())
	})

	t.Run("switch twice toggles back", func(t *testing.T) {
		gw := newFakeGateway()
		gw.active = &models.TimeEntry{ID: "e1", Description: "Work A", ProjectID: "p1", TaskID: "t1"}
		rec, cfg, store := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.SetSelection(models.Selection{ClientID: "c1", ProjectID: "p1", TaskID: "t1", TaskName: "Design", Description: "Work A"})
		require.NoError(t, store.SavePrevious(models.Selection{
			ClientID: "c2", ProjectID: "p2", TaskID: "t2", TaskName: "API", Description: "Work B",
		}))

		require.NoError(t, rec.SwitchToPrevious())
		assert.Equal(t, "p2", cfg.ProjectID)
		assert.Equal(t, "Work B", cfg.Description)
		require.NotNil(t, gw.active)
		assert.Equal(t, "Work B", gw.active.Description)

		require.NoError(t, rec.SwitchToPrevious())
		assert.Equal(t, "p1", cfg.ProjectID)
		assert.Equal(t, "t1", cfg.TaskID)
		assert.Equal(t, "Work A", cfg.Description)
		require.NotNil(t, gw.active)
		assert.Equal(t, "Work A", gw.active.Description)
	})

	t.Run("snapshot prefers the live entry over persisted state", func(t *testing.T) {
		gw := newFakeGateway()
		// Timer was started externally with a different description.
		gw.active = &models.TimeEntry{ID: "e1", Description: "Live work", ProjectID: "p1", TaskID: "t1"}
		rec, cfg, store := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.SetSelection(models.Selection{ProjectID: "p2", Description: "Stale local state"})
		require.NoError(t, store.SavePrevious(models.Selection{ProjectID: "p2", Description: "Work B"}))

		require.NoError(t, rec.SwitchToPrevious())

		prev, err := store.LoadPrevious()
		require.NoError(t, err)
		assert.Equal(t, "Live work", prev.Description)
		assert.Equal(t, "p1", prev.ProjectID)
		assert.Equal(t, "Design", prev.TaskName)
		assert.Equal(t, "c1", prev.ClientID)
	})

	t.Run("deleted task degrades to description only", func(t *testing.T) {
		gw := newFakeGateway()
		rec, cfg, store := newTestReconciler(t, gw, &scriptPrompter{})
		cfg.SetSelection(models.Selection{ProjectID: "p1", Description: "Current"})
		require.NoError(t, store.SavePrevious(models.Selection{
			ProjectID: "p2", TaskID: "t-deleted", TaskName: "Gone", Description: "Work B",
		}))

		require.NoError(t, rec.SwitchToPrevious())
		assert.Empty(t, cfg.TaskID)
		assert.Empty(t, cfg.TaskName)
		assert.Equal(t, "Work B", cfg.Description)
	})
}

func TestReconciler_SelectTaskAndDescription(t *testing.T) {
	t.Run("pick task and existing description", func(t *testing.T) {
		gw := newFakeGateway()
		gw.entries = []models.TimeEntry{
			{ID: "e1", Description: "Writing report", ProjectID: "p1", TaskID: "t1"},
		}
		prompt := &scriptPrompter{picks: []PickResult{
			{Index: 1}, // task "Design"
			{Index: 1}, // description "Writing report"
		}}
		rec, cfg, _ := newTestReconciler(t, gw, prompt)
		cfg.ProjectID = "p1"

		choice, err := rec.SelectTaskAndDescription()
		require.NoError(t, err)
		assert.Equal(t, "t1", choice.TaskID)
		assert.Equal(t, "Design", choice.TaskName)
		assert.Equal(t, "Writing report", choice.Description)
	})

	t.Run("create task via typed text", func(t *testing.T) {
		gw := newFakeGateway()
		prompt := &scriptPrompter{picks: []PickResult{
			{Index: 2, Input: "Deployment"}, // last option creates
			{Index: 1, Input: "Ship v2"},    // new description typed
		}}
		rec, cfg, _ := newTestReconciler(t, gw, prompt)
		cfg.ProjectID = "p1"

		choice, err := rec.SelectTaskAndDescription()
		require.NoError(t, err)
		assert.Equal(t, "t-new", choice.TaskID)
		assert.Equal(t, "Deployment", choice.TaskName)
		assert.Equal(t, "Ship v2", choice.Description)
	})

	t.Run("back from descriptions returns to tasks", func(t *testing.T) {
		gw := newFakeGateway()
		prompt := &scriptPrompter{picks: []PickResult{
			{Index: 1},               // task "Design"
			{Index: 0},               // back to tasks
			{Index: 0},               // back to projects
		}}
		rec, cfg, _ := newTestReconciler(t, gw, prompt)
		cfg.ProjectID = "p1"

		choice, err := rec.SelectTaskAndDescription()
		require.NoError(t, err)
		assert.True(t, choice.Back)
	})

	t.Run("no project set", func(t *testing.T) {
		rec, _, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})

		choice, err := rec.SelectTaskAndDescription()
		require.NoError(t, err)
		assert.True(t, choice.Cancelled)
	})
}

func TestReconciler_SelectProjectInteractive(t *testing.T) {
	t.Run("filters by current client", func(t *testing.T) {
		prompt := &scriptPrompter{picks: []PickResult{{Index: 1}}}
		rec, cfg, _ := newTestReconciler(t, newFakeGateway(), prompt)
		cfg.ClientID = "c2"

		project, err := rec.SelectProjectInteractive()
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, "p2", project.ID)
	})

	t.Run("cancelled", func(t *testing.T) {
		prompt := &scriptPrompter{picks: []PickResult{{Cancelled: true}}}
		rec, _, _ := newTestReconciler(t, newFakeGateway(), prompt)

		project, err := rec.SelectProjectInteractive()
		require.NoError(t, err)
		assert.Nil(t, project)
	})
}

func TestReconciler_CreateTaskDuplicate(t *testing.T) {
	rec, cfg, _ := newTestReconciler(t, newFakeGateway(), &scriptPrompter{})
	cfg.ProjectID = "p1"

	assert.Error(t, rec.CreateTask("Design"))
}

func TestReconciler_DeleteTaskClearsSelection(t *testing.T) {
	gw := newFakeGateway()
	prompt := &scriptPrompter{confirms: []bool{true}}
	rec, cfg, _ := newTestReconciler(t, gw, prompt)
	cfg.ProjectID = "p1"
	cfg.TaskID = "t1"
	cfg.TaskName = "Design"

	require.NoError(t, rec.DeleteTask("Design"))
	assert.Empty(t, cfg.TaskID)
	assert.Empty(t, cfg.TaskName)
	assert.Empty(t, gw.tasks["p1"])
}
