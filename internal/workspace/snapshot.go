package workspace

import (
	"fmt"
	"io"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/models"
)

const DefaultTimeEntriesLimit = 100

// Snapshot is the load-once catalog behind interactive flows. Before
// hydration every accessor falls through to the gateway, so a Snapshot
// that was never loaded behaves like Direct.
type Snapshot struct {
	gw  api.Gateway
	out io.Writer

	loaded         bool
	userID         string
	clients        []models.Client
	projects       []models.Project
	tasksByProject map[string][]models.Task
	entries        []models.TimeEntry
}

func NewSnapshot(gw api.Gateway, out io.Writer) *Snapshot {
	return &Snapshot{
		gw:             gw,
		out:            out,
		tasksByProject: make(map[string][]models.Task),
	}
}

// LoadAll performs one full hydration: user identity, clients, projects,
// tasks per project and the most recent time entries. A task fetch failing
// for one project degrades to an empty task list for that project; it
// never aborts the whole load.
func (s *Snapshot) LoadAll(timeEntriesLimit int) error {
	fmt.Fprint(s.out, "Loading workspace data... ")

	user, err := s.gw.CurrentUser()
	if err != nil {
		return err
	}
	s.userID = user.ID

	if s.clients, err = s.gw.Clients(); err != nil {
		return err
	}
	if s.projects, err = s.gw.Projects(); err != nil {
		return err
	}

	for _, project := range s.projects {
		tasks, err := s.gw.ProjectTasks(project.ID)
		if err != nil {
			s.tasksByProject[project.ID] = []models.Task{}
			continue
		}
		s.tasksByProject[project.ID] = tasks
	}

	if s.entries, err = s.gw.TimeEntries(timeEntriesLimit); err != nil {
		return err
	}

	s.loaded = true
	fmt.Fprintln(s.out, "Done!")
	return nil
}

func (s *Snapshot) Loaded() bool { return s.loaded }

func (s *Snapshot) UserID() (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.gw.CurrentUser()
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

func (s *Snapshot) Clients() ([]models.Client, error) {
	if !s.loaded {
		return s.gw.Clients()
	}
	return s.clients, nil
}

func (s *Snapshot) Projects() ([]models.Project, error) {
	if !s.loaded {
		return s.gw.Projects()
	}
	return s.projects, nil
}

func (s *Snapshot) ProjectTasks(projectID string) ([]models.Task, error) {
	if tasks, ok := s.tasksByProject[projectID]; ok && s.loaded {
		return tasks, nil
	}
	tasks, err := s.gw.ProjectTasks(projectID)
	if err != nil {
		return nil, err
	}
	s.tasksByProject[projectID] = tasks
	return tasks, nil
}

func (s *Snapshot) TimeEntries(limit int) ([]models.TimeEntry, error) {
	if !s.loaded || s.entries == nil {
		entries, err := s.gw.TimeEntries(limit)
		if err != nil {
			return nil, err
		}
		s.entries = entries
	}
	return s.entries, nil
}

func (s *Snapshot) InvalidateTasks(projectID string) {
	delete(s.tasksByProject, projectID)
}

func (s *Snapshot) InvalidateTimeEntries() {
	s.entries = nil
}
