// Package api is the HTTP gateway to the hosted Clockify service.
package api

import (
	"errors"

	"github.com/clockworkpc/clockify/internal/models"
)

// ErrRequestFailed is the single error kind surfaced by the gateway. The
// core does not distinguish 4xx from 5xx; every failure is reported once
// and left to the user to re-invoke.
var ErrRequestFailed = errors.New("clockify api request failed")

// Gateway is the remote operation set consumed by the core.
type Gateway interface {
	CurrentUser() (models.User, error)
	Workspaces() ([]models.Workspace, error)
	Clients() ([]models.Client, error)
	Projects() ([]models.Project, error)
	ProjectTasks(projectID string) ([]models.Task, error)
	TimeEntries(limit int) ([]models.TimeEntry, error)
	ActiveTimeEntry() (*models.TimeEntry, error)
	StartTimeEntry(description, projectID, taskID string) (*models.TimeEntry, error)
	StopTimeEntry() (*models.TimeEntry, error)
	CreateTimeEntry(projectID, taskID, description, start, end string) (*models.TimeEntry, error)
	CreateTask(projectID, name string) (*models.Task, error)
	DeleteTask(projectID, taskID string) error
	DeleteTimeEntry(entryID string) error
}
