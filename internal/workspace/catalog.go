// Package workspace mirrors the remote workspace for one process
// invocation. The Catalog capability is selected once at startup: Direct
// forwards every read to the gateway, Snapshot hydrates everything up
// front and serves repeated menu reads from memory.
package workspace

import (
	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/models"
)

// Catalog serves workspace reads. Mutating operations elsewhere must call
// the Invalidate methods; there is no automatic expiry.
type Catalog interface {
	UserID() (string, error)
	Clients() ([]models.Client, error)
	Projects() ([]models.Project, error)
	ProjectTasks(projectID string) ([]models.Task, error)
	TimeEntries(limit int) ([]models.TimeEntry, error)
	InvalidateTasks(projectID string)
	InvalidateTimeEntries()
}

// Direct is the pass-through catalog used by simple commands (start, stop)
// that read at most the active entry and never benefit from hydration.
type Direct struct {
	gw api.Gateway
}

func NewDirect(gw api.Gateway) *Direct {
	return &Direct{gw: gw}
}

func (d *Direct) UserID() (string, error) {
	user, err := d.gw.CurrentUser()
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (d *Direct) Clients() ([]models.Client, error)   { return d.gw.Clients() }
func (d *Direct) Projects() ([]models.Project, error) { return d.gw.Projects() }

func (d *Direct) ProjectTasks(projectID string) ([]models.Task, error) {
	return d.gw.ProjectTasks(projectID)
}

func (d *Direct) TimeEntries(limit int) ([]models.TimeEntry, error) {
	return d.gw.TimeEntries(limit)
}

func (d *Direct) InvalidateTasks(projectID string) {}
func (d *Direct) InvalidateTimeEntries()           {}
