// Package selection owns the hierarchical selection (client -> project ->
// task -> description): resolving what is current, driving the interactive
// flows, and the single-slot switch-to-previous operation.
package selection

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/models"
	"github.com/clockworkpc/clockify/internal/tracker"
	"github.com/clockworkpc/clockify/internal/workspace"
)

var ErrNoPrevious = errors.New("no previous selection found; select a task first to create a history")

// Reconciler resolves and mutates the current selection. All collaborators
// arrive at construction; it never fabricates a gateway or tracker
// mid-method.
type Reconciler struct {
	gw     api.Gateway
	cat    workspace.Catalog
	store  *config.Store
	cfg    *config.Config
	trk    *tracker.Tracker
	prompt Prompter
	out    io.Writer
}

func New(gw api.Gateway, cat workspace.Catalog, store *config.Store, cfg *config.Config, trk *tracker.Tracker, prompt Prompter, out io.Writer) *Reconciler {
	return &Reconciler{
		gw:     gw,
		cat:    cat,
		store:  store,
		cfg:    cfg,
		trk:    trk,
		prompt: prompt,
		out:    out,
	}
}

// CurrentProject resolves the current project: the persisted selection's
// project when it still exists, otherwise the project of the remote active
// entry. This precedence is the canonical contract for every caller.
func (r *Reconciler) CurrentProject() (*models.Project, error) {
	if r.cfg.ProjectID != "" {
		project, err := workspace.FindProjectByID(r.cat, r.cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		if project != nil {
			return project, nil
		}
	}

	entry, err := r.gw.ActiveTimeEntry()
	if err != nil || entry == nil || entry.ProjectID == "" {
		return nil, err
	}
	return workspace.FindProjectByID(r.cat, entry.ProjectID)
}

// CurrentClient resolves the persisted client, nil when unset or gone.
func (r *Reconciler) CurrentClient() (*models.Client, error) {
	if r.cfg.ClientID == "" {
		return nil, nil
	}
	return workspace.FindClientByID(r.cat, r.cfg.ClientID)
}

// SetClient persists a client choice.
func (r *Reconciler) SetClient(clientID string) error {
	client, err := workspace.FindClientByID(r.cat, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client with ID %s not found", clientID)
	}
	r.cfg.ClientID = clientID
	if err := r.store.Save(r.cfg); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Current client set to: %s\n", client.Name)
	return nil
}

func (r *Reconciler) SetClientByName(name string) error {
	client, err := workspace.FindClientByName(r.cat, name)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client %q not found", name)
	}
	return r.SetClient(client.ID)
}

// SetProject persists a project choice. Picking a project whose client
// differs from the current selection updates the client as well, with a
// visible notice; this cross-level propagation is deliberate.
func (r *Reconciler) SetProject(projectID string) error {
	project, err := workspace.FindProjectByID(r.cat, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project with ID %s not found", projectID)
	}

	if project.ClientID != "" && project.ClientID != r.cfg.ClientID {
		r.cfg.ClientID = project.ClientID
		if client, err := workspace.FindClientByID(r.cat, project.ClientID); err == nil && client != nil {
			fmt.Fprintf(r.out, "Client automatically updated to: %s\n", client.Name)
		}
	}

	r.cfg.ProjectID = projectID
	if err := r.store.Save(r.cfg); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Current project set to: %s\n", project.Name)
	return nil
}

func (r *Reconciler) SetProjectByName(name string) error {
	project, err := workspace.FindProjectByName(r.cat, name)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %q not found", name)
	}
	return r.SetProject(project.ID)
}

// DescriptionCandidates returns the distinct non-empty descriptions of
// past entries in the project that either reference the task or reference
// no task at all (legacy description-only entries are valid candidates for
// any task in the same project).
func (r *Reconciler) DescriptionCandidates(projectID, taskID string, limit int) ([]string, error) {
	entries, err := r.cat.TimeEntries(limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		desc := strings.TrimSpace(entry.Description)
		if entry.ProjectID != projectID || desc == "" {
			continue
		}
		if entry.TaskID == taskID || entry.TaskID == "" {
			seen[desc] = true
		}
	}

	descriptions := make([]string, 0, len(seen))
	for desc := range seen {
		descriptions = append(descriptions, desc)
	}
	sort.Strings(descriptions)
	return descriptions, nil
}

// ApplyOptions controls the single set-selection path.
type ApplyOptions struct {
	// StopTimer suspends a running timer before the change and restores
	// it afterwards.
	StopTimer bool
	// SnapshotPrevious saves the outgoing selection into the previous
	// slot. Switch suppresses this because it captured the snapshot
	// itself, from the live entry.
	SnapshotPrevious bool
}

// Apply commits a selection to the configuration. Every selection change,
// manual or switch, funnels through here.
func (r *Reconciler) Apply(sel models.Selection, opts ApplyOptions) error {
	if opts.SnapshotPrevious && !r.cfg.Selection().Empty() {
		if err := r.store.SavePrevious(r.cfg.Selection()); err != nil {
			fmt.Fprintf(r.out, "Warning: could not save previous selection: %v\n", err)
		}
	}

	var resume tracker.ResumeState
	if opts.StopTimer {
		resume = r.trk.Suspend()
	}

	// Derive the client from the project when the flow did not pick one.
	if sel.ProjectID != "" && sel.ClientID == "" {
		if project, err := workspace.FindProjectByID(r.cat, sel.ProjectID); err == nil && project != nil {
			sel.ClientID = project.ClientID
		}
	}

	if sel.ClientID != "" && sel.ClientID != r.cfg.ClientID {
		r.cfg.ClientID = sel.ClientID
		if client, err := workspace.FindClientByID(r.cat, sel.ClientID); err == nil && client != nil {
			fmt.Fprintf(r.out, "Client automatically updated to: %s\n", client.Name)
		}
	}

	if sel.ProjectID != "" && sel.ProjectID != r.cfg.ProjectID {
		r.cfg.ProjectID = sel.ProjectID
		if project, err := workspace.FindProjectByID(r.cat, sel.ProjectID); err == nil && project != nil {
			fmt.Fprintf(r.out, "Project changed to: %s\n", project.Name)
		}
	}

	r.cfg.TaskID = sel.TaskID
	r.cfg.TaskName = sel.TaskName
	r.cfg.Description = sel.Description

	if err := r.store.Save(r.cfg); err != nil {
		return err
	}

	if sel.TaskName != "" {
		fmt.Fprintf(r.out, "Task set to: %s\n", sel.TaskName)
	} else {
		fmt.Fprintln(r.out, "Task cleared (description-only entry)")
	}
	fmt.Fprintf(r.out, "Description set to: %s\n", sel.Description)

	if opts.StopTimer && resume.Any() {
		fmt.Fprintln(r.out, "Resuming tracking with the new selection...")
		if err := r.trk.Restore(resume); err != nil {
			fmt.Fprintf(r.out, "Warning: could not resume tracking: %v\n", err)
		}
	}
	return nil
}

// SwitchToPrevious swaps the selection with the previous-selection slot.
// The outgoing state is captured preferentially from the remote active
// entry, because the persisted selection can have drifted from an
// externally started timer. Invoking switch twice toggles back.
func (r *Reconciler) SwitchToPrevious() error {
	prev, err := r.store.LoadPrevious()
	if err != nil || prev.Empty() {
		return ErrNoPrevious
	}

	if err := r.snapshotLiveState(); err != nil {
		return err
	}

	if prev.Description == "" {
		return errors.New("previous selection is incomplete (no description)")
	}

	if prev.ProjectID != "" {
		project, err := workspace.FindProjectByID(r.cat, prev.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("previous project (ID: %s) no longer exists", prev.ProjectID)
		}
	}

	// Re-validate the task against the live task list; a deleted or moved
	// task degrades to description-only.
	if prev.ProjectID != "" && prev.TaskID != "" {
		tasks, err := r.gw.ProjectTasks(prev.ProjectID)
		if err != nil {
			fmt.Fprintf(r.out, "Warning: could not validate previous task: %v\n", err)
		} else if !taskExists(tasks, prev.TaskID) {
			fmt.Fprintf(r.out, "Warning: previous task %q no longer exists in the project\n", prev.TaskName)
			fmt.Fprintln(r.out, "Switching to description only (without formal task)...")
			prev.TaskID = ""
			prev.TaskName = ""
		}
	}

	fmt.Fprintln(r.out, "Switching back to previous selection...")
	return r.Apply(prev, ApplyOptions{StopTimer: true, SnapshotPrevious: false})
}

// snapshotLiveState overwrites the previous slot with the current state,
// read from the remote active entry when one exists.
func (r *Reconciler) snapshotLiveState() error {
	entry, err := r.gw.ActiveTimeEntry()
	if err != nil {
		return fmt.Errorf("reading active time entry: %w", err)
	}

	if entry == nil {
		fmt.Fprintln(r.out, "Warning: no timer currently running; using last known state, which may be stale")
		if !r.cfg.Selection().Empty() {
			return r.store.SavePrevious(r.cfg.Selection())
		}
		return nil
	}

	current := models.Selection{
		ProjectID:   entry.ProjectID,
		TaskID:      entry.TaskID,
		Description: entry.Description,
	}
	if entry.TaskID != "" && entry.ProjectID != "" {
		if task, err := workspace.FindTaskByID(r.cat, entry.ProjectID, entry.TaskID); err == nil && task != nil {
			current.TaskName = task.Name
		}
	}
	if entry.ProjectID != "" {
		if project, err := workspace.FindProjectByID(r.cat, entry.ProjectID); err == nil && project != nil {
			current.ClientID = project.ClientID
		}
	}

	fmt.Fprintln(r.out, "Current state captured from the running time entry")
	return r.store.SavePrevious(current)
}

func taskExists(tasks []models.Task, taskID string) bool {
	for _, task := range tasks {
		if task.ID == taskID {
			return true
		}
	}
	return false
}
