// Package tracker owns the timer lifecycle: starting and stopping the
// remote entry, the stop cooldown guard, and coordination with the desktop
// break timer around selection changes.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/models"
	"github.com/clockworkpc/clockify/internal/pomodoro"
)

// stopCooldown is how long after a manual stop an idle-state start request
// is treated as a spurious auto-resume from the break timer integration.
const stopCooldown = 10 * time.Second

var (
	ErrAlreadyTracking = errors.New("time tracking is already active")
	ErrNotTracking     = errors.New("no active time entry found")
	ErrNoDescription   = errors.New("no description set; use --description or run 'task select' first")
	ErrNoProject       = errors.New("no project set; use --project-id or run 'project select' first")
)

// BreakTimer is the slice of the break-timer integration the tracker
// branches on.
type BreakTimer interface {
	IsAvailable() bool
	State() pomodoro.State
	IsRunning() bool
	Pause() error
	Resume() error
}

// ResumeState is what was running before a selection change suspended the
// timers. It is threaded through the stop/apply/restart sequence as a
// plain value instead of flags on a shared object.
type ResumeState struct {
	WasTracking     bool
	WasBreakRunning bool
}

func (r ResumeState) Any() bool { return r.WasTracking || r.WasBreakRunning }

type Tracker struct {
	gw    api.Gateway
	store *config.Store
	cfg   *config.Config
	brk   BreakTimer
	out   io.Writer

	now func() time.Time
}

func New(gw api.Gateway, store *config.Store, cfg *config.Config, brk BreakTimer, out io.Writer) *Tracker {
	return &Tracker{
		gw:    gw,
		store: store,
		cfg:   cfg,
		brk:   brk,
		out:   out,
		now:   time.Now,
	}
}

// IsTracking consults the remote active-entry resource, the sole source of
// truth for whether a timer is running. A gateway failure reads as idle.
func (t *Tracker) IsTracking() bool {
	entry, err := t.gw.ActiveTimeEntry()
	return err == nil && entry != nil
}

func (t *Tracker) CurrentEntry() (*models.TimeEntry, error) {
	return t.gw.ActiveTimeEntry()
}

// Start begins a remote time entry. Description and project must be
// resolvable from the arguments or the persisted selection before any
// remote mutation is attempted. A stale task reference is dropped with a
// warning and the entry proceeds description-only.
func (t *Tracker) Start(description, projectID, taskID string) error {
	if t.IsTracking() {
		return ErrAlreadyTracking
	}

	if description != "" {
		t.cfg.Description = description
	} else if t.cfg.Description == "" {
		return ErrNoDescription
	}
	if projectID != "" {
		t.cfg.ProjectID = projectID
	} else if t.cfg.ProjectID == "" {
		return ErrNoProject
	}
	if taskID != "" {
		t.cfg.TaskID = taskID
	}

	t.revalidateTask()

	if t.brk.IsAvailable() {
		state := t.brk.State()
		if state.IsBreak() {
			return fmt.Errorf("break timer in %s state, not starting", state)
		}
		if state == pomodoro.StateIdle || state == pomodoro.StateUnknown {
			if last := t.cfg.LastStop(); !last.IsZero() {
				since := t.now().Sub(last)
				if since < stopCooldown {
					return fmt.Errorf("ignoring resume request %.1fs after stop (likely spurious)", since.Seconds())
				}
			}
		}
	}

	taskInfo := ""
	if t.cfg.TaskName != "" {
		taskInfo = fmt.Sprintf(" (Task: %s)", t.cfg.TaskName)
	}
	fmt.Fprintf(t.out, "Starting time entry: %s%s\n", t.cfg.Description, taskInfo)

	entry, err := t.gw.StartTimeEntry(t.cfg.Description, t.cfg.ProjectID, t.cfg.TaskID)
	if err != nil {
		return fmt.Errorf("starting time entry: %w", err)
	}

	t.cfg.ActiveEntryID = entry.ID
	t.cfg.LastStopUnix = 0
	if err := t.store.Save(t.cfg); err != nil {
		fmt.Fprintf(t.out, "Warning: could not persist state: %v\n", err)
	}
	fmt.Fprintf(t.out, "Time entry started (ID: %s)\n", entry.ID)
	return nil
}

// revalidateTask checks the selected task still belongs to the selected
// project. A missing task degrades to description-only; a failed lookup is
// only warned about.
func (t *Tracker) revalidateTask() {
	if t.cfg.TaskID == "" {
		return
	}
	tasks, err := t.gw.ProjectTasks(t.cfg.ProjectID)
	if err != nil {
		fmt.Fprintf(t.out, "Warning: could not validate task: %v\n", err)
		return
	}
	for _, task := range tasks {
		if task.ID == t.cfg.TaskID {
			return
		}
	}
	fmt.Fprintf(t.out, "Warning: task %q no longer exists in the selected project\n", t.cfg.TaskName)
	fmt.Fprintln(t.out, "Starting time entry without a formal task...")
	t.cfg.TaskID = ""
	t.cfg.TaskName = ""
}

// Stop closes the active remote entry. Local tracking state is cleared and
// the stop timestamp recorded even when the remote call fails, to avoid
// getting stuck with a phantom active entry.
func (t *Tracker) Stop() error {
	if !t.IsTracking() {
		return ErrNotTracking
	}

	fmt.Fprintln(t.out, "Stopping time entry...")
	entry, err := t.gw.StopTimeEntry()

	t.cfg.ActiveEntryID = ""
	t.cfg.LastStopUnix = t.now().Unix()
	if saveErr := t.store.Save(t.cfg); saveErr != nil {
		fmt.Fprintf(t.out, "Warning: could not persist state: %v\n", saveErr)
	}

	if err != nil {
		return fmt.Errorf("stopping time entry: %w", err)
	}
	fmt.Fprintf(t.out, "Time entry stopped (ID: %s)\n", entry.ID)
	return nil
}

// Suspend captures what is currently running and stops/pauses both timers
// ahead of a selection change. The returned state drives Restore.
func (t *Tracker) Suspend() ResumeState {
	state := ResumeState{WasTracking: t.IsTracking()}
	if t.brk.IsAvailable() {
		state.WasBreakRunning = t.brk.IsRunning()
	}

	if state.WasTracking {
		fmt.Fprintln(t.out, "Stopping current timer for the switch...")
		if err := t.Stop(); err != nil {
			fmt.Fprintf(t.out, "Warning: failed to stop current entry: %v\n", err)
		}
	}
	if state.WasBreakRunning {
		fmt.Fprintln(t.out, "Pausing break timer...")
		if err := t.brk.Pause(); err != nil {
			fmt.Fprintf(t.out, "Warning: failed to pause break timer: %v\n", err)
		}
	}
	return state
}

// Restore resumes whatever Suspend stopped. The break timer resumes before
// the remote start: Start refuses to run while the break timer still
// reports a break state, so the order matters.
func (t *Tracker) Restore(state ResumeState) error {
	if !state.Any() {
		return nil
	}

	if state.WasBreakRunning && t.brk.IsAvailable() {
		fmt.Fprintln(t.out, "Resuming break timer...")
		if err := t.brk.Resume(); err != nil {
			fmt.Fprintf(t.out, "Warning: failed to resume break timer: %v\n", err)
		}
	}

	if err := t.Start("", "", ""); err != nil {
		return fmt.Errorf("restarting timer: %w", err)
	}
	return nil
}

// ChangeDescription stops the running entry, swaps the description and
// restarts only when both the remote timer and the break timer were active
// beforehand. A description change alone does not restart tracking.
func (t *Tracker) ChangeDescription(description string) error {
	state := ResumeState{WasTracking: t.IsTracking()}
	if t.brk.IsAvailable() {
		state.WasBreakRunning = t.brk.IsRunning()
	}

	if state.WasTracking {
		if err := t.Stop(); err != nil {
			fmt.Fprintf(t.out, "Warning: failed to stop current entry: %v\n", err)
		}
		if state.WasBreakRunning {
			fmt.Fprintln(t.out, "Pausing break timer...")
			if err := t.brk.Pause(); err != nil {
				fmt.Fprintf(t.out, "Warning: failed to pause break timer: %v\n", err)
			}
		}
	}

	t.cfg.Description = description
	if err := t.store.Save(t.cfg); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Description updated to: %s\n", description)

	if state.WasTracking && state.WasBreakRunning {
		fmt.Fprintln(t.out, "Restarting with the new description...")
		return t.Restore(state)
	}
	if state.WasTracking {
		fmt.Fprintln(t.out, "Use 'start' to begin tracking with the new description.")
	}
	return nil
}

// SyncWithBreakTimer reconciles the remote timer against the break timer's
// running state.
func (t *Tracker) SyncWithBreakTimer() error {
	if !t.brk.IsAvailable() {
		return errors.New("break timer integration not available")
	}

	breakRunning := t.brk.IsRunning()
	tracking := t.IsTracking()

	switch {
	case breakRunning && !tracking:
		fmt.Fprintln(t.out, "Break timer is running but the remote timer is not. Starting...")
		return t.Start("", "", "")
	case !breakRunning && tracking:
		fmt.Fprintln(t.out, "Remote timer is running but the break timer is not. Stopping...")
		return t.Stop()
	default:
		fmt.Fprintln(t.out, "Timers are in sync")
		return nil
	}
}
