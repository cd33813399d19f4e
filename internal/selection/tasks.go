package selection

import (
	"fmt"

	"github.com/clockworkpc/clockify/internal/models"
)

// createTask creates a formal task in the project after a duplicate check
// and invalidates the cached task list.
func (r *Reconciler) createTask(project *models.Project, name string) (*models.Task, error) {
	existing, err := r.cat.ProjectTasks(project.ID)
	if err == nil {
		for _, task := range existing {
			if task.Name == name {
				return nil, fmt.Errorf("task %q already exists in project %q", name, project.Name)
			}
		}
	}

	fmt.Fprintf(r.out, "Creating formal task %q in project %q...\n", name, project.Name)
	task, err := r.gw.CreateTask(project.ID, name)
	if err != nil {
		return nil, fmt.Errorf("creating task %q: %w", name, err)
	}

	r.cat.InvalidateTasks(project.ID)
	fmt.Fprintf(r.out, "Task %q created (ID: %s)\n", task.Name, task.ID)
	return task, nil
}

// CreateTask creates a formal task in the current project.
func (r *Reconciler) CreateTask(name string) error {
	project, err := r.CurrentProject()
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("no current project found; set a project first")
	}
	_, err = r.createTask(project, name)
	return err
}

// DeleteTask deletes a formal task from the current project after
// confirmation. Past entries keep their project but lose the task; the
// current selection drops its task fields when it referenced the deleted
// one.
func (r *Reconciler) DeleteTask(name string) error {
	project, err := r.CurrentProject()
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("no current project found; set a project first")
	}

	tasks, err := r.cat.ProjectTasks(project.ID)
	if err != nil {
		return err
	}
	var target *models.Task
	for i := range tasks {
		if tasks[i].Name == name {
			target = &tasks[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("task %q not found in project %q", name, project.Name)
	}

	fmt.Fprintf(r.out, "Deleting task %q removes it permanently; its time entries keep the project but lose the task.\n", name)
	ok, err := r.prompt.Confirm("Are you sure you want to delete this task?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(r.out, "Task deletion cancelled.")
		return nil
	}

	if err := r.gw.DeleteTask(project.ID, target.ID); err != nil {
		return fmt.Errorf("deleting task %q: %w", name, err)
	}
	r.cat.InvalidateTasks(project.ID)
	fmt.Fprintf(r.out, "Task %q deleted\n", name)

	if r.cfg.TaskID == target.ID {
		r.cfg.TaskID = ""
		r.cfg.TaskName = ""
		if err := r.store.Save(r.cfg); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Cleared current task setting as it was deleted.")
	}
	return nil
}

// ListTasks prints the current project's formal tasks with the
// descriptions used against each.
func (r *Reconciler) ListTasks() error {
	project, err := r.CurrentProject()
	if err != nil {
		return err
	}
	if project == nil {
		fmt.Fprintln(r.out, "No current project found. Set a project first.")
		return nil
	}

	fmt.Fprintf(r.out, "Formal tasks for project: %s\n\n", project.Name)

	tasks, err := r.cat.ProjectTasks(project.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "No formal tasks found for this project")
		return nil
	}

	for _, task := range tasks {
		fmt.Fprintf(r.out, "Task: %s\n", task.Name)
		descriptions, err := r.DescriptionCandidates(project.ID, task.ID, 100)
		if err != nil || len(descriptions) == 0 {
			fmt.Fprintln(r.out, "  (no descriptions used yet)")
		} else {
			for _, desc := range descriptions {
				fmt.Fprintf(r.out, "  - %s\n", desc)
			}
		}
		fmt.Fprintln(r.out)
	}
	return nil
}
