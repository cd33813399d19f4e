package selection

import (
	"fmt"
	"strings"

	"github.com/clockworkpc/clockify/internal/models"
	"github.com/clockworkpc/clockify/internal/workspace"
)

// Menu pseudo-entries. The reconciler owns list composition; the prompter
// only renders.
const (
	optionBackToProjects = "[Go back to Projects]"
	optionBackToTasks    = "[Go back to Tasks]"
	optionSelectClient   = "[Select Client]"
	optionCreateTask     = "[Create new task]"
	optionNewDescription = "[Enter new description]"
)

// Choice is the outcome of the task/description flow.
type Choice struct {
	TaskID      string
	TaskName    string
	Description string
	Back        bool
	Cancelled   bool
}

// SelectClientInteractive picks a client from the workspace. A nil client
// with a nil error means the selection was cancelled or nothing was found;
// callers treat that as user-cancellable, not fatal.
func (r *Reconciler) SelectClientInteractive() (*models.Client, error) {
	clients, err := r.cat.Clients()
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		fmt.Fprintln(r.out, "No clients found")
		return nil, nil
	}

	names := make([]string, len(clients))
	for i, client := range clients {
		names[i] = client.Name
	}

	current := ""
	if client, err := r.CurrentClient(); err == nil && client != nil {
		current = client.Name
	}

	res, err := r.prompt.Pick("Available Clients", names, current)
	if err != nil {
		return nil, err
	}
	if res.Cancelled {
		return nil, nil
	}
	return &clients[res.Index], nil
}

// SelectProjectInteractive picks a project, filtered by the current client
// when one is set. The first menu entry jumps to client selection and
// loops back.
func (r *Reconciler) SelectProjectInteractive() (*models.Project, error) {
	for {
		projects, err := r.cat.Projects()
		if err != nil {
			return nil, err
		}
		if len(projects) == 0 {
			fmt.Fprintln(r.out, "No projects found")
			return nil, nil
		}

		if r.cfg.ClientID != "" {
			filtered := projects[:0:0]
			for _, project := range projects {
				if project.ClientID == r.cfg.ClientID {
					filtered = append(filtered, project)
				}
			}
			if len(filtered) == 0 {
				name := r.cfg.ClientID
				if client, err := r.CurrentClient(); err == nil && client != nil {
					name = client.Name
				}
				fmt.Fprintf(r.out, "No projects found for client: %s\n", name)
				return nil, nil
			}
			projects = filtered
		}

		options := make([]string, 0, len(projects)+1)
		options = append(options, optionSelectClient)
		for _, project := range projects {
			options = append(options, project.Name)
		}

		current := ""
		if project, err := r.CurrentProject(); err == nil && project != nil {
			current = project.Name
		}

		res, err := r.prompt.Pick("Available Projects", options, current)
		if err != nil {
			return nil, err
		}
		if res.Cancelled {
			return nil, nil
		}
		if res.Index == 0 {
			client, err := r.SelectClientInteractive()
			if err != nil {
				return nil, err
			}
			if client != nil {
				if err := r.SetClient(client.ID); err != nil {
					return nil, err
				}
			}
			continue
		}
		return &projects[res.Index-1], nil
	}
}

// selectTaskStep picks one formal task of the current project, or creates
// a new one. A project with zero formal tasks only offers creation.
func (r *Reconciler) selectTaskStep(project *models.Project) (Choice, error) {
	tasks, err := r.cat.ProjectTasks(project.ID)
	if err != nil {
		tasks = nil
	}

	options := make([]string, 0, len(tasks)+2)
	options = append(options, optionBackToProjects)
	for _, task := range tasks {
		options = append(options, task.Name)
	}
	options = append(options, optionCreateTask)

	current := ""
	for _, task := range tasks {
		if task.ID == r.cfg.TaskID {
			current = task.Name
			break
		}
	}

	res, err := r.prompt.Pick(fmt.Sprintf("Formal tasks for project: %s", project.Name), options, current)
	if err != nil {
		return Choice{}, err
	}
	if res.Cancelled {
		return Choice{Cancelled: true}, nil
	}

	switch {
	case res.Index == 0:
		return Choice{Back: true}, nil
	case res.Index == len(options)-1:
		name := strings.TrimSpace(res.Input)
		if name == "" {
			entered, ok, err := r.prompt.Input(fmt.Sprintf("Enter name for new task in project %q", project.Name))
			if err != nil {
				return Choice{}, err
			}
			if !ok {
				return Choice{Cancelled: true}, nil
			}
			name = strings.TrimSpace(entered)
		}
		if name == "" {
			fmt.Fprintln(r.out, "Task name cannot be empty.")
			return Choice{Cancelled: true}, nil
		}
		task, err := r.createTask(project, name)
		if err != nil {
			return Choice{}, err
		}
		return Choice{TaskID: task.ID, TaskName: task.Name}, nil
	default:
		task := tasks[res.Index-1]
		return Choice{TaskID: task.ID, TaskName: task.Name}, nil
	}
}

// selectDescriptionStep picks or enters a description for the chosen task.
func (r *Reconciler) selectDescriptionStep(project *models.Project, taskID, taskName string) (string, bool, bool, error) {
	candidates, err := r.DescriptionCandidates(project.ID, taskID, workspace.DefaultTimeEntriesLimit)
	if err != nil {
		return "", false, false, err
	}

	options := make([]string, 0, len(candidates)+2)
	options = append(options, optionBackToTasks)
	options = append(options, candidates...)
	options = append(options, optionNewDescription)

	title := fmt.Sprintf("Descriptions for task: %s", taskName)
	if taskName == "" {
		title = fmt.Sprintf("Descriptions for project: %s", project.Name)
	}

	res, err := r.prompt.Pick(title, options, r.cfg.Description)
	if err != nil {
		return "", false, false, err
	}
	if res.Cancelled {
		return "", false, true, nil
	}

	switch {
	case res.Index == 0:
		return "", true, false, nil
	case res.Index == len(options)-1:
		desc := strings.TrimSpace(res.Input)
		if desc == "" {
			entered, ok, err := r.prompt.Input("Enter new description")
			if err != nil {
				return "", false, false, err
			}
			if !ok {
				return "", false, true, nil
			}
			desc = strings.TrimSpace(entered)
		}
		if desc == "" {
			fmt.Fprintln(r.out, "Description cannot be empty.")
			return "", false, true, nil
		}
		return desc, false, false, nil
	default:
		return candidates[res.Index-1], false, false, nil
	}
}

// SelectTaskAndDescription runs the task -> description flow against the
// current project, with back navigation between the two levels.
func (r *Reconciler) SelectTaskAndDescription() (Choice, error) {
	project, err := r.CurrentProject()
	if err != nil {
		return Choice{}, err
	}
	if project == nil {
		fmt.Fprintln(r.out, "No current project found. Set a project first.")
		return Choice{Cancelled: true}, nil
	}

	for {
		choice, err := r.selectTaskStep(project)
		if err != nil || choice.Back || choice.Cancelled {
			return choice, err
		}

		fmt.Fprintf(r.out, "\nSelected task: %s\n\n", choice.TaskName)

		for {
			desc, back, cancelled, err := r.selectDescriptionStep(project, choice.TaskID, choice.TaskName)
			if err != nil {
				return Choice{}, err
			}
			if cancelled {
				return Choice{Cancelled: true}, nil
			}
			if back {
				break
			}
			choice.Description = desc
			return choice, nil
		}
	}
}

// SelectTask runs the task/description flow and commits the result through
// the standard apply path.
func (r *Reconciler) SelectTask() error {
	choice, err := r.SelectTaskAndDescription()
	if err != nil {
		return err
	}
	if choice.Cancelled || choice.Back {
		fmt.Fprintln(r.out, "Task/description selection cancelled")
		return nil
	}
	return r.Apply(models.Selection{
		TaskID:      choice.TaskID,
		TaskName:    choice.TaskName,
		Description: choice.Description,
	}, ApplyOptions{StopTimer: true, SnapshotPrevious: true})
}

// SelectProjectTask is the combined flow: project, then task, then
// description, with the client updated automatically from the chosen
// project.
func (r *Reconciler) SelectProjectTask() error {
	for {
		project, err := r.SelectProjectInteractive()
		if err != nil {
			return err
		}
		if project == nil {
			fmt.Fprintln(r.out, "Project selection cancelled")
			return nil
		}

		if err := r.SetProject(project.ID); err != nil {
			return err
		}
		fmt.Fprintln(r.out)

		choice, err := r.SelectTaskAndDescription()
		if err != nil {
			return err
		}
		if choice.Back {
			continue
		}
		if choice.Cancelled {
			fmt.Fprintln(r.out, "Task/description selection cancelled")
			return nil
		}

		return r.Apply(models.Selection{
			ClientID:    project.ClientID,
			ProjectID:   project.ID,
			TaskID:      choice.TaskID,
			TaskName:    choice.TaskName,
			Description: choice.Description,
		}, ApplyOptions{StopTimer: true, SnapshotPrevious: true})
	}
}
