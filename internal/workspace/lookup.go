package workspace

import (
	"strings"

	"github.com/clockworkpc/clockify/internal/models"
)

// Lookup helpers shared by the selection flows. A nil result means the
// entity was not found; lookups never fabricate entries.

func FindClientByID(cat Catalog, id string) (*models.Client, error) {
	clients, err := cat.Clients()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func FindClientByName(cat Catalog, name string) (*models.Client, error) {
	clients, err := cat.Clients()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].Name == name {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func FindProjectByID(cat Catalog, id string) (*models.Project, error) {
	projects, err := cat.Projects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, nil
}

func FindProjectByName(cat Catalog, name string) (*models.Project, error) {
	projects, err := cat.Projects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, nil
}

func FindTaskByID(cat Catalog, projectID, taskID string) (*models.Task, error) {
	tasks, err := cat.ProjectTasks(projectID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

func FindTaskByName(cat Catalog, projectID, name string) (*models.Task, error) {
	tasks, err := cat.ProjectTasks(projectID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].Name == name {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// RecentCombinations reconstructs the most recent distinct
// (client, project, task, description) tuples from time entry history,
// newest first, keeping the first occurrence of each tuple.
func RecentCombinations(cat Catalog, entriesLimit, limit int) ([]models.Combination, error) {
	entries, err := cat.TimeEntries(entriesLimit)
	if err != nil {
		return nil, err
	}
	projects, err := cat.Projects()
	if err != nil {
		return nil, err
	}
	clients, err := cat.Clients()
	if err != nil {
		return nil, err
	}

	projectByID := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}
	clientByID := make(map[string]models.Client, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
	}

	seen := make(map[string]bool)
	var combos []models.Combination
	for _, entry := range entries {
		if len(combos) >= limit {
			break
		}
		desc := strings.TrimSpace(entry.Description)
		if desc == "" && entry.ProjectID == "" {
			continue
		}

		combo := models.Combination{
			ProjectID:   entry.ProjectID,
			TaskID:      entry.TaskID,
			Description: desc,
		}
		if p, ok := projectByID[entry.ProjectID]; ok {
			combo.ProjectName = p.Name
			combo.ClientID = p.ClientID
			if c, ok := clientByID[p.ClientID]; ok {
				combo.ClientName = c.Name
			}
		}
		if entry.TaskID != "" {
			if task, err := FindTaskByID(cat, entry.ProjectID, entry.TaskID); err == nil && task != nil {
				combo.TaskName = task.Name
			}
		}

		key := combo.ClientID + "\x00" + combo.ProjectID + "\x00" + combo.TaskID + "\x00" + desc
		if seen[key] {
			continue
		}
		seen[key] = true
		combos = append(combos, combo)
	}
	return combos, nil
}
