package models

// Remote workspace entities as returned by the Clockify REST API.

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

// Task is a formal task. Time entries may reference one or none.
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
}

type TimeInterval struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// TimeEntry is a tracked interval. An entry with an empty interval end is
// the active one; the remote service allows at most one per user.
type TimeEntry struct {
	ID           string       `json:"id"`
	Description  string       `json:"description"`
	ProjectID    string       `json:"projectId"`
	TaskID       string       `json:"taskId,omitempty"`
	TimeInterval TimeInterval `json:"timeInterval"`
}

// Active reports whether the entry is still running.
func (e TimeEntry) Active() bool {
	return e.TimeInterval.End == ""
}

// Selection is the local hierarchical choice of what the next start will
// use. TaskID and TaskName are optional: description-only entries are a
// valid persistent state, not an error case.
type Selection struct {
	ClientID    string `toml:"client_id,omitempty"`
	ProjectID   string `toml:"project_id,omitempty"`
	TaskID      string `toml:"task_id,omitempty"`
	TaskName    string `toml:"task_name,omitempty"`
	Description string `toml:"description,omitempty"`
}

// Empty reports whether no field of the selection is set.
func (s Selection) Empty() bool {
	return s.ClientID == "" && s.ProjectID == "" && s.TaskID == "" &&
		s.TaskName == "" && s.Description == ""
}

// Combination is one distinct (client, project, task, description) tuple
// reconstructed from recent time entry history.
type Combination struct {
	ClientID    string
	ClientName  string
	ProjectID   string
	ProjectName string
	TaskID      string
	TaskName    string
	Description string
}
