package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clockworkpc/clockify/internal/models"
)

const DefaultBaseURL = "https://api.clockify.me/api/v1"

// Client talks to the Clockify v1 REST API. All calls are synchronous and
// blocking; no timeout beyond the http.Client default is enforced.
type Client struct {
	baseURL     string
	token       string
	workspaceID string
	httpClient  *http.Client

	userID string // cached after the first lookup
}

func NewClient(token, workspaceID string) *Client {
	return &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		workspaceID: workspaceID,
		httpClient:  &http.Client{},
	}
}

// WithBaseURL points the client at a different API root. Used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

func (c *Client) WorkspaceID() string { return c.workspaceID }

// request performs one API call. DELETE and 204 responses carry no body;
// out may be nil in that case.
func (c *Client) request(method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s/%s", c.baseURL, endpoint), body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("X-Api-Key", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d", ErrRequestFailed, method, endpoint, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return nil
}

func (c *Client) CurrentUser() (models.User, error) {
	var user models.User
	err := c.request("GET", "user", nil, &user)
	return user, err
}

func (c *Client) userIDCached() (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}
	user, err := c.CurrentUser()
	if err != nil {
		return "", err
	}
	c.userID = user.ID
	return c.userID, nil
}

func (c *Client) Workspaces() ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := c.request("GET", "workspaces", nil, &workspaces)
	return workspaces, err
}

func (c *Client) Clients() ([]models.Client, error) {
	var clients []models.Client
	err := c.request("GET", fmt.Sprintf("workspaces/%s/clients", c.workspaceID), nil, &clients)
	return clients, err
}

func (c *Client) Projects() ([]models.Project, error) {
	var projects []models.Project
	err := c.request("GET", fmt.Sprintf("workspaces/%s/projects", c.workspaceID), nil, &projects)
	return projects, err
}

func (c *Client) ProjectTasks(projectID string) ([]models.Task, error) {
	var tasks []models.Task
	err := c.request("GET", fmt.Sprintf("workspaces/%s/projects/%s/tasks", c.workspaceID, projectID), nil, &tasks)
	return tasks, err
}

// TimeEntries returns the user's most recent entries, newest first.
func (c *Client) TimeEntries(limit int) ([]models.TimeEntry, error) {
	userID, err := c.userIDCached()
	if err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	endpoint := fmt.Sprintf("workspaces/%s/user/%s/time-entries?page-size=%d", c.workspaceID, userID, limit)
	err = c.request("GET", endpoint, nil, &entries)
	return entries, err
}

// ActiveTimeEntry returns the single in-progress entry, or nil when the
// timer is idle.
func (c *Client) ActiveTimeEntry() (*models.TimeEntry, error) {
	userID, err := c.userIDCached()
	if err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	endpoint := fmt.Sprintf("workspaces/%s/user/%s/time-entries?in-progress=true", c.workspaceID, userID)
	if err := c.request("GET", endpoint, nil, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

type startEntryRequest struct {
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId"`
	TaskID      string `json:"taskId,omitempty"`
}

type stopEntryRequest struct {
	End string `json:"end"`
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

func (c *Client) StartTimeEntry(description, projectID, taskID string) (*models.TimeEntry, error) {
	payload := startEntryRequest{
		Start:       nowUTC(),
		Description: description,
		ProjectID:   projectID,
		TaskID:      taskID,
	}
	var entry models.TimeEntry
	endpoint := fmt.Sprintf("workspaces/%s/time-entries", c.workspaceID)
	if err := c.request("POST", endpoint, payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) StopTimeEntry() (*models.TimeEntry, error) {
	userID, err := c.userIDCached()
	if err != nil {
		return nil, err
	}
	var entry models.TimeEntry
	endpoint := fmt.Sprintf("workspaces/%s/user/%s/time-entries", c.workspaceID, userID)
	if err := c.request("PATCH", endpoint, stopEntryRequest{End: nowUTC()}, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateTimeEntry records a closed interval with explicit start and end
// timestamps (ISO-8601 UTC with trailing Z).
func (c *Client) CreateTimeEntry(projectID, taskID, description, start, end string) (*models.TimeEntry, error) {
	payload := startEntryRequest{
		Start:       start,
		End:         end,
		Description: description,
		ProjectID:   projectID,
		TaskID:      taskID,
	}
	var entry models.TimeEntry
	endpoint := fmt.Sprintf("workspaces/%s/time-entries", c.workspaceID)
	if err := c.request("POST", endpoint, payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

type createTaskRequest struct {
	Name string `json:"name"`
}

func (c *Client) CreateTask(projectID, name string) (*models.Task, error) {
	var task models.Task
	endpoint := fmt.Sprintf("workspaces/%s/projects/%s/tasks", c.workspaceID, projectID)
	if err := c.request("POST", endpoint, createTaskRequest{Name: name}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(projectID, taskID string) error {
	endpoint := fmt.Sprintf("workspaces/%s/projects/%s/tasks/%s", c.workspaceID, projectID, taskID)
	return c.request("DELETE", endpoint, nil, nil)
}

func (c *Client) DeleteTimeEntry(entryID string) error {
	endpoint := fmt.Sprintf("workspaces/%s/time-entries/%s", c.workspaceID, entryID)
	return c.request("DELETE", endpoint, nil, nil)
}
