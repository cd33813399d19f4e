package events

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded by the CLI.
const (
	KindStart  = "start"
	KindStop   = "stop"
	KindSwitch = "switch"
)

type Event struct {
	ID          string
	Kind        string
	Description string
	ProjectID   string
	TaskID      string
	CreatedAt   time.Time
}

type Store struct {
	db *sql.DB
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one event.
func (s *Store) Record(kind, description, projectID, taskID string) error {
	_, err := s.db.Exec(`
		INSERT INTO events (id, kind, description, project_id, task_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), kind, description, projectID, taskID, time.Now().UTC())
	return err
}

// Recent returns the newest events first.
func (s *Store) Recent(limit int) ([]Event, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, description, project_id, task_id, created_at
		FROM events
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Description, &e.ProjectID, &e.TaskID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
