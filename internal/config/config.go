package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/clockworkpc/clockify/internal/models"
)

// Config is the durable configuration document. Every mutation is written
// back as a whole document; there is no cross-process locking, so two
// concurrent invocations race with last-writer-wins semantics.
type Config struct {
	Token       string `toml:"token,omitempty"`
	WorkspaceID string `toml:"workspace_id,omitempty"`

	ClientID    string `toml:"client_id,omitempty"`
	ProjectID   string `toml:"project_id,omitempty"`
	TaskID      string `toml:"task_id,omitempty"`
	TaskName    string `toml:"task_name,omitempty"`
	Description string `toml:"description,omitempty"`

	ActiveEntryID string `toml:"active_entry_id,omitempty"`
	LastStopUnix  int64  `toml:"last_stop_unix,omitempty"`
}

// Selection returns the selection fields of the document.
func (c *Config) Selection() models.Selection {
	return models.Selection{
		ClientID:    c.ClientID,
		ProjectID:   c.ProjectID,
		TaskID:      c.TaskID,
		TaskName:    c.TaskName,
		Description: c.Description,
	}
}

// SetSelection replaces the selection fields of the document.
func (c *Config) SetSelection(sel models.Selection) {
	c.ClientID = sel.ClientID
	c.ProjectID = sel.ProjectID
	c.TaskID = sel.TaskID
	c.TaskName = sel.TaskName
	c.Description = sel.Description
}

// LastStop returns the recorded stop timestamp, zero when none.
func (c *Config) LastStop() time.Time {
	if c.LastStopUnix == 0 {
		return time.Time{}
	}
	return time.Unix(c.LastStopUnix, 0)
}

// MissingKeys lists the required keys that are not set. A non-empty result
// is fatal at startup, before any remote call.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if c.WorkspaceID == "" {
		missing = append(missing, "workspace_id")
	}
	return missing
}

// Store reads and writes the two on-disk documents: the durable
// configuration and the single-slot previous-selection snapshot.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. An empty dir selects the default
// location under the user config directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "clockify")
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) configPath() string   { return filepath.Join(s.dir, "config.toml") }
func (s *Store) previousPath() string { return filepath.Join(s.dir, "previous.toml") }

// DatabasePath is where the local session-event log lives.
func (s *Store) DatabasePath() string {
	return filepath.Join(s.dir, "events.sqlite")
}

// LockPath is the tray companion's single-instance lock file.
func (s *Store) LockPath() string {
	return filepath.Join(s.dir, "tray.lock")
}

func (s *Store) EnsureDirectories() error {
	return os.MkdirAll(s.dir, 0755)
}

// Load reads the configuration document. A missing or corrupt file degrades
// to an empty default rather than failing.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(s.configPath()); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(s.configPath(), cfg); err != nil {
		return &Config{}, nil
	}

	return cfg, nil
}

// Save writes the whole configuration document.
func (s *Store) Save(cfg *Config) error {
	if err := s.EnsureDirectories(); err != nil {
		return err
	}

	f, err := os.Create(s.configPath())
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LoadPrevious reads the previous-selection snapshot. Missing or corrupt
// files yield an empty selection.
func (s *Store) LoadPrevious() (models.Selection, error) {
	var sel models.Selection

	if _, err := os.Stat(s.previousPath()); os.IsNotExist(err) {
		return sel, nil
	}

	if _, err := toml.DecodeFile(s.previousPath(), &sel); err != nil {
		return models.Selection{}, nil
	}

	return sel, nil
}

// SavePrevious overwrites the previous-selection snapshot. One slot only:
// a later save replaces the earlier one, it is not a history stack.
func (s *Store) SavePrevious(sel models.Selection) error {
	if err := s.EnsureDirectories(); err != nil {
		return err
	}

	f, err := os.Create(s.previousPath())
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(sel)
}
