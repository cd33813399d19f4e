// Package tray holds the poll/display state behind the desktop tray
// indicator. The remote resource is polled on a fixed interval; a local
// seconds-resolution clock free-runs between polls and drift reconciles at
// the next poll.
package tray

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/models"
)

const (
	PollInterval    = 30 * time.Second
	DisplayInterval = time.Second
)

// Monitor caches the last good remote state. A failed poll keeps showing
// the cached state rather than blanking; errors log once every tenth
// failure to avoid flooding.
type Monitor struct {
	gw  api.Gateway
	cfg *config.Config

	mu              sync.Mutex
	entry           *models.TimeEntry
	startedAt       time.Time
	lastDescription string
	projectNames    map[string]string
	errCount        int
	offline         bool

	now  func() time.Time
	logf func(format string, args ...interface{})
}

func NewMonitor(gw api.Gateway, cfg *config.Config) *Monitor {
	return &Monitor{
		gw:           gw,
		cfg:          cfg,
		projectNames: make(map[string]string),
		now:          time.Now,
		logf:         log.Printf,
	}
}

// Poll fetches the active entry and refreshes the cached state.
func (m *Monitor) Poll() {
	entry, err := m.gw.ActiveTimeEntry()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.errCount++
		m.offline = true
		if m.errCount%10 == 1 {
			m.logf("network error (count: %d): %v", m.errCount, err)
		}
		return
	}

	m.errCount = 0
	m.offline = false
	m.entry = entry

	if entry == nil {
		m.startedAt = time.Time{}
		return
	}

	m.lastDescription = entry.Description
	if start, err := time.Parse(time.RFC3339, entry.TimeInterval.Start); err == nil {
		m.startedAt = start
	}
	m.resolveProjectNameLocked(entry.ProjectID)
}

// resolveProjectNameLocked fills the name cache for one project, fetching
// the project list at most once per poll that needs it.
func (m *Monitor) resolveProjectNameLocked(projectID string) {
	if projectID == "" {
		return
	}
	if _, ok := m.projectNames[projectID]; ok {
		return
	}
	projects, err := m.gw.Projects()
	if err != nil {
		return
	}
	for _, p := range projects {
		m.projectNames[p.ID] = p.Name
	}
}

func (m *Monitor) Tracking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry != nil
}

// ElapsedLabel is the live HH:MM:SS display, computed locally between
// polls.
func (m *Monitor) ElapsedLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startedAt.IsZero() {
		return "--:--:--"
	}
	elapsed := int(m.now().Sub(m.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", elapsed/3600, (elapsed%3600)/60, elapsed%60)
}

func (m *Monitor) StatusLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		if !m.startedAt.IsZero() {
			desc := m.lastDescription
			if desc == "" {
				desc = "Unknown"
			}
			return fmt.Sprintf("Tracking: %s (offline)", desc)
		}
		return "Offline - check network"
	}
	if m.entry != nil {
		desc := m.entry.Description
		if desc == "" {
			desc = "No description"
		}
		return "Tracking: " + desc
	}
	return "Not tracking"
}

// ProjectLabel shows the active entry's project, falling back to the
// persisted selection when idle.
func (m *Monitor) ProjectLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	projectID := m.cfg.ProjectID
	if m.entry != nil {
		projectID = m.entry.ProjectID
	}
	if projectID == "" {
		return "No project selected"
	}
	if name, ok := m.projectNames[projectID]; ok {
		return "Project: " + name
	}
	return "Project: Unknown"
}

func (m *Monitor) ToggleLabel() string {
	if m.Tracking() {
		return "Stop Timer"
	}
	return "Start Timer"
}
