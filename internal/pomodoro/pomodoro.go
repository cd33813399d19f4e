// Package pomodoro integrates with GNOME Pomodoro over D-Bus, shelling out
// to gdbus. When the desktop timer is not reachable the integration reports
// itself unavailable and callers proceed without it.
package pomodoro

import (
	"fmt"
	"os/exec"
	"strings"
)

const (
	dbusDest      = "org.gnome.Pomodoro"
	dbusPath      = "/org/gnome/Pomodoro"
	dbusInterface = "org.gnome.Pomodoro"
)

// State is the desktop timer's reported phase.
type State string

const (
	StateIdle       State = "idle"
	StatePomodoro   State = "pomodoro"
	StateShortBreak State = "short-break"
	StateLongBreak  State = "long-break"
	StateUnknown    State = "unknown"
)

// IsBreak reports whether the state is one of the break phases.
func (s State) IsBreak() bool {
	return s == StateShortBreak || s == StateLongBreak
}

// Integration drives the desktop break timer. The runner indirection lets
// tests substitute the gdbus binary.
type Integration struct {
	runner func(args ...string) (string, error)
}

func New() *Integration {
	return &Integration{runner: runGdbus}
}

// NewWithRunner is used by tests.
func NewWithRunner(runner func(args ...string) (string, error)) *Integration {
	return &Integration{runner: runner}
}

func runGdbus(args ...string) (string, error) {
	out, err := exec.Command("gdbus", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gdbus call failed: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *Integration) call(method string, args ...string) error {
	cmd := []string{
		"call", "--session",
		"--dest", dbusDest,
		"--object-path", dbusPath,
		"--method", dbusInterface + "." + method,
	}
	cmd = append(cmd, args...)
	_, err := p.runner(cmd...)
	return err
}

func (p *Integration) property(name string) (string, error) {
	return p.runner(
		"call", "--session",
		"--dest", dbusDest,
		"--object-path", dbusPath,
		"--method", "org.freedesktop.DBus.Properties.Get",
		dbusInterface, name,
	)
}

func (p *Integration) Start() error  { return p.call("Start") }
func (p *Integration) Stop() error   { return p.call("Stop") }
func (p *Integration) Pause() error  { return p.call("Pause") }
func (p *Integration) Resume() error { return p.call("Resume") }
func (p *Integration) Skip() error   { return p.call("Skip") }

// State returns the current phase. An unreadable or empty property maps to
// idle/unknown rather than an error; callers only branch on break states.
func (p *Integration) State() State {
	raw, err := p.property("State")
	if err != nil {
		return StateUnknown
	}
	// The property arrives in D-Bus variant form, e.g. (<'pomodoro'>,).
	parts := strings.Split(raw, "'")
	if len(parts) < 2 || parts[1] == "" || parts[1] == "null" {
		return StateIdle
	}
	switch State(parts[1]) {
	case StatePomodoro, StateShortBreak, StateLongBreak:
		return State(parts[1])
	default:
		return StateIdle
	}
}

// IsRunning reports whether the timer is in the work phase.
func (p *Integration) IsRunning() bool {
	return p.State() == StatePomodoro
}

// IsAvailable probes the State property once. Unavailability means the
// feature is absent, not an error.
func (p *Integration) IsAvailable() bool {
	_, err := p.property("State")
	return err == nil
}
