package pomodoro

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubRunner(output string, err error, calls *[][]string) func(args ...string) (string, error) {
	return func(args ...string) (string, error) {
		if calls != nil {
			*calls = append(*calls, args)
		}
		return output, err
	}
}

func TestIntegration_State(t *testing.T) {
	cases := []struct {
		name   string
		output string
		err    error
		want   State
	}{
		{"work phase", "(<'pomodoro'>,)", nil, StatePomodoro},
		{"short break", "(<'short-break'>,)", nil, StateShortBreak},
		{"long break", "(<'long-break'>,)", nil, StateLongBreak},
		{"empty variant", "(<''>,)", nil, StateIdle},
		{"null variant", "(<'null'>,)", nil, StateIdle},
		{"garbage", "nonsense", nil, StateIdle},
		{"dbus error", "", errors.New("gdbus call failed"), StateUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewWithRunner(stubRunner(tc.output, tc.err, nil))
			assert.Equal(t, tc.want, p.State())
		})
	}
}

func TestState_IsBreak(t *testing.T) {
	assert.True(t, StateShortBreak.IsBreak())
	assert.True(t, StateLongBreak.IsBreak())
	assert.False(t, StatePomodoro.IsBreak())
	assert.False(t, StateIdle.IsBreak())
	assert.False(t, StateUnknown.IsBreak())
}

func TestIntegration_CallArguments(t *testing.T) {
	var calls [][]string
	p := NewWithRunner(stubRunner("()", nil, &calls))

	assert.NoError(t, p.Start())
	assert.NoError(t, p.Skip())

	assert.Len(t, calls, 2)
	assert.Contains(t, strings.Join(calls[0], " "), "org.gnome.Pomodoro.Start")
	assert.Contains(t, strings.Join(calls[1], " "), "org.gnome.Pomodoro.Skip")
	assert.Contains(t, calls[0], "--session")
}

func TestIntegration_IsRunning(t *testing.T) {
	p := NewWithRunner(stubRunner("(<'pomodoro'>,)", nil, nil))
	assert.True(t, p.IsRunning())

	p = NewWithRunner(stubRunner("(<'short-break'>,)", nil, nil))
	assert.False(t, p.IsRunning())
}

func TestIntegration_IsAvailable(t *testing.T) {
	p := NewWithRunner(stubRunner("(<'pomodoro'>,)", nil, nil))
	assert.True(t, p.IsAvailable())

	p = NewWithRunner(stubRunner("", errors.New("no session bus"), nil))
	assert.False(t, p.IsAvailable())
}
