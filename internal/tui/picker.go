// Package tui renders the interactive selection menus with bubbletea.
package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clockworkpc/clockify/internal/selection"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// Prompt implements selection.Prompter on a terminal.
type Prompt struct {
	in  io.Reader
	out io.Writer
}

func NewPrompt() *Prompt {
	return &Prompt{in: os.Stdin, out: os.Stdout}
}

type pickerModel struct {
	title   string
	options []string
	current string

	cursor int
	input  textinput.Model

	result selection.PickResult
}

func newPickerModel(title string, options []string, current string) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to enter a new value"
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	cursor := 0
	for i, opt := range options {
		if current != "" && opt == current {
			cursor = i
			break
		}
	}

	return pickerModel{
		title:   title,
		options: options,
		current: current,
		cursor:  cursor,
		input:   ti,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result = selection.PickResult{Cancelled: true}
			return m, tea.Quit

		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
			return m, nil

		case "enter":
			typed := strings.TrimSpace(m.input.Value())
			if typed != "" && isCreateOption(m.options[len(m.options)-1]) {
				m.result = selection.PickResult{Index: len(m.options) - 1, Input: typed}
				return m, tea.Quit
			}
			m.result = selection.PickResult{Index: m.cursor}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		line := opt
		if m.current != "" && opt == m.current {
			line += currentStyle.Render(" (current)")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("up/down: move · enter: select · esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

func isCreateOption(option string) bool {
	lower := strings.ToLower(option)
	return strings.HasPrefix(lower, "[create new") || strings.HasPrefix(lower, "[enter new")
}

// Pick shows one selection menu. A single option is auto-selected without
// rendering a menu, matching the non-interactive fast path.
func (p *Prompt) Pick(title string, options []string, current string) (selection.PickResult, error) {
	if len(options) == 0 {
		fmt.Fprintln(p.out, "No items to select from.")
		return selection.PickResult{Cancelled: true}, nil
	}
	if len(options) == 1 {
		fmt.Fprintf(p.out, "Auto-selected: %s\n", options[0])
		return selection.PickResult{Index: 0}, nil
	}

	program := tea.NewProgram(newPickerModel(title, options, current))
	final, err := program.Run()
	if err != nil {
		return selection.PickResult{}, err
	}
	return final.(pickerModel).result, nil
}

// Input reads one line of free text.
func (p *Prompt) Input(prompt string) (string, bool, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		return "", false, scanner.Err()
	}
	text := strings.TrimSpace(scanner.Text())
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *Prompt) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/N): ", prompt)
	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
