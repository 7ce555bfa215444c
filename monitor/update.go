package monitor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.client), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatus(msg), nil
	case TriggerResultMsg:
		return m.handleTriggerResult(msg), pollStatus(m.client)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "t", "T":
		if m.triggering {
			return m, nil
		}
		m.triggering = true
		m.notice = "Triggering run..."
		return m, triggerRun(m.client)
	}
	return m, nil
}

func (m Model) handleStatus(msg StatusUpdateMsg) Model {
	if msg.Err != nil {
		m.connected = false
		m.err = msg.Err
		return m
	}
	m.connected = true
	m.err = nil
	m.status = msg.Status
	return m
}

func (m Model) handleTriggerResult(msg TriggerResultMsg) Model {
	m.triggering = false
	switch {
	case errors.Is(msg.Err, ErrConflict):
		m.notice = "A job is already running"
	case msg.Err != nil:
		m.notice = fmt.Sprintf("Trigger failed: %v", msg.Err)
	default:
		m.notice = fmt.Sprintf("Run %s started", msg.RunID)
	}
	return m
}
