package monitor

import (
	"contentbot/types"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxLogLines is how many recent entries the dashboard shows
const maxLogLines = 15

// Model is the dashboard state, refreshed from the server on every tick
type Model struct {
	client  *Client
	spinner spinner.Model

	status     *types.StatusResponse
	connected  bool
	err        error
	triggering bool
	notice     string
}

// NewModel creates a dashboard for the server at baseURL
func NewModel(baseURL string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	return Model{
		client:  NewClient(baseURL),
		spinner: s,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.client),
		tickCmd(),
		m.spinner.Tick,
	)
}
