package monitor

import (
	"contentbot/types"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF4F4F"
	colorInfo      = "#8A8A8A"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorPrimary)).
		MarginTop(1).
		MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorSuccess))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorError))

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorInfo))

	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(0, 2)

	highlightStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorHighlight)).
		Background(lipgloss.Color(colorPrimary)).
		Padding(0, 1)
)

func levelStyle(level types.Level) lipgloss.Style {
	switch level {
	case types.LevelSuccess:
		return statusStyle
	case types.LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
