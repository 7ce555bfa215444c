package monitor

import (
	"fmt"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎬 Content Bot Monitor"))
	b.WriteString("\n\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.connected && m.status != nil {
		b.WriteString(boxStyle.Render(m.statsText()))
		b.WriteString("\n\n")
		b.WriteString(m.logsText())
	}

	if m.notice != "" {
		b.WriteString(highlightStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Press 't' to trigger a run | Press 'q' or Ctrl+C to quit"))
	return b.String()
}

func (m Model) stateText() string {
	if !m.connected {
		msg := "❌ Not connected"
		if m.err != nil {
			msg = fmt.Sprintf("%s: %v", msg, m.err)
		}
		return errorStyle.Render(msg)
	}
	if m.status != nil && m.status.IsRunning {
		return m.spinner.View() + " " + statusStyle.Render("Pipeline running...")
	}
	return statusStyle.Render("✅ Idle")
}

func (m Model) statsText() string {
	s := m.status.RunState
	return strings.Join([]string{
		fmt.Sprintf("Last run:     %s", formatTime(s.LastRunStartedAt)),
		fmt.Sprintf("Next run:     %s", formatTime(s.NextScheduledRunAt)),
		fmt.Sprintf("Total videos: %d", s.CompletedRunCount),
	}, "\n")
}

func (m Model) logsText() string {
	logs := m.status.Logs
	if len(logs) == 0 {
		return ""
	}
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}

	var b strings.Builder
	b.WriteString(infoStyle.Render("📝 Recent Activity:"))
	b.WriteString("\n")
	for _, e := range logs {
		line := fmt.Sprintf("   %s [%s] %s", e.Timestamp.Local().Format("15:04:05"), e.Source, e.Message)
		b.WriteString(levelStyle(e.Level).Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(timeLayout)
}
