package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/timer"
)

// viewState represents the currently active tab.
type viewState int

const (
	viewStudy viewState = iota
	viewCourses
	viewTasks
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Study", "Courses", "Tasks", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// authDoneMsg is sent once a login or signup succeeds.
type authDoneMsg struct{}

// sessionDoneMsg reports a session that was recorded, by the user or by the
// countdown reaching zero.
type sessionDoneMsg struct {
	summary timer.Summary
}

// --- Helpers ---

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(action string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", action, err), isError: true}
	}
}

// formatCountdown renders mm:ss, letting minutes grow past 59.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func colorDot(color string) string {
	if color == "" {
		color = string(colorPrimary)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// clamp keeps a list cursor inside [0, n).
func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}

func cursorRow(selected bool, text string) string {
	if selected {
		return selectedItemStyle.Render("> " + text)
	}
	return normalItemStyle.Render("  " + text)
}
