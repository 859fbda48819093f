package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#38BDF8")
	colorAccent    = lipgloss.Color("#F472B6")
	colorMuted     = lipgloss.Color("#64748B")
	colorSuccess   = lipgloss.Color("#34D399")
	colorWarning   = lipgloss.Color("#FBBF24")
	colorError     = lipgloss.Color("#F87171")
	colorFg        = lipgloss.Color("#E2E8F0")
	colorSubtle    = lipgloss.Color("#334155")
	colorHighlight = lipgloss.Color("#A78BFA")
)

// blockColors are the choices offered for focus blocks.
var blockColors = []string{"#38BDF8", "#A78BFA", "#F472B6", "#34D399", "#FBBF24", "#F87171"}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Countdown, coloured by session state.
	countdownIdleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Align(lipgloss.Center)
	countdownRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).Align(lipgloss.Center)
	countdownPausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWarning).Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	accentStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Task priorities.
	priorityStyles = map[string]lipgloss.Style{
		"High":   lipgloss.NewStyle().Foreground(colorError),
		"Medium": lipgloss.NewStyle().Foreground(colorWarning),
		"Low":    lipgloss.NewStyle().Foreground(colorSuccess),
	}
)
