package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/store"
	"github.com/sadopc/learntrack/internal/timer"
)

// sessionModel drives one focus block's countdown. The timer.Session owns
// the state; this model only forwards keys and renders it.
type sessionModel struct {
	session *timer.Session
	width   int

	// reported is set once the completion has been announced.
	reported bool
	bar      progress.Model

	formActive bool
	form       *huh.Form
	title      *string
	details    *string
	minutes    *string
}

func newSessionModel(s *timer.Session) sessionModel {
	title, details, minutes := "", "", ""
	return sessionModel{
		session: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		title:   &title,
		details: &details,
		minutes: &minutes,
	}
}

// live reports whether the session still has a block to count down.
func (m sessionModel) live() bool {
	if m.session == nil {
		return false
	}
	st := m.session.State()
	return st != timer.Completed && st != timer.Cancelled
}

// running reports whether the countdown is ticking or paused mid-way.
func (m sessionModel) running() bool {
	if m.session == nil {
		return false
	}
	st := m.session.State()
	return st == timer.Running || st == timer.Paused
}

func (m *sessionModel) setSize(w int) {
	m.width = w
	m.bar.Width = max(w-12, 10)
}

func (m sessionModel) close() {
	if m.session != nil {
		m.session.Close()
	}
}

func (m sessionModel) update(msg tea.Msg) (sessionModel, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		return m.checkDone()

	case tea.KeyMsg:
		var err error
		switch {
		case key.Matches(msg, keys.Start):
			err = m.session.Start()
		case key.Matches(msg, keys.Pause):
			err = m.session.Toggle()
		case key.Matches(msg, keys.Flag):
			mark, ferr := m.session.Flag()
			if ferr != nil {
				return m, errorCmd("Flag", ferr)
			}
			return m, statusCmd("Flagged at " + mark)
		case key.Matches(msg, keys.Complete):
			_, err := m.session.Complete()
			if _, ok := m.session.Summary(); !ok {
				if err != nil && !errors.Is(err, timer.ErrInvalidTransition) {
					return m, errorCmd("Finish session", err)
				}
				return m, nil
			}
			var cmd tea.Cmd
			m, cmd = m.checkDone()
			if err != nil && !errors.Is(err, timer.ErrInvalidTransition) {
				// Recorded, but the block could not be cleaned up.
				cmd = tea.Batch(cmd, errorCmd("Finish session", err))
			}
			return m, cmd
		case key.Matches(msg, keys.Delete):
			if err := m.session.Delete(); err != nil {
				return m, errorCmd("Delete block", err)
			}
			return m, statusCmd("Focus block deleted")
		case key.Matches(msg, keys.Edit):
			if m.session.State() != timer.Idle {
				return m, errorCmd("Edit", timer.ErrInvalidTransition)
			}
			return m.showEditForm()
		}
		if err != nil {
			if errors.Is(err, timer.ErrInvalidTransition) {
				return m, nil
			}
			return m, errorCmd("Timer", err)
		}
	}
	return m, nil
}

// checkDone announces a completed session exactly once, whether the user
// finished it or the countdown ran out.
func (m sessionModel) checkDone() (sessionModel, tea.Cmd) {
	if m.reported {
		return m, nil
	}
	summary, ok := m.session.Summary()
	if !ok {
		if err := m.session.Err(); err != nil {
			m.reported = true
			return m, errorCmd("Record session", err)
		}
		return m, nil
	}
	m.reported = true
	return m, func() tea.Msg { return sessionDoneMsg{summary: summary} }
}

func (m sessionModel) showEditForm() (sessionModel, tea.Cmd) {
	b := m.session.Block()
	*m.title = b.Title
	*m.details = b.Details
	*m.minutes = strconv.Itoa(b.Duration)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Course / title").Value(m.title).Validate(required("title")),
			huh.NewInput().Title("Focus").Value(m.details),
			huh.NewInput().Title("Duration (min)").Value(m.minutes).Validate(positiveInt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m sessionModel) updateForm(msg tea.Msg) (sessionModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.formActive = false
		mins, _ := strconv.Atoi(*m.minutes)
		if err := m.session.Edit(strings.TrimSpace(*m.title), *m.details, mins); err != nil {
			return m, errorCmd("Edit block", err)
		}
		return m, statusCmd("Focus block updated")
	}
	return m, cmd
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

func (m sessionModel) view() string {
	w := m.width - 4
	if m.session == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("No focus block selected"))
	}
	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Focus Block"), "", m.form.View()),
		)
	}

	b := m.session.Block()
	state := m.session.State()
	remaining := m.session.Remaining()

	var clock, label, controls string
	switch state {
	case timer.Idle:
		clock = countdownIdleStyle.Width(w - 6).Render(formatCountdown(remaining))
		label = mutedStyle.Render(state.String())
		controls = "s: start  e: edit  d: delete  esc: back"
	case timer.Running:
		clock = countdownRunningStyle.Width(w - 6).Render(formatCountdown(remaining))
		label = successStyle.Bold(true).Render("● " + state.String())
		controls = "space: pause  f: flag  x: finish  d: delete  esc: back"
	case timer.Paused:
		clock = countdownPausedStyle.Width(w - 6).Render(formatCountdown(remaining))
		label = warningStyle.Bold(true).Render("⏸ " + state.String())
		controls = "space: resume  f: flag  x: finish  d: delete  esc: back"
	case timer.Completed:
		clock = countdownRunningStyle.Width(w - 6).Render("Done!")
		label = successStyle.Bold(true).Render(state.String())
		if s, ok := m.session.Summary(); ok {
			label += mutedStyle.Render(fmt.Sprintf("  %s recorded", store.FormatMinutes(s.Minutes)))
		}
		controls = "esc: back"
	case timer.Cancelled:
		clock = countdownIdleStyle.Width(w - 6).Render("--:--")
		label = mutedStyle.Render(state.String())
		controls = "esc: back"
	}

	heading := colorDot(b.Color) + " " + titleStyle.Render(b.Title)
	if b.Details != "" {
		heading += mutedStyle.Render(" · " + b.Details)
	}

	total := b.Duration * 60
	pct := 0.0
	if total > 0 {
		pct = float64(total-int(remaining.Seconds())) / float64(total)
	}

	rows := []string{
		heading,
		mutedStyle.Render(fmt.Sprintf("%s %s at %s · %s", b.Day, b.Date, b.Time, store.FormatMinutes(b.Duration))),
		"",
		clock,
		lipgloss.PlaceHorizontal(w-6, lipgloss.Center, label),
		"",
		lipgloss.PlaceHorizontal(w-6, lipgloss.Center, m.bar.ViewAs(pct)),
	}

	if flags := m.session.Flags(); len(flags) > 0 {
		rows = append(rows, "", accentStyle.Render("Flags: ")+strings.Join(flags, "  "))
	}
	if err := m.session.Err(); err != nil {
		rows = append(rows, "", errorStyle.Render(err.Error()))
	}
	rows = append(rows, "", mutedStyle.Render(controls))

	style := panelStyle
	if state == timer.Running {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
