package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
	"github.com/sadopc/learntrack/internal/timer"
)

const (
	defaultBlockMinutes = 25
	historyRows         = 8
)

type studyPanel int

const (
	panelBlocks studyPanel = iota
	panelHistory
)

// studyModel lists scheduled focus blocks and the session history, and owns
// the session view for the block being worked on.
type studyModel struct {
	study    *provider.Study
	settings *store.Store
	sched    timer.Scheduler
	clock    timer.Clock
	width    int
	height   int

	blocks   []store.FocusBlock
	sessions []store.Session
	panel    studyPanel
	cursor   int
	hCursor  int

	session     sessionModel
	showSession bool

	formActive bool
	form       *huh.Form
	formTitle  *string
	formFocus  *string
	formDate   *string
	formTime   *string
	formMins   *string
	formColor  *string
}

func newStudyModel(study *provider.Study, settings *store.Store, sched timer.Scheduler, clock timer.Clock) studyModel {
	title, focus, date, tm, mins, color := "", "", "", "", "", blockColors[0]
	return studyModel{
		study:     study,
		settings:  settings,
		sched:     sched,
		clock:     clock,
		formTitle: &title,
		formFocus: &focus,
		formDate:  &date,
		formTime:  &tm,
		formMins:  &mins,
		formColor: &color,
	}
}

func (s *studyModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.session.setSize(w)
}

type studyDataMsg struct {
	blocks   []store.FocusBlock
	sessions []store.Session
}

func (s studyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return studyDataMsg{blocks: s.study.Blocks(), sessions: s.study.Sessions()}
	}
}

func (s studyModel) isFormActive() bool {
	if s.showSession {
		return s.session.formActive
	}
	return s.formActive
}

func (s studyModel) update(msg tea.Msg) (studyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The countdown keeps going while forms or other views are shown.
		var cmd tea.Cmd
		s.session, cmd = s.session.update(msg)
		return s, cmd

	case studyDataMsg:
		s.blocks = msg.blocks
		s.sessions = msg.sessions
		s.cursor = clamp(s.cursor, len(s.blocks))
		s.hCursor = clamp(s.hCursor, min(len(s.sessions), historyRows))
		return s, nil
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sessionDoneMsg:
		return s, s.refresh()

	case tea.KeyMsg:
		if s.showSession {
			if key.Matches(msg, keys.Back) && !s.session.formActive {
				s.showSession = false
				return s, s.refresh()
			}
			var cmd tea.Cmd
			s.session, cmd = s.session.update(msg)
			if !s.session.live() {
				cmd = tea.Batch(cmd, s.refresh())
			}
			return s, cmd
		}
		return s.updateList(msg)
	}
	return s, nil
}

func (s studyModel) updateList(msg tea.KeyMsg) (studyModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		s.panel = panelBlocks
	case key.Matches(msg, keys.Right):
		s.panel = panelHistory
	case key.Matches(msg, keys.Up):
		if s.panel == panelBlocks && s.cursor > 0 {
			s.cursor--
		} else if s.panel == panelHistory && s.hCursor > 0 {
			s.hCursor--
		}
	case key.Matches(msg, keys.Down):
		if s.panel == panelBlocks && s.cursor < len(s.blocks)-1 {
			s.cursor++
		} else if s.panel == panelHistory && s.hCursor < min(len(s.sessions), historyRows)-1 {
			s.hCursor++
		}
	case key.Matches(msg, keys.New):
		return s.showNewBlockForm()
	case key.Matches(msg, keys.Enter):
		if s.panel == panelBlocks && len(s.blocks) > 0 {
			return s.openSession(s.blocks[s.cursor].ID)
		}
	case key.Matches(msg, keys.Delete):
		return s.deleteSelected()
	}
	return s, nil
}

// openSession shows the session view for blockID, resuming a running
// countdown if the block already has one.
func (s studyModel) openSession(blockID int64) (studyModel, tea.Cmd) {
	if s.session.session != nil && s.session.live() {
		if s.session.session.Block().ID == blockID {
			s.showSession = true
			return s, nil
		}
		if s.session.running() {
			return s, errorCmd("Open block", fmt.Errorf("finish %q first", s.session.session.Block().Title))
		}
		s.session.close()
	}

	sess, err := timer.Open(s.study, s.sched, s.clock, blockID)
	if err != nil {
		return s, errorCmd("Open block", err)
	}
	s.session = newSessionModel(sess)
	s.session.setSize(s.width)
	s.showSession = true

	// A block that expired while the app was closed completes on open.
	var cmd tea.Cmd
	s.session, cmd = s.session.checkDone()
	return s, tea.Batch(cmd, s.refresh())
}

func (s studyModel) deleteSelected() (studyModel, tea.Cmd) {
	switch s.panel {
	case panelBlocks:
		if len(s.blocks) == 0 {
			return s, nil
		}
		b := s.blocks[s.cursor]
		if s.session.session != nil && s.session.running() && s.session.session.Block().ID == b.ID {
			return s, errorCmd("Delete block", fmt.Errorf("%q is in progress", b.Title))
		}
		if err := s.study.DeleteFocusBlock(b.ID); err != nil {
			return s, errorCmd("Delete block", err)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Focus block deleted"))
	case panelHistory:
		if len(s.sessions) == 0 {
			return s, nil
		}
		if err := s.study.DeleteSession(s.sessions[s.hCursor].ID); err != nil {
			return s, errorCmd("Delete session", err)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Session deleted"))
	}
	return s, nil
}

func (s studyModel) showNewBlockForm() (studyModel, tea.Cmd) {
	now := s.clock.Now()
	*s.formTitle = ""
	*s.formFocus = ""
	*s.formDate = now.Format("2006-01-02")
	*s.formTime = now.Format("15:04")
	*s.formMins = strconv.Itoa(s.settings.IntSetting(store.SettingDefaultBlockMinutes, defaultBlockMinutes))
	*s.formColor = blockColors[0]
	if c, err := s.settings.GetSetting(store.SettingDefaultBlockColor); err == nil && c != "" {
		*s.formColor = c
	}

	colorOptions := make([]huh.Option[string], 0, len(blockColors)+1)
	if !slices.Contains(blockColors, *s.formColor) {
		colorOptions = append(colorOptions, huh.NewOption(colorDot(*s.formColor)+" "+*s.formColor, *s.formColor))
	}
	for _, c := range blockColors {
		colorOptions = append(colorOptions, huh.NewOption(colorDot(c)+" "+c, c))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Course / title").Value(s.formTitle).Validate(required("title")),
			huh.NewInput().Title("Focus").Placeholder("what you will work on").Value(s.formFocus),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(s.formDate).Validate(validDate),
			huh.NewInput().Title("Time (HH:MM)").Value(s.formTime).Validate(validClock),
			huh.NewInput().Title("Duration (min)").Value(s.formMins).Validate(positiveInt),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(s.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validDate(v string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(v)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validClock(v string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(v)); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

func (s studyModel) updateForm(msg tea.Msg) (studyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s.saveBlock()
	}
	return s, cmd
}

func (s studyModel) saveBlock() (studyModel, tea.Cmd) {
	mins, _ := strconv.Atoi(strings.TrimSpace(*s.formMins))
	_, err := s.study.AddFocusBlock(store.FocusBlockInput{
		Title:    strings.TrimSpace(*s.formTitle),
		Details:  strings.TrimSpace(*s.formFocus),
		Date:     strings.TrimSpace(*s.formDate),
		Time:     strings.TrimSpace(*s.formTime),
		Duration: mins,
		Color:    *s.formColor,
	})
	if err != nil {
		return s, errorCmd("Add focus block", err)
	}
	return s, tea.Batch(s.refresh(), statusCmd("Focus block scheduled"))
}

func (s studyModel) view() string {
	if s.width < 20 {
		return "Terminal too small"
	}
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Focus Block"), "", s.form.View()),
		)
	}
	if s.showSession {
		return s.session.view()
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.renderBlocks(w), s.renderHistory(w))
}

func (s studyModel) renderBlocks(w int) string {
	title := titleStyle.Render("Focus Blocks")
	style := panelStyle
	if s.panel == panelBlocks {
		style = activePanelStyle
	}

	if len(s.blocks) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing scheduled. Press n to plan a focus block."),
		))
	}

	var activeID int64
	if s.session.session != nil && s.session.live() {
		activeID = s.session.session.Block().ID
	}

	rows := []string{title, ""}
	for i, b := range s.blocks {
		marker := " "
		switch {
		case b.ID == activeID && s.session.session.State() == timer.Running:
			marker = successStyle.Render("●")
		case b.IsActive && b.IsPaused:
			marker = warningStyle.Render("⏸")
		case b.IsActive:
			marker = successStyle.Render("●")
		}
		line := fmt.Sprintf("%s %-10s %s  %-20s %6s", colorDot(b.Color), b.Date, b.Time, b.Title, store.FormatMinutes(b.Duration))
		rows = append(rows, cursorRow(s.panel == panelBlocks && i == s.cursor, line)+" "+marker)
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  enter: open  d: delete  →: history"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (s studyModel) renderHistory(w int) string {
	total := 0
	for _, sess := range s.sessions {
		total += sess.DurationMinutes
	}
	title := titleStyle.Render("History") + "  " + highlightStyle.Render(store.FormatMinutes(total))
	style := panelStyle
	if s.panel == panelHistory {
		style = activePanelStyle
	}

	if len(s.sessions) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No sessions yet"),
		))
	}

	rows := []string{title}
	for i, sess := range s.sessions {
		if i == historyRows {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(s.sessions)-historyRows)))
			break
		}
		line := fmt.Sprintf("%s %s %s  %-20s %-24s %6s",
			colorDot(sess.Color),
			sess.Date.Local().Format("2006-01-02"),
			sess.LoggedAt,
			sess.Course,
			sess.Focus,
			store.FormatMinutes(sess.DurationMinutes),
		)
		rows = append(rows, cursorRow(s.panel == panelHistory && i == s.hCursor, line))
	}
	if s.panel == panelHistory {
		rows = append(rows, "", mutedStyle.Render("  d: delete  ←: blocks"))
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}
