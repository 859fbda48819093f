package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/export"
	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
	"github.com/sadopc/learntrack/internal/timer"
)

// Deps is everything the UI reads from and writes to.
type Deps struct {
	Store   *store.Store
	Auth    *provider.Auth
	Courses *provider.Courses
	Tasks   *provider.Tasks
	Study   *provider.Study

	// Scheduler and Clock drive session countdowns. They default to real
	// time when nil.
	Scheduler timer.Scheduler
	Clock     timer.Clock

	// ExportDir is where the export picker writes files. Defaults to the
	// home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	login     authModel
	study     studyModel
	courses   coursesModel
	tasks     tasksModel
	analytics analyticsModel
	settings  settingsModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(d Deps) App {
	if d.Scheduler == nil {
		d.Scheduler = timer.TickerScheduler{}
	}
	if d.Clock == nil {
		d.Clock = timer.SystemClock{}
	}
	h := help.New()
	h.ShowAll = false

	a := App{deps: d, activeView: viewStudy, help: h}
	a.resetViews()
	return a
}

// resetViews builds fresh tab models, dropping any per-user state.
func (a *App) resetViews() {
	d := a.deps
	a.login = newAuthModel(d.Auth)
	a.study = newStudyModel(d.Study, d.Store, d.Scheduler, d.Clock)
	a.courses = newCoursesModel(d.Courses)
	a.tasks = newTasksModel(d.Tasks)
	a.analytics = newAnalyticsModel(d.Courses, d.Tasks, d.Study, d.Store, d.Clock)
	a.settings = newSettingsModel(d.Store, d.Auth)
	a.resize()
}

func (a *App) resize() {
	contentHeight := a.height - 4 // header + footer
	a.login.setSize(a.width, a.height)
	a.study.setSize(a.width, contentHeight)
	a.courses.setSize(a.width, contentHeight)
	a.tasks.setSize(a.width, contentHeight)
	a.analytics.setSize(a.width, contentHeight)
	a.settings.setSize(a.width, contentHeight)
}

// Close stops a running countdown. Its progress stays in the store, so the
// block resumes the next time it is opened.
func (a App) Close() {
	a.study.session.close()
}

func (a App) Init() tea.Cmd {
	if a.deps.Auth.IsAuthenticated() {
		return tea.Batch(a.study.refresh(), tickCmd())
	}
	return tea.Batch(a.login.Init(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resize()
		return a, nil

	case tickMsg:
		// Always route ticks to the study view so a countdown that ends on
		// another tab is still recorded.
		var cmd tea.Cmd
		a.study, cmd = a.study.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		return a, nil

	case sessionDoneMsg:
		a.status = fmt.Sprintf("Recorded %s of %s", store.FormatMinutes(msg.summary.Minutes), msg.summary.Course)
		a.isError = false
		var cmd tea.Cmd
		a.study, cmd = a.study.update(msg)
		return a, cmd

	case studyDataMsg:
		// The study view owns the session, so it stays current on any tab.
		var cmd tea.Cmd
		a.study, cmd = a.study.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		a.exportPicking = false
		return a, nil

	case authDoneMsg:
		a.activeView = viewStudy
		a.status = ""
		if u, ok := a.deps.Auth.User(); ok {
			a.status = "Welcome, " + u.Name
		}
		return a, a.study.refresh()
	}

	if !a.deps.Auth.IsAuthenticated() {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Logout):
			return a.logout()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewStudy)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewCourses)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewAnalytics)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) logout() (tea.Model, tea.Cmd) {
	a.study.session.close()
	a.deps.Auth.Logout()
	a.resetViews()
	a.activeView = viewStudy
	a.status = "Logged out"
	a.isError = false
	return a, a.login.Init()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewStudy:
		a.study, cmd = a.study.update(msg)
	case viewCourses:
		a.courses, cmd = a.courses.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewStudy:
		return a.study.isFormActive()
	case viewCourses:
		return a.courses.formActive
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewStudy:
		return a.study.refresh()
	case viewCourses:
		return a.courses.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	if !a.deps.Auth.IsAuthenticated() {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewStudy:
		content = a.study.view()
	case viewCourses:
		content = a.courses.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("learntrack")
	if u, ok := a.deps.Auth.User(); ok {
		title += mutedStyle.Render("  " + u.Name)
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Session indicator in footer
	sessionInfo := ""
	if sess := a.study.session; sess.running() {
		b := sess.session.Block()
		left := formatCountdown(sess.session.Remaining())
		if sess.session.State() == timer.Paused {
			sessionInfo = warningStyle.Render(" ⏸ " + b.Title + " " + left)
		} else {
			sessionInfo = successStyle.Render(" ● " + b.Title + " " + left)
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Sessions"), ""}
	for i, f := range export.Formats {
		rows = append(rows, cursorRow(i == a.exportCursor, strings.ToUpper(f)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	sessions := a.deps.Study.Sessions()
	dir := a.deps.ExportDir
	now := a.deps.Clock.Now()

	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		path := filepath.Join(dir, fmt.Sprintf("learntrack-sessions-%s.%s", now.Format("2006-01-02"), format))
		if err := export.Sessions(format, sessions, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
