package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
)

const (
	modeLogin  = "login"
	modeSignup = "signup"
)

// authModel is the login/signup gate shown until someone is signed in.
type authModel struct {
	auth   *provider.Auth
	width  int
	height int

	form *huh.Form
	err  string

	mode     *string
	name     *string
	email    *string
	college  *string
	password *string
}

func newAuthModel(a *provider.Auth) authModel {
	mode, name, email, college, password := modeLogin, "", "", "", ""
	m := authModel{
		auth:     a,
		mode:     &mode,
		name:     &name,
		email:    &email,
		college:  &college,
		password: &password,
	}
	m.form = m.buildForm()
	return m
}

func (m *authModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func (m authModel) buildForm() *huh.Form {
	signupOnly := func() bool { return *m.mode != modeSignup }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to learntrack").
				Options(
					huh.NewOption("Log in", modeLogin),
					huh.NewOption("Create an account", modeSignup),
				).
				Value(m.mode),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.name).Validate(required("name")),
			huh.NewInput().Title("College").Placeholder("optional").Value(m.college),
		).WithHideFunc(signupOnly),
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(m.email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password).Validate(required("password")),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m authModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		return m.reset("")
	}
	return m, cmd
}

// submit runs the login or signup with the collected values.
func (m authModel) submit() (authModel, tea.Cmd) {
	var err error
	if *m.mode == modeSignup {
		err = m.auth.Signup(*m.name, *m.email, *m.college, *m.password)
	} else {
		err = m.auth.Login(*m.email, *m.password)
	}
	*m.password = ""

	if err != nil {
		return m.reset(authError(err))
	}
	m.err = ""
	return m, func() tea.Msg { return authDoneMsg{} }
}

// reset shows a fresh form, keeping the chosen mode and typed email.
func (m authModel) reset(errText string) (authModel, tea.Cmd) {
	m.err = errText
	m.form = m.buildForm()
	return m, m.form.Init()
}

func authError(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, store.ErrEmailTaken):
		return "An account with that email already exists"
	case errors.Is(err, store.ErrInvalidInput):
		return "Name, email and password are required"
	}
	return err.Error()
}

func (m authModel) view() string {
	w := min(m.width-4, 60)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("learntrack")
	rows := []string{title, mutedStyle.Render("Track courses, tasks and focused study time"), ""}
	if m.err != "" {
		rows = append(rows, errorStyle.Render(m.err), "")
	}
	rows = append(rows, m.form.View())

	panel := activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
