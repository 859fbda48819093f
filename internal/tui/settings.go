package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
)

// settingLabels names the preferences shown on the settings tab.
var settingLabels = map[string]string{
	store.SettingDefaultBlockMinutes: "Default block length",
	store.SettingDefaultBlockColor:   "Default block color",
	store.SettingWeeklyGoalHours:     "Weekly study goal",
}

type settingsModel struct {
	store  *store.Store
	auth   *provider.Auth
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	blockMinutes *string
	blockColor   *string
	weeklyGoal   *string
	name         *string
	email        *string
	college      *string
}

func newSettingsModel(s *store.Store, a *provider.Auth) settingsModel {
	bm, bc, wg := "", "", ""
	name, email, college := "", "", ""
	return settingsModel{
		store:        s,
		auth:         a,
		blockMinutes: &bm,
		blockColor:   &bc,
		weeklyGoal:   &wg,
		name:         &name,
		email:        &email,
		college:      &college,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load settings: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.blockMinutes = strconv.Itoa(s.store.IntSetting(store.SettingDefaultBlockMinutes, defaultBlockMinutes))
	*s.blockColor = s.getVal(store.SettingDefaultBlockColor, blockColors[0])
	*s.weeklyGoal = strconv.Itoa(s.store.IntSetting(store.SettingWeeklyGoalHours, defaultWeeklyHours))
	if u, ok := s.auth.User(); ok {
		*s.name, *s.email, *s.college = u.Name, u.Email, u.College
	}

	colorOptions := make([]huh.Option[string], len(blockColors))
	for i, c := range blockColors {
		colorOptions[i] = huh.NewOption(colorDot(c)+" "+c, c)
	}
	if !slices.Contains(blockColors, *s.blockColor) {
		colorOptions = append(colorOptions, huh.NewOption(colorDot(*s.blockColor)+" "+*s.blockColor, *s.blockColor))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default block length (min)").Value(s.blockMinutes).Validate(positiveInt),
			huh.NewSelect[string]().Title("Default block color").Options(colorOptions...).Value(s.blockColor),
			huh.NewInput().Title("Weekly study goal (hours)").Value(s.weeklyGoal).Validate(positiveInt),
		).Title("Study"),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(s.name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(s.email).Validate(required("email")),
			huh.NewInput().Title("College").Value(s.college),
		).Title("Profile"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
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
		if err := s.save(); err != nil {
			return s, tea.Batch(s.refresh(), errorCmd("Save settings", err))
		}
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved"))
	}
	return s, cmd
}

// save writes the preferences, then the profile.
func (s settingsModel) save() error {
	values := map[string]string{
		store.SettingDefaultBlockMinutes: strings.TrimSpace(*s.blockMinutes),
		store.SettingDefaultBlockColor:   *s.blockColor,
		store.SettingWeeklyGoalHours:     strings.TrimSpace(*s.weeklyGoal),
	}
	for k, v := range values {
		if err := s.store.SetSetting(k, v); err != nil {
			return err
		}
	}

	if !s.auth.IsAuthenticated() {
		return nil
	}
	return s.auth.UpdateProfile(store.UserPatch{
		Name:    store.Ptr(strings.TrimSpace(*s.name)),
		Email:   store.Ptr(strings.TrimSpace(*s.email)),
		College: store.Ptr(strings.TrimSpace(*s.college)),
	})
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	if u, ok := s.auth.User(); ok {
		rows = append(rows,
			fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("Signed in as"), highlightStyle.Render(u.Name+" <"+u.Email+">")),
		)
		if u.College != "" {
			rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("College"), highlightStyle.Render(u.College)))
		}
		rows = append(rows, "")
	}

	for _, setting := range s.settings {
		label := settingLabels[setting.Key]
		if label == "" {
			label = setting.Key
		}
		rows = append(rows, fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render(label),
			highlightStyle.Render(formatSettingValue(setting.Key, setting.Value)),
		))
	}
	if len(s.settings) == 0 {
		rows = append(rows, mutedStyle.Render("  Using defaults"))
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings and profile"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingDefaultBlockMinutes:
		if mins, err := strconv.Atoi(v); err == nil {
			return store.FormatMinutes(mins)
		}
	case store.SettingWeeklyGoalHours:
		if hours, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d hours", hours)
		}
	case store.SettingDefaultBlockColor:
		return colorDot(v) + " " + v
	}
	return v
}
