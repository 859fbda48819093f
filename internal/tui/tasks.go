package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
)

// taskFilters are the status filters cycled with ←/→. The empty status
// shows every task.
var taskFilters = []store.Status{"", store.StatusNotStarted, store.StatusDoing, store.StatusCompleted}

type tasksModel struct {
	tasks  *provider.Tasks
	width  int
	height int

	list   []store.Task
	filter int
	cursor int

	formActive bool
	form       *huh.Form
	editingID  int64

	fTitle    *string
	fDetails  *string
	fDeadline *string
	fPriority *store.Priority
	fStatus   *store.Status
}

func newTasksModel(t *provider.Tasks) tasksModel {
	title, details, deadline := "", "", ""
	priority, status := store.PriorityMedium, store.StatusNotStarted
	return tasksModel{
		tasks:     t,
		fTitle:    &title,
		fDetails:  &details,
		fDeadline: &deadline,
		fPriority: &priority,
		fStatus:   &status,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (t tasksModel) refresh() tea.Cmd {
	status := taskFilters[t.filter]
	return func() tea.Msg {
		if status == "" {
			return tasksDataMsg{tasks: t.tasks.Tasks()}
		}
		return tasksDataMsg{tasks: t.tasks.TasksByStatus(status)}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.list = msg.tasks
		t.cursor = clamp(t.cursor, len(t.list))
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.list)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.Left):
			t.filter = (t.filter + len(taskFilters) - 1) % len(taskFilters)
			return t, t.refresh()
		case key.Matches(msg, keys.Right):
			t.filter = (t.filter + 1) % len(taskFilters)
			return t, t.refresh()
		case key.Matches(msg, keys.Enter):
			if len(t.list) > 0 {
				task := t.list[t.cursor]
				if err := t.tasks.UpdateTaskStatus(task.ID, task.Status.Next()); err != nil {
					return t, errorCmd("Update task", err)
				}
				return t, t.refresh()
			}
		case key.Matches(msg, keys.New):
			return t.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(t.list) > 0 {
				task := t.list[t.cursor]
				return t.showForm(&task)
			}
		case key.Matches(msg, keys.Delete):
			if len(t.list) > 0 {
				if err := t.tasks.DeleteTask(t.list[t.cursor].ID); err != nil {
					return t, errorCmd("Delete task", err)
				}
				return t, tea.Batch(t.refresh(), statusCmd("Task deleted"))
			}
		}
	}
	return t, nil
}

func (t tasksModel) showForm(task *store.Task) (tasksModel, tea.Cmd) {
	*t.fTitle, *t.fDetails, *t.fDeadline = "", "", ""
	*t.fPriority = store.PriorityMedium
	*t.fStatus = store.StatusNotStarted
	t.editingID = 0
	if task != nil {
		*t.fTitle, *t.fDetails, *t.fDeadline = task.Title, task.Details, task.Deadline
		*t.fPriority = task.Priority
		*t.fStatus = task.Status
		t.editingID = task.ID
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(t.fTitle).Validate(required("title")),
			huh.NewText().Title("Details").Value(t.fDetails),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Placeholder("optional").Value(t.fDeadline).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validDate(s)
				}),
			huh.NewSelect[store.Priority]().Title("Priority").
				Options(
					huh.NewOption("Low", store.PriorityLow),
					huh.NewOption("Medium", store.PriorityMedium),
					huh.NewOption("High", store.PriorityHigh),
				).Value(t.fPriority),
			huh.NewSelect[store.Status]().Title("Status").
				Options(
					huh.NewOption("Not started", store.StatusNotStarted),
					huh.NewOption("Doing", store.StatusDoing),
					huh.NewOption("Completed", store.StatusCompleted),
				).Value(t.fStatus),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		t.formActive = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if err := t.save(); err != nil {
			return t, errorCmd("Save task", err)
		}
		return t, t.refresh()
	}
	return t, cmd
}

func (t tasksModel) save() error {
	title := strings.TrimSpace(*t.fTitle)
	details := strings.TrimSpace(*t.fDetails)
	deadline := strings.TrimSpace(*t.fDeadline)

	if t.editingID == 0 {
		_, err := t.tasks.AddTask(store.TaskInput{
			Title:    title,
			Details:  details,
			Deadline: deadline,
			Priority: *t.fPriority,
			Status:   *t.fStatus,
		})
		return err
	}
	return t.tasks.UpdateTask(t.editingID, store.TaskPatch{
		Title:    &title,
		Details:  &details,
		Deadline: &deadline,
		Priority: store.Ptr(*t.fPriority),
		Status:   store.Ptr(*t.fStatus),
	})
}

func statusLabel(s store.Status) string {
	switch s {
	case store.StatusCompleted:
		return successStyle.Render("✓ " + string(s))
	case store.StatusDoing:
		return warningStyle.Render("◐ " + string(s))
	}
	return mutedStyle.Render("○ " + string(s))
}

func (t tasksModel) view() string {
	w := t.width - 4
	if t.formActive && t.form != nil {
		title := "New Task"
		if t.editingID != 0 {
			title = "Edit Task"
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", t.form.View()),
		)
	}

	var tabs []string
	for i, f := range taskFilters {
		name := string(f)
		if f == "" {
			name = "All"
		}
		if i == t.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Tasks"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)),
		"",
	}

	if len(t.list) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks here. Press n to add one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-32s %-8s %-12s %s", "Task", "Priority", "Deadline", "Status")))
	for i, task := range t.list {
		priority := priorityStyles[string(task.Priority)].Render(fmt.Sprintf("%-8s", task.Priority))
		line := fmt.Sprintf("%-32s %s %-12s %s", task.Title, priority, task.Deadline, statusLabel(task.Status))
		rows = append(rows, cursorRow(i == t.cursor, line))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: next status  n: new  e: edit  d: delete  ←/→: filter"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
