package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
)

type courseSection int

const (
	sectionAssignments courseSection = iota
	sectionNotes
	sectionProjects
)

var sectionNames = []string{"Assignments", "Notes", "Projects"}

type coursesModel struct {
	courses *provider.Courses
	width   int
	height  int

	list        []store.Course
	cursor      int
	viewingItem bool // true = showing the selected course's children
	section     courseSection
	itemCursor  int

	formActive bool
	form       *huh.Form
	formType   string // "course", "edit_course", "assignment", "note", "project" ("edit_" prefixed when editing)
	editingID  int64

	// Form field pointers (survive value copies)
	fTitle      *string
	fBody       *string
	fInstructor *string
	fHours      *string
	fCredits    *string
	fTag        *store.Tag
	fProgress   *string
	fTech       *string
	fLink       *string
}

func newCoursesModel(c *provider.Courses) coursesModel {
	title, body, instructor, hours, credits, progress, tech, link := "", "", "", "", "", "", "", ""
	tag := store.TagSelf
	return coursesModel{
		courses:     c,
		fTitle:      &title,
		fBody:       &body,
		fInstructor: &instructor,
		fHours:      &hours,
		fCredits:    &credits,
		fTag:        &tag,
		fProgress:   &progress,
		fTech:       &tech,
		fLink:       &link,
	}
}

func (c *coursesModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type coursesDataMsg struct {
	courses []store.Course
}

func (c coursesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return coursesDataMsg{courses: c.courses.Courses()}
	}
}

func (c coursesModel) selected() (store.Course, bool) {
	if c.cursor >= len(c.list) {
		return store.Course{}, false
	}
	return c.list[c.cursor], true
}

// itemCount is the number of children in the open section.
func (c coursesModel) itemCount() int {
	course, ok := c.selected()
	if !ok {
		return 0
	}
	switch c.section {
	case sectionAssignments:
		return len(course.Assignments)
	case sectionNotes:
		return len(course.Notes)
	case sectionProjects:
		return len(course.Projects)
	}
	return 0
}

func (c coursesModel) update(msg tea.Msg) (coursesModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case coursesDataMsg:
		c.list = msg.courses
		c.cursor = clamp(c.cursor, len(c.list))
		c.itemCursor = clamp(c.itemCursor, c.itemCount())
		if len(c.list) == 0 {
			c.viewingItem = false
		}
		return c, nil

	case tea.KeyMsg:
		if c.viewingItem {
			return c.updateDetail(msg)
		}
		return c.updateList(msg)
	}
	return c, nil
}

func (c coursesModel) updateList(msg tea.KeyMsg) (coursesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.list)-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(c.list) > 0 {
			c.viewingItem = true
			c.itemCursor = 0
		}
	case key.Matches(msg, keys.New):
		return c.showCourseForm(nil)
	case key.Matches(msg, keys.Edit):
		if course, ok := c.selected(); ok {
			return c.showCourseForm(&course)
		}
	case key.Matches(msg, keys.Delete):
		if course, ok := c.selected(); ok {
			if err := c.courses.DeleteCourse(course.ID); err != nil {
				return c, errorCmd("Delete course", err)
			}
			return c, tea.Batch(c.refresh(), statusCmd("Course deleted"))
		}
	}
	return c, nil
}

func (c coursesModel) updateDetail(msg tea.KeyMsg) (coursesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		c.viewingItem = false
	case key.Matches(msg, keys.Left):
		c.section = (c.section + 2) % 3
		c.itemCursor = 0
	case key.Matches(msg, keys.Right):
		c.section = (c.section + 1) % 3
		c.itemCursor = 0
	case key.Matches(msg, keys.Up):
		if c.itemCursor > 0 {
			c.itemCursor--
		}
	case key.Matches(msg, keys.Down):
		if c.itemCursor < c.itemCount()-1 {
			c.itemCursor++
		}
	case key.Matches(msg, keys.New):
		return c.showChildForm(false)
	case key.Matches(msg, keys.Edit):
		if c.itemCount() > 0 {
			return c.showChildForm(true)
		}
	case key.Matches(msg, keys.Delete):
		if c.itemCount() > 0 {
			return c.deleteChild()
		}
	}
	return c, nil
}

func (c coursesModel) deleteChild() (coursesModel, tea.Cmd) {
	course, _ := c.selected()
	var err error
	switch c.section {
	case sectionAssignments:
		err = c.courses.DeleteAssignment(course.Assignments[c.itemCursor].ID)
	case sectionNotes:
		err = c.courses.DeleteNote(course.Notes[c.itemCursor].ID)
	case sectionProjects:
		err = c.courses.DeleteProject(course.Projects[c.itemCursor].ID)
	}
	if err != nil {
		return c, errorCmd("Delete", err)
	}
	return c, c.refresh()
}

func percentInput(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return errors.New("enter a number from 0 to 100")
	}
	return nil
}

func optionalInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
		return errors.New("enter a whole number")
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// showCourseForm opens the course form, prefilled when editing.
func (c coursesModel) showCourseForm(course *store.Course) (coursesModel, tea.Cmd) {
	*c.fTitle, *c.fBody, *c.fInstructor = "", "", ""
	*c.fHours, *c.fCredits, *c.fProgress = "", "", "0"
	*c.fTag = store.TagSelf
	c.formType = "course"
	if course != nil {
		*c.fTitle = course.Title
		*c.fBody = course.Description
		*c.fInstructor = course.Instructor
		*c.fHours = strconv.Itoa(course.TotalHours)
		*c.fCredits = strconv.Itoa(course.Credits)
		*c.fTag = course.Tag
		*c.fProgress = strconv.Itoa(course.Progress)
		c.formType = "edit_course"
		c.editingID = course.ID
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(c.fTitle).Validate(required("title")),
			huh.NewInput().Title("Description").Value(c.fBody),
			huh.NewInput().Title("Instructor").Value(c.fInstructor),
		),
		huh.NewGroup(
			huh.NewInput().Title("Total hours").Value(c.fHours).Validate(optionalInt),
			huh.NewInput().Title("Credits").Value(c.fCredits).Validate(optionalInt),
			huh.NewSelect[store.Tag]().Title("Tag").
				Options(
					huh.NewOption("Self-paced", store.TagSelf),
					huh.NewOption("College", store.TagCollege),
				).Value(c.fTag),
			huh.NewInput().Title("Progress (%)").Value(c.fProgress).Validate(percentInput),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

// showChildForm opens the form for the open section's item type.
func (c coursesModel) showChildForm(edit bool) (coursesModel, tea.Cmd) {
	course, _ := c.selected()
	*c.fTitle, *c.fBody, *c.fTech, *c.fLink = "", "", "", ""

	var fields []huh.Field
	switch c.section {
	case sectionAssignments:
		c.formType = "assignment"
		if edit {
			a := course.Assignments[c.itemCursor]
			*c.fTitle, *c.fBody = a.Title, a.Description
			c.editingID = a.ID
		}
		fields = []huh.Field{
			huh.NewInput().Title("Assignment").Value(c.fTitle).Validate(required("title")),
			huh.NewText().Title("Description").Value(c.fBody),
		}
	case sectionNotes:
		c.formType = "note"
		if edit {
			n := course.Notes[c.itemCursor]
			*c.fTitle, *c.fBody = n.Heading, n.Content
			c.editingID = n.ID
		}
		fields = []huh.Field{
			huh.NewInput().Title("Heading").Value(c.fTitle).Validate(required("heading")),
			huh.NewText().Title("Content").Value(c.fBody),
		}
	case sectionProjects:
		c.formType = "project"
		if edit {
			p := course.Projects[c.itemCursor]
			*c.fTitle, *c.fTech, *c.fBody = p.Name, p.TechStack, p.Details
			if p.PDFURL != nil {
				*c.fLink = *p.PDFURL
			}
			c.editingID = p.ID
		}
		fields = []huh.Field{
			huh.NewInput().Title("Project name").Value(c.fTitle).Validate(required("name")),
			huh.NewInput().Title("Tech stack").Value(c.fTech),
			huh.NewText().Title("Details").Value(c.fBody),
			huh.NewInput().Title("PDF link").Placeholder("optional").Value(c.fLink),
		}
	}
	if edit {
		c.formType = "edit_" + c.formType
	}

	c.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	c.formActive = true
	return c, c.form.Init()
}

func (c coursesModel) updateForm(msg tea.Msg) (coursesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		c.formActive = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}
	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if err := c.save(); err != nil {
			return c, errorCmd("Save", err)
		}
		return c, c.refresh()
	}
	return c, cmd
}

// save writes the submitted form through the provider.
func (c coursesModel) save() error {
	title := strings.TrimSpace(*c.fTitle)
	body := strings.TrimSpace(*c.fBody)
	course, _ := c.selected()

	switch c.formType {
	case "course":
		_, err := c.courses.AddCourse(store.CourseInput{
			Title:       title,
			Description: body,
			Instructor:  strings.TrimSpace(*c.fInstructor),
			TotalHours:  atoi(*c.fHours),
			Credits:     atoi(*c.fCredits),
			Tag:         *c.fTag,
			Progress:    atoi(*c.fProgress),
		})
		return err
	case "edit_course":
		return c.courses.UpdateCourse(c.editingID, store.CoursePatch{
			Title:       &title,
			Description: &body,
			Instructor:  store.Ptr(strings.TrimSpace(*c.fInstructor)),
			TotalHours:  store.Ptr(atoi(*c.fHours)),
			Credits:     store.Ptr(atoi(*c.fCredits)),
			Tag:         store.Ptr(*c.fTag),
			Progress:    store.Ptr(atoi(*c.fProgress)),
		})
	case "assignment":
		_, err := c.courses.AddAssignment(course.ID, title, body)
		return err
	case "edit_assignment":
		return c.courses.UpdateAssignment(c.editingID, store.AssignmentPatch{Title: &title, Description: &body})
	case "note":
		_, err := c.courses.AddNote(course.ID, title, body)
		return err
	case "edit_note":
		return c.courses.UpdateNote(c.editingID, store.NotePatch{Heading: &title, Content: &body})
	case "project":
		_, err := c.courses.AddProject(course.ID, title, strings.TrimSpace(*c.fTech), body, c.link())
		return err
	case "edit_project":
		return c.courses.UpdateProject(c.editingID, store.ProjectPatch{
			Name:      &title,
			TechStack: store.Ptr(strings.TrimSpace(*c.fTech)),
			Details:   &body,
			PDFURL:    store.Ptr(strings.TrimSpace(*c.fLink)),
		})
	}
	return fmt.Errorf("unknown form %q", c.formType)
}

func (c coursesModel) link() *string {
	if l := strings.TrimSpace(*c.fLink); l != "" {
		return &l
	}
	return nil
}

func (c coursesModel) view() string {
	w := c.width - 4
	if c.formActive && c.form != nil {
		title := "New Course"
		switch {
		case c.formType == "edit_course":
			title = "Edit Course"
		case strings.HasPrefix(c.formType, "edit_"):
			title = "Edit " + strings.TrimPrefix(c.formType, "edit_")
		case c.formType != "course":
			title = "New " + c.formType
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", c.form.View()),
		)
	}
	if c.viewingItem {
		return c.renderDetail(w)
	}
	return c.renderList(w)
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (c coursesModel) renderList(w int) string {
	title := titleStyle.Render("Courses")
	if len(c.list) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No courses yet. Press n to add one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %-8s %-18s %s", "Title", "Tag", "Instructor", "Progress")))
	for i, course := range c.list {
		line := fmt.Sprintf("%-28s %-8s %-18s %s %3d%%",
			course.Title, course.Tag, course.Instructor, progressBar(course.Progress, 10), course.Progress)
		rows = append(rows, cursorRow(i == c.cursor, line))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  e: edit  d: delete  enter: open"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (c coursesModel) renderDetail(w int) string {
	course, ok := c.selected()
	if !ok {
		return panelStyle.Width(w).Render(mutedStyle.Render("Course not found"))
	}

	header := titleStyle.Render(course.Title) + mutedStyle.Render(fmt.Sprintf("  %s · %d credits · %dh", course.Tag, course.Credits, course.TotalHours))
	rows := []string{header}
	if course.Instructor != "" {
		rows = append(rows, mutedStyle.Render("Instructor: "+course.Instructor))
	}
	if course.Description != "" {
		rows = append(rows, course.Description)
	}
	rows = append(rows, progressBar(course.Progress, 30)+fmt.Sprintf(" %d%%", course.Progress), "")

	var tabs []string
	for i, name := range sectionNames {
		if courseSection(i) == c.section {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "")

	var items []string
	switch c.section {
	case sectionAssignments:
		for _, a := range course.Assignments {
			items = append(items, a.Title+mutedStyle.Render("  "+a.Description))
		}
	case sectionNotes:
		for _, n := range course.Notes {
			items = append(items, n.Heading+mutedStyle.Render("  "+firstLine(n.Content)))
		}
	case sectionProjects:
		for _, p := range course.Projects {
			line := p.Name
			if p.TechStack != "" {
				line += highlightStyle.Render(" [" + p.TechStack + "]")
			}
			if p.PDFURL != nil {
				line += mutedStyle.Render("  " + *p.PDFURL)
			}
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing here yet. Press n to add."))
	}
	for i, item := range items {
		rows = append(rows, cursorRow(i == c.itemCursor, item))
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: section  n: new  e: edit  d: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}
