package provider

import (
	"github.com/sadopc/learntrack/internal/store"
)

type CourseRepository interface {
	ListCourses(userID int64) ([]store.Course, error)
	CreateCourse(userID int64, in store.CourseInput) (int64, error)
	UpdateCourse(id int64, p store.CoursePatch) error
	DeleteCourse(id int64) error

	CreateAssignment(courseID int64, title, description string) (int64, error)
	UpdateAssignment(id int64, p store.AssignmentPatch) error
	DeleteAssignment(id int64) error

	CreateNote(courseID int64, heading, content string) (int64, error)
	UpdateNote(id int64, p store.NotePatch) error
	DeleteNote(id int64) error

	CreateProject(courseID int64, name, techStack, details string, pdfURL *string) (int64, error)
	UpdateProject(id int64, p store.ProjectPatch) error
	DeleteProject(id int64) error
}

// Courses holds the owner's courses with their assignments, notes and
// projects.
type Courses struct {
	owned
	repo    CourseRepository
	courses []store.Course
}

func NewCourses(repo CourseRepository) *Courses {
	c := &Courses{repo: repo}
	c.name = "courses"
	c.reset = func() { c.courses = nil }
	c.load = func(ownerID int64) error {
		courses, err := c.repo.ListCourses(ownerID)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.courses = courses
		c.mu.Unlock()
		return nil
	}
	return c
}

func (c *Courses) OwnerChanged(owner *store.User) { c.setOwner(owner) }

// Courses returns a copy of the snapshot. Child slices are shared and must
// not be modified.
func (c *Courses) Courses() []store.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.courses == nil {
		return nil
	}
	return append([]store.Course(nil), c.courses...)
}

func (c *Courses) Course(id int64) (store.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, course := range c.courses {
		if course.ID == id {
			return course, true
		}
	}
	return store.Course{}, false
}

func (c *Courses) AddCourse(in store.CourseInput) (int64, error) {
	return c.create("add course", func(ownerID int64) (int64, error) {
		return c.repo.CreateCourse(ownerID, in)
	})
}

func (c *Courses) UpdateCourse(id int64, p store.CoursePatch) error {
	return c.mutate("update course", func(int64) error { return c.repo.UpdateCourse(id, p) })
}

func (c *Courses) DeleteCourse(id int64) error {
	return c.mutate("delete course", func(int64) error { return c.repo.DeleteCourse(id) })
}

func (c *Courses) AddAssignment(courseID int64, title, description string) (int64, error) {
	return c.create("add assignment", func(int64) (int64, error) {
		return c.repo.CreateAssignment(courseID, title, description)
	})
}

func (c *Courses) UpdateAssignment(id int64, p store.AssignmentPatch) error {
	return c.mutate("update assignment", func(int64) error { return c.repo.UpdateAssignment(id, p) })
}

func (c *Courses) DeleteAssignment(id int64) error {
	return c.mutate("delete assignment", func(int64) error { return c.repo.DeleteAssignment(id) })
}

func (c *Courses) AddNote(courseID int64, heading, content string) (int64, error) {
	return c.create("add note", func(int64) (int64, error) {
		return c.repo.CreateNote(courseID, heading, content)
	})
}

func (c *Courses) UpdateNote(id int64, p store.NotePatch) error {
	return c.mutate("update note", func(int64) error { return c.repo.UpdateNote(id, p) })
}

func (c *Courses) DeleteNote(id int64) error {
	return c.mutate("delete note", func(int64) error { return c.repo.DeleteNote(id) })
}

func (c *Courses) AddProject(courseID int64, name, techStack, details string, pdfURL *string) (int64, error) {
	return c.create("add project", func(int64) (int64, error) {
		return c.repo.CreateProject(courseID, name, techStack, details, pdfURL)
	})
}

func (c *Courses) UpdateProject(id int64, p store.ProjectPatch) error {
	return c.mutate("update project", func(int64) error { return c.repo.UpdateProject(id, p) })
}

func (c *Courses) DeleteProject(id int64) error {
	return c.mutate("delete project", func(int64) error { return c.repo.DeleteProject(id) })
}
