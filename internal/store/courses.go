package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Optional columns are coalesced so rows written by older builds scan cleanly.
var courseColumns = []string{
	"id", "user_id", "title",
	"COALESCE(description, '') AS description",
	"COALESCE(instructor, '') AS instructor",
	"COALESCE(total_hours, 0) AS total_hours",
	"COALESCE(credits, 0) AS credits",
	"COALESCE(tag, 'Self') AS tag",
	"COALESCE(progress, 0) AS progress",
	"created_at",
}

func validateCourse(tag Tag, progress int) error {
	if !tag.Valid() {
		return fmt.Errorf("%w: tag %q", ErrInvalidInput, tag)
	}
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrInvalidInput, progress)
	}
	return nil
}

func (s *Store) CreateCourse(userID int64, in CourseInput) (int64, error) {
	if err := validateCourse(in.Tag, in.Progress); err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	id, err := s.insert(s.psql.Insert("courses").
		Columns("user_id", "title", "description", "instructor", "total_hours", "credits", "tag", "progress").
		Values(userID, in.Title, in.Description, in.Instructor, in.TotalHours, in.Credits, string(in.Tag), in.Progress))
	if err != nil {
		return 0, fmt.Errorf("create course (user_id: %d): %w", userID, err)
	}
	return id, nil
}

// GetCourse returns the course without its children.
func (s *Store) GetCourse(id int64) (*Course, error) {
	var c Course
	if err := s.selectOne(&c, s.psql.Select(courseColumns...).From("courses").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get course (id: %d): %w", id, err)
	}
	return &c, nil
}

// ListCourses returns the user's courses, newest first, with assignments,
// notes and projects loaded.
func (s *Store) ListCourses(userID int64) ([]Course, error) {
	var courses []Course
	err := s.selectAll(&courses, s.psql.Select(courseColumns...).From("courses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list courses (user_id: %d): %w", userID, err)
	}

	for i := range courses {
		c := &courses[i]
		if c.Assignments, err = s.ListAssignments(c.ID); err != nil {
			return nil, err
		}
		if c.Notes, err = s.ListNotes(c.ID); err != nil {
			return nil, err
		}
		if c.Projects, err = s.ListProjects(c.ID); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (s *Store) UpdateCourse(id int64, p CoursePatch) error {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Instructor != nil {
		fields["instructor"] = *p.Instructor
	}
	if p.TotalHours != nil {
		fields["total_hours"] = *p.TotalHours
	}
	if p.Credits != nil {
		fields["credits"] = *p.Credits
	}
	if p.Tag != nil {
		if !p.Tag.Valid() {
			return fmt.Errorf("update course (id: %d): %w: tag %q", id, ErrInvalidInput, *p.Tag)
		}
		fields["tag"] = string(*p.Tag)
	}
	if p.Progress != nil {
		if *p.Progress < 0 || *p.Progress > 100 {
			return fmt.Errorf("update course (id: %d): %w: progress %d", id, ErrInvalidInput, *p.Progress)
		}
		fields["progress"] = *p.Progress
	}
	if err := s.patch("courses", id, fields); err != nil {
		return fmt.Errorf("update course (id: %d): %w", id, err)
	}
	return nil
}

// DeleteCourse removes the course; its assignments, notes and projects cascade.
func (s *Store) DeleteCourse(id int64) error {
	if err := s.remove("courses", id); err != nil {
		return fmt.Errorf("delete course (id: %d): %w", id, err)
	}
	return nil
}

// --- Assignments ---

var assignmentColumns = []string{
	"id", "course_id", "title",
	"COALESCE(description, '') AS description",
	"created_at",
}

func (s *Store) CreateAssignment(courseID int64, title, description string) (int64, error) {
	id, err := s.insert(s.psql.Insert("assignments").
		Columns("course_id", "title", "description").
		Values(courseID, title, description))
	if err != nil {
		return 0, fmt.Errorf("create assignment (course_id: %d): %w", courseID, err)
	}
	return id, nil
}

func (s *Store) ListAssignments(courseID int64) ([]Assignment, error) {
	var out []Assignment
	err := s.selectAll(&out, s.psql.Select(assignmentColumns...).From("assignments").
		Where(sq.Eq{"course_id": courseID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list assignments (course_id: %d): %w", courseID, err)
	}
	return out, nil
}

func (s *Store) UpdateAssignment(id int64, p AssignmentPatch) error {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if err := s.patch("assignments", id, fields); err != nil {
		return fmt.Errorf("update assignment (id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) DeleteAssignment(id int64) error {
	if err := s.remove("assignments", id); err != nil {
		return fmt.Errorf("delete assignment (id: %d): %w", id, err)
	}
	return nil
}

// --- Notes ---

var noteColumns = []string{
	"id", "course_id", "heading",
	"COALESCE(content, '') AS content",
	"created_at",
}

func (s *Store) CreateNote(courseID int64, heading, content string) (int64, error) {
	id, err := s.insert(s.psql.Insert("notes").
		Columns("course_id", "heading", "content").
		Values(courseID, heading, content))
	if err != nil {
		return 0, fmt.Errorf("create note (course_id: %d): %w", courseID, err)
	}
	return id, nil
}

func (s *Store) ListNotes(courseID int64) ([]Note, error) {
	var out []Note
	err := s.selectAll(&out, s.psql.Select(noteColumns...).From("notes").
		Where(sq.Eq{"course_id": courseID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list notes (course_id: %d): %w", courseID, err)
	}
	return out, nil
}

func (s *Store) GetNote(id int64) (*Note, error) {
	var n Note
	if err := s.selectOne(&n, s.psql.Select(noteColumns...).From("notes").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get note (id: %d): %w", id, err)
	}
	return &n, nil
}

func (s *Store) UpdateNote(id int64, p NotePatch) error {
	fields := map[string]any{}
	if p.Heading != nil {
		fields["heading"] = *p.Heading
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	if err := s.patch("notes", id, fields); err != nil {
		return fmt.Errorf("update note (id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) DeleteNote(id int64) error {
	if err := s.remove("notes", id); err != nil {
		return fmt.Errorf("delete note (id: %d): %w", id, err)
	}
	return nil
}
