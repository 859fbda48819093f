package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Projects belong to a course and may link a PDF brief.
var projectColumns = []string{
	"id", "course_id", "name",
	"COALESCE(tech_stack, '') AS tech_stack",
	"COALESCE(details, '') AS details",
	"pdf_url",
	"created_at",
}

func (s *Store) CreateProject(courseID int64, name, techStack, details string, pdfURL *string) (int64, error) {
	id, err := s.insert(s.psql.Insert("projects").
		Columns("course_id", "name", "tech_stack", "details", "pdf_url").
		Values(courseID, name, techStack, details, pdfURL))
	if err != nil {
		return 0, fmt.Errorf("create project (course_id: %d): %w", courseID, err)
	}
	return id, nil
}

func (s *Store) ListProjects(courseID int64) ([]Project, error) {
	var out []Project
	err := s.selectAll(&out, s.psql.Select(projectColumns...).From("projects").
		Where(sq.Eq{"course_id": courseID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list projects (course_id: %d): %w", courseID, err)
	}
	return out, nil
}

func (s *Store) GetProject(id int64) (*Project, error) {
	var p Project
	if err := s.selectOne(&p, s.psql.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get project (id: %d): %w", id, err)
	}
	return &p, nil
}

// UpdateProject applies the non-nil fields of p. An empty PDFURL clears the link.
func (s *Store) UpdateProject(id int64, p ProjectPatch) error {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.TechStack != nil {
		fields["tech_stack"] = *p.TechStack
	}
	if p.Details != nil {
		fields["details"] = *p.Details
	}
	if p.PDFURL != nil {
		fields["pdf_url"] = nullable(*p.PDFURL)
	}
	if err := s.patch("projects", id, fields); err != nil {
		return fmt.Errorf("update project (id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) DeleteProject(id int64) error {
	if err := s.remove("projects", id); err != nil {
		return fmt.Errorf("delete project (id: %d): %w", id, err)
	}
	return nil
}
