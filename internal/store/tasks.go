package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var taskColumns = []string{
	"id", "user_id", "title",
	"COALESCE(details, '') AS details",
	"COALESCE(deadline, '') AS deadline",
	"COALESCE(priority, 'Medium') AS priority",
	"COALESCE(status, 'Not started') AS status",
	"created_at",
}

func (s *Store) CreateTask(userID int64, in TaskInput) (int64, error) {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusNotStarted
	}
	if !in.Priority.Valid() || !in.Status.Valid() {
		return 0, fmt.Errorf("create task: %w: priority %q status %q", ErrInvalidInput, in.Priority, in.Status)
	}
	id, err := s.insert(s.psql.Insert("tasks").
		Columns("user_id", "title", "details", "deadline", "priority", "status").
		Values(userID, in.Title, nullable(in.Details), nullable(in.Deadline), string(in.Priority), string(in.Status)))
	if err != nil {
		return 0, fmt.Errorf("create task (user_id: %d): %w", userID, err)
	}
	return id, nil
}

func (s *Store) GetTask(id int64) (*Task, error) {
	var t Task
	if err := s.selectOne(&t, s.psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get task (id: %d): %w", id, err)
	}
	return &t, nil
}

func (s *Store) ListTasks(userID int64) ([]Task, error) {
	var tasks []Task
	err := s.selectAll(&tasks, s.psql.Select(taskColumns...).From("tasks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list tasks (user_id: %d): %w", userID, err)
	}
	return tasks, nil
}

func (s *Store) ListTasksByStatus(userID int64, status Status) ([]Task, error) {
	var tasks []Task
	err := s.selectAll(&tasks, s.psql.Select(taskColumns...).From("tasks").
		Where(sq.Eq{"user_id": userID, "status": string(status)}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list tasks (user_id: %d, status: %s): %w", userID, status, err)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(id int64, p TaskPatch) error {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Details != nil {
		fields["details"] = nullable(*p.Details)
	}
	if p.Deadline != nil {
		fields["deadline"] = nullable(*p.Deadline)
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return fmt.Errorf("update task (id: %d): %w: priority %q", id, ErrInvalidInput, *p.Priority)
		}
		fields["priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return fmt.Errorf("update task (id: %d): %w: status %q", id, ErrInvalidInput, *p.Status)
		}
		fields["status"] = string(*p.Status)
	}
	if err := s.patch("tasks", id, fields); err != nil {
		return fmt.Errorf("update task (id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) UpdateTaskStatus(id int64, status Status) error {
	return s.UpdateTask(id, TaskPatch{Status: &status})
}

func (s *Store) DeleteTask(id int64) error {
	if err := s.remove("tasks", id); err != nil {
		return fmt.Errorf("delete task (id: %d): %w", id, err)
	}
	return nil
}

// nullable stores empty optional text as NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
