package provider

import (
	"github.com/sadopc/learntrack/internal/store"
)

type TaskRepository interface {
	ListTasks(userID int64) ([]store.Task, error)
	CreateTask(userID int64, in store.TaskInput) (int64, error)
	UpdateTask(id int64, p store.TaskPatch) error
	UpdateTaskStatus(id int64, status store.Status) error
	DeleteTask(id int64) error
}

type Tasks struct {
	owned
	repo  TaskRepository
	tasks []store.Task
}

func NewTasks(repo TaskRepository) *Tasks {
	t := &Tasks{repo: repo}
	t.name = "tasks"
	t.reset = func() { t.tasks = nil }
	t.load = func(ownerID int64) error {
		tasks, err := t.repo.ListTasks(ownerID)
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.tasks = tasks
		t.mu.Unlock()
		return nil
	}
	return t
}

func (t *Tasks) OwnerChanged(owner *store.User) { t.setOwner(owner) }

func (t *Tasks) Tasks() []store.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.tasks == nil {
		return nil
	}
	return append([]store.Task(nil), t.tasks...)
}

// TasksByStatus filters the snapshot, keeping its newest-first order.
func (t *Tasks) TasksByStatus(status store.Status) []store.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []store.Task
	for _, task := range t.tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

func (t *Tasks) AddTask(in store.TaskInput) (int64, error) {
	return t.create("add task", func(ownerID int64) (int64, error) {
		return t.repo.CreateTask(ownerID, in)
	})
}

func (t *Tasks) UpdateTask(id int64, p store.TaskPatch) error {
	return t.mutate("update task", func(int64) error { return t.repo.UpdateTask(id, p) })
}

func (t *Tasks) UpdateTaskStatus(id int64, status store.Status) error {
	return t.mutate("update task status", func(int64) error { return t.repo.UpdateTaskStatus(id, status) })
}

func (t *Tasks) DeleteTask(id int64) error {
	return t.mutate("delete task", func(int64) error { return t.repo.DeleteTask(id) })
}
