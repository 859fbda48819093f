package store

import "fmt"

// Snapshot holds every row in the database, for backups and debugging.
type Snapshot struct {
	Users       []User       `json:"users"`
	Courses     []Course     `json:"courses"`
	Tasks       []Task       `json:"tasks"`
	FocusBlocks []FocusBlock `json:"focus_blocks"`
	Sessions    []Session    `json:"sessions"`
	Settings    []Setting    `json:"settings"`
}

// Snapshot reads all users and everything they own. Courses carry their
// children.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{}
	if err := s.selectAll(&snap.Users, s.psql.Select(userColumns...).From("users").OrderBy("id")); err != nil {
		return nil, fmt.Errorf("snapshot users: %w", err)
	}

	for _, u := range snap.Users {
		courses, err := s.ListCourses(u.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snap.Courses = append(snap.Courses, courses...)

		tasks, err := s.ListTasks(u.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snap.Tasks = append(snap.Tasks, tasks...)

		blocks, err := s.ListFocusBlocks(u.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snap.FocusBlocks = append(snap.FocusBlocks, blocks...)

		sessions, err := s.ListSessions(u.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snap.Sessions = append(snap.Sessions, sessions...)
	}

	settings, err := s.GetAllSettings()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Settings = settings
	return snap, nil
}
