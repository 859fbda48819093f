package provider

import (
	"github.com/sadopc/learntrack/internal/store"
)

type StudyRepository interface {
	ListFocusBlocks(userID int64) ([]store.FocusBlock, error)
	GetFocusBlock(id int64) (*store.FocusBlock, error)
	CreateFocusBlock(userID int64, in store.FocusBlockInput) (int64, error)
	UpdateFocusBlock(id int64, p store.FocusBlockPatch) error
	DeleteFocusBlock(id int64) error

	ListSessions(userID int64) ([]store.Session, error)
	CreateSession(userID int64, in store.SessionInput) (int64, error)
	DeleteSession(id int64) error
}

// Study holds the owner's scheduled focus blocks and completed sessions.
// It is also the persistence port of the session timer, which calls it from
// its tick goroutine.
type Study struct {
	owned
	repo     StudyRepository
	blocks   []store.FocusBlock
	sessions []store.Session
}

func NewStudy(repo StudyRepository) *Study {
	s := &Study{repo: repo}
	s.name = "study"
	s.reset = func() {
		s.blocks = nil
		s.sessions = nil
	}
	s.load = func(ownerID int64) error {
		blocks, err := s.repo.ListFocusBlocks(ownerID)
		if err != nil {
			return err
		}
		sessions, err := s.repo.ListSessions(ownerID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.blocks = blocks
		s.sessions = sessions
		s.mu.Unlock()
		return nil
	}
	return s
}

func (s *Study) OwnerChanged(owner *store.User) { s.setOwner(owner) }

func (s *Study) Blocks() []store.FocusBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.blocks == nil {
		return nil
	}
	return append([]store.FocusBlock(nil), s.blocks...)
}

func (s *Study) Sessions() []store.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessions == nil {
		return nil
	}
	return append([]store.Session(nil), s.sessions...)
}

// FocusBlock reads the block from the store rather than the snapshot, so
// the timer always sees the last persisted elapsed time.
func (s *Study) FocusBlock(id int64) (store.FocusBlock, error) {
	b, err := s.repo.GetFocusBlock(id)
	if err != nil {
		return store.FocusBlock{}, err
	}
	return *b, nil
}

func (s *Study) AddFocusBlock(in store.FocusBlockInput) (int64, error) {
	return s.create("add focus block", func(ownerID int64) (int64, error) {
		return s.repo.CreateFocusBlock(ownerID, in)
	})
}

func (s *Study) UpdateFocusBlock(id int64, p store.FocusBlockPatch) error {
	return s.mutate("update focus block", func(int64) error { return s.repo.UpdateFocusBlock(id, p) })
}

func (s *Study) DeleteFocusBlock(id int64) error {
	return s.mutate("delete focus block", func(int64) error { return s.repo.DeleteFocusBlock(id) })
}

func (s *Study) AddSession(in store.SessionInput) (int64, error) {
	return s.create("add session", func(ownerID int64) (int64, error) {
		return s.repo.CreateSession(ownerID, in)
	})
}

func (s *Study) DeleteSession(id int64) error {
	return s.mutate("delete session", func(int64) error { return s.repo.DeleteSession(id) })
}
