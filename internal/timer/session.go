// Package timer runs the countdown for one focus block and persists its
// progress so a session survives leaving the screen or restarting the app.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/learntrack/internal/store"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid timer transition")

const (
	tickInterval = time.Second

	// checkpointEvery is how often, in ticks, a running session writes its
	// elapsed time so a restart loses at most this many seconds.
	checkpointEvery = 30

	defaultFocus = "Focus Session"
)

// BlockStore is the persistence the timer needs. provider.Study satisfies it.
type BlockStore interface {
	FocusBlock(id int64) (store.FocusBlock, error)
	UpdateFocusBlock(id int64, p store.FocusBlockPatch) error
	DeleteFocusBlock(id int64) error
	AddSession(in store.SessionInput) (int64, error)
}

type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Ready"
	case Running:
		return "Focusing"
	case Paused:
		return "Paused"
	case Completed:
		return "Completed"
	case Cancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Summary describes the session recorded by Complete.
type Summary struct {
	SessionID int64
	Course    string
	Minutes   int
	Flags     store.Flags
}

type Session struct {
	bs    BlockStore
	sched Scheduler
	clock Clock

	mu        sync.Mutex
	block     store.FocusBlock
	state     State
	remaining int // seconds
	flags     store.Flags
	stop      func()
	gen       uint64 // bumped on every ticker stop so in-flight ticks are dropped
	ticks     int
	summary   *Summary
	err       error
}

// Open restores the session for blockID from its persisted state. A block
// that was running when last seen resumes counting immediately.
func Open(bs BlockStore, sched Scheduler, clock Clock, blockID int64) (*Session, error) {
	b, err := bs.FocusBlock(blockID)
	if err != nil {
		return nil, fmt.Errorf("open session (block_id: %d): %w", blockID, err)
	}

	s := &Session{
		bs:    bs,
		sched: sched,
		clock: clock,
		block: b,
		flags: append(store.Flags{}, b.Flags...),
	}

	switch {
	case !b.IsActive:
		s.state = Idle
		s.remaining = b.Duration * 60
	case b.IsPaused:
		s.state = Paused
		s.remaining = remainingAfter(b)
	default:
		s.state = Running
		s.remaining = remainingAfter(b)
		if s.remaining == 0 {
			// Ran out while nobody was watching.
			s.tickLocked()
		} else {
			s.startTicker()
		}
	}

	zap.S().Debugw("session opened", "block_id", blockID, "state", s.state.String(), "remaining", s.remaining)
	return s, nil
}

func remainingAfter(b store.FocusBlock) int {
	r := b.Duration*60 - b.ElapsedTime
	if r < 0 {
		return 0
	}
	return r
}

// FormatOffset renders a second count as m:ss with unpadded minutes.
func FormatOffset(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.remaining) * time.Second
}

func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.elapsedLocked()) * time.Second
}

func (s *Session) Flags() store.Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(store.Flags{}, s.flags...)
}

func (s *Session) Block() store.FocusBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block
}

// Summary returns the recorded session once the block has completed.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// Err reports a failure that happened on the tick goroutine, such as an
// automatic completion that could not be recorded.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return fmt.Errorf("start from %s: %w", s.state, ErrInvalidTransition)
	}
	err := s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{
		IsActive: store.Ptr(true),
		IsPaused: store.Ptr(false),
	})
	if err != nil {
		return fmt.Errorf("start session (block_id: %d): %w", s.block.ID, err)
	}
	s.state = Running
	s.startTicker()
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return fmt.Errorf("pause from %s: %w", s.state, ErrInvalidTransition)
	}
	s.stopTicker()
	if err := s.persistProgress(true); err != nil {
		// The store still has the block running, so keep counting down.
		s.startTicker()
		return err
	}
	s.state = Paused
	return nil
}

// Resume restarts the countdown from the elapsed time in the store.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Paused {
		return fmt.Errorf("resume from %s: %w", s.state, ErrInvalidTransition)
	}
	b, err := s.bs.FocusBlock(s.block.ID)
	if err != nil {
		return fmt.Errorf("resume session (block_id: %d): %w", s.block.ID, err)
	}
	s.block = b
	s.remaining = remainingAfter(b)

	if err := s.persistProgress(false); err != nil {
		return err
	}
	s.state = Running
	s.startTicker()
	return nil
}

func (s *Session) Toggle() error {
	switch s.State() {
	case Running:
		return s.Pause()
	case Paused:
		return s.Resume()
	}
	return fmt.Errorf("toggle from %s: %w", s.State(), ErrInvalidTransition)
}

// Flag marks the current elapsed offset and returns it.
func (s *Session) Flag() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running && s.state != Paused {
		return "", fmt.Errorf("flag from %s: %w", s.state, ErrInvalidTransition)
	}
	mark := FormatOffset(s.elapsedLocked())
	s.flags = append(s.flags, mark)

	flags := append(store.Flags{}, s.flags...)
	if err := s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{Flags: &flags}); err != nil {
		return mark, fmt.Errorf("save flag (block_id: %d): %w", s.block.ID, err)
	}
	return mark, nil
}

// Complete ends the session early or on time, records it in the history
// and removes the block.
func (s *Session) Complete() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

// Edit changes a block that has not been started yet.
func (s *Session) Edit(title, details string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return fmt.Errorf("edit from %s: %w", s.state, ErrInvalidTransition)
	}
	if minutes <= 0 {
		return fmt.Errorf("edit session: %w: duration %d", store.ErrInvalidInput, minutes)
	}
	err := s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{
		Title:    &title,
		Details:  &details,
		Duration: &minutes,
	})
	if err != nil {
		return fmt.Errorf("edit session (block_id: %d): %w", s.block.ID, err)
	}
	s.block.Title = title
	s.block.Details = details
	s.block.Duration = minutes
	s.remaining = minutes * 60
	return nil
}

// Delete discards the block without recording a session.
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Completed || s.state == Cancelled {
		return fmt.Errorf("delete from %s: %w", s.state, ErrInvalidTransition)
	}
	s.stopTicker()
	if err := s.bs.DeleteFocusBlock(s.block.ID); err != nil {
		return fmt.Errorf("delete session (block_id: %d): %w", s.block.ID, err)
	}
	s.state = Cancelled
	return nil
}

// Close stops the ticker without touching the store. The persisted state is
// left as-is so the next Open resumes from it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTicker()
}

func (s *Session) elapsedLocked() int {
	return s.block.Duration*60 - s.remaining
}

func (s *Session) startTicker() {
	gen := s.gen
	s.ticks = 0
	s.stop = s.sched.Every(tickInterval, func() { s.tick(gen) })
}

func (s *Session) stopTicker() {
	s.gen++
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != Running {
		return
	}
	s.tickLocked()
}

func (s *Session) tickLocked() {
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		if _, err := s.completeLocked(); err != nil {
			zap.S().Errorw("auto-complete failed", "block_id", s.block.ID, "error", err)
			s.err = err
		}
		return
	}

	s.ticks++
	if s.ticks%checkpointEvery == 0 {
		elapsed := s.elapsedLocked()
		if err := s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{ElapsedTime: &elapsed}); err != nil {
			zap.S().Warnw("checkpoint failed", "block_id", s.block.ID, "error", err)
		}
	}
}

// persistProgress writes elapsed time, flags and the paused bit together.
func (s *Session) persistProgress(paused bool) error {
	elapsed := s.elapsedLocked()
	flags := append(store.Flags{}, s.flags...)
	err := s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{
		ElapsedTime: &elapsed,
		IsPaused:    &paused,
		IsActive:    store.Ptr(true),
		Flags:       &flags,
	})
	if err != nil {
		return fmt.Errorf("save progress (block_id: %d): %w", s.block.ID, err)
	}
	return nil
}

func (s *Session) completeLocked() (Summary, error) {
	if s.state != Running && s.state != Paused {
		return Summary{}, fmt.Errorf("complete from %s: %w", s.state, ErrInvalidTransition)
	}
	s.stopTicker()

	now := s.clock.Now()
	focus := s.block.Details
	if focus == "" {
		focus = defaultFocus
	}
	minutes := s.elapsedLocked() / 60

	id, err := s.bs.AddSession(store.SessionInput{
		Course:          s.block.Title,
		DurationMinutes: minutes,
		Focus:           focus,
		LoggedAt:        now.Format("15:04"),
		Color:           s.block.Color,
		Date:            now,
	})
	if err != nil {
		// Nothing recorded; stay paused so the user can retry.
		s.state = Paused
		return Summary{}, fmt.Errorf("record session (block_id: %d): %w", s.block.ID, err)
	}

	summary := Summary{SessionID: id, Course: s.block.Title, Minutes: minutes, Flags: append(store.Flags{}, s.flags...)}
	s.summary = &summary
	s.state = Completed
	zap.S().Infow("session completed", "block_id", s.block.ID, "session_id", id, "minutes", minutes)

	var errs []error
	err = s.bs.UpdateFocusBlock(s.block.ID, store.FocusBlockPatch{
		IsActive:    store.Ptr(false),
		IsPaused:    store.Ptr(false),
		ElapsedTime: store.Ptr(0),
		Flags:       &store.Flags{},
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("reset block (block_id: %d): %w", s.block.ID, err))
	}
	if err := s.bs.DeleteFocusBlock(s.block.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete block (block_id: %d): %w", s.block.ID, err))
	}
	return summary, errors.Join(errs...)
}
