package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const dateLayout = "2006-01-02"

var focusBlockColumns = []string{
	"id", "user_id", "title",
	"COALESCE(details, '') AS details",
	"COALESCE(day, '') AS day",
	"COALESCE(date, '') AS date",
	"COALESCE(time, '') AS time",
	"COALESCE(duration, 0) AS duration",
	"COALESCE(color, '') AS color",
	"is_active", "is_paused", "elapsed_time",
	"flagged_times",
	"created_at",
}

// CreateFocusBlock schedules a block. Day is derived from Date.
func (s *Store) CreateFocusBlock(userID int64, in FocusBlockInput) (int64, error) {
	if in.Duration <= 0 {
		return 0, fmt.Errorf("create focus block: %w: duration %d", ErrInvalidInput, in.Duration)
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return 0, fmt.Errorf("create focus block: %w: date %q", ErrInvalidInput, in.Date)
	}
	id, err := s.insert(s.psql.Insert("focus_blocks").
		Columns("user_id", "title", "details", "day", "date", "time", "duration", "color",
			"is_active", "is_paused", "elapsed_time", "flagged_times").
		Values(userID, in.Title, in.Details, date.Weekday().String(), in.Date, in.Time, in.Duration, in.Color,
			false, false, 0, Flags{}))
	if err != nil {
		return 0, fmt.Errorf("create focus block (user_id: %d): %w", userID, err)
	}
	return id, nil
}

func (s *Store) GetFocusBlock(id int64) (*FocusBlock, error) {
	var b FocusBlock
	if err := s.selectOne(&b, s.psql.Select(focusBlockColumns...).From("focus_blocks").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get focus block (id: %d): %w", id, err)
	}
	return &b, nil
}

// ListFocusBlocks returns the user's blocks in schedule order.
func (s *Store) ListFocusBlocks(userID int64) ([]FocusBlock, error) {
	var blocks []FocusBlock
	err := s.selectAll(&blocks, s.psql.Select(focusBlockColumns...).From("focus_blocks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date", "time", "id"))
	if err != nil {
		return nil, fmt.Errorf("list focus blocks (user_id: %d): %w", userID, err)
	}
	return blocks, nil
}

func (s *Store) UpdateFocusBlock(id int64, p FocusBlockPatch) error {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Details != nil {
		fields["details"] = *p.Details
	}
	if p.Date != nil {
		date, err := time.Parse(dateLayout, *p.Date)
		if err != nil {
			return fmt.Errorf("update focus block (id: %d): %w: date %q", id, ErrInvalidInput, *p.Date)
		}
		fields["date"] = *p.Date
		if p.Day == nil {
			fields["day"] = date.Weekday().String()
		}
	}
	if p.Day != nil {
		fields["day"] = *p.Day
	}
	if p.Time != nil {
		fields["time"] = *p.Time
	}
	if p.Duration != nil {
		if *p.Duration <= 0 {
			return fmt.Errorf("update focus block (id: %d): %w: duration %d", id, ErrInvalidInput, *p.Duration)
		}
		fields["duration"] = *p.Duration
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	if p.IsPaused != nil {
		fields["is_paused"] = *p.IsPaused
	}
	if p.ElapsedTime != nil {
		fields["elapsed_time"] = *p.ElapsedTime
	}
	if p.Flags != nil {
		fields["flagged_times"] = *p.Flags
	}
	if err := s.patch("focus_blocks", id, fields); err != nil {
		return fmt.Errorf("update focus block (id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) DeleteFocusBlock(id int64) error {
	if err := s.remove("focus_blocks", id); err != nil {
		return fmt.Errorf("delete focus block (id: %d): %w", id, err)
	}
	return nil
}

// --- Sessions ---

var sessionColumns = []string{
	"id", "user_id", "course",
	"duration_minutes",
	"COALESCE(focus, '') AS focus",
	"COALESCE(logged_at, '') AS logged_at",
	"COALESCE(color, '') AS color",
	"session_date",
	"created_at",
}

// CreateSession appends a completed session to the user's history.
func (s *Store) CreateSession(userID int64, in SessionInput) (int64, error) {
	if in.DurationMinutes < 0 {
		return 0, fmt.Errorf("create session: %w: duration %d", ErrInvalidInput, in.DurationMinutes)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	id, err := s.insert(s.psql.Insert("study_sessions").
		Columns("user_id", "course", "duration_minutes", "focus", "logged_at", "color", "session_date").
		Values(userID, in.Course, in.DurationMinutes, in.Focus, in.LoggedAt, in.Color, NewTimestamp(in.Date)))
	if err != nil {
		return 0, fmt.Errorf("create session (user_id: %d): %w", userID, err)
	}
	return id, nil
}

func (s *Store) GetSession(id int64) (*Session, error) {
	var sess Session
	if err := s.selectOne(&sess, s.psql.Select(sessionColumns...).From("study_sessions").Where(sq.Eq{"id": id})); err != nil {
		return nil, fmt.Errorf("get session (id: %d): %w", id, err)
	}
	return &sess, nil
}

// ListSessions returns the user's history, most recent first.
func (s *Store) ListSessions(userID int64) ([]Session, error) {
	var sessions []Session
	err := s.selectAll(&sessions, s.psql.Select(sessionColumns...).From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("session_date DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list sessions (user_id: %d): %w", userID, err)
	}
	return sessions, nil
}

func (s *Store) DeleteSession(id int64) error {
	if err := s.remove("study_sessions", id); err != nil {
		return fmt.Errorf("delete session (id: %d): %w", id, err)
	}
	return nil
}
