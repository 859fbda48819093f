package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// timeLayout is fixed-width so that text ordering in SQLite matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp scans the text timestamps the schema stores into a time.Time.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(timeLayout), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", src)
}

func (t *Timestamp) parse(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	// Rows written by older builds use SQLite's CURRENT_TIMESTAMP format.
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", s)
}

// Equal reports whether both timestamps denote the same instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Flags is the ordered list of "m:ss" markers stored as a JSON array.
type Flags []string

func (f Flags) Value() (driver.Value, error) {
	if f == nil {
		f = Flags{}
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *Flags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan flags: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*f = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("scan flags: %w", err)
	}
	*f = list
	return nil
}

type Tag string

const (
	TagSelf    Tag = "Self"
	TagCollege Tag = "College"
)

func (t Tag) Valid() bool { return t == TagSelf || t == TagCollege }

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Status string

const (
	StatusNotStarted Status = "Not started"
	StatusDoing      Status = "Doing"
	StatusCompleted  Status = "Completed"
)

func (s Status) Valid() bool {
	return s == StatusNotStarted || s == StatusDoing || s == StatusCompleted
}

// Next cycles Not started -> Doing -> Completed -> Not started.
func (s Status) Next() Status {
	switch s {
	case StatusNotStarted:
		return StatusDoing
	case StatusDoing:
		return StatusCompleted
	default:
		return StatusNotStarted
	}
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Name      string    `db:"name" json:"name"`
	College   string    `db:"college" json:"college"`
	CreatedAt Timestamp `db:"created_at" json:"created_at"`
}

type UserPatch struct {
	Email   *string
	Name    *string
	College *string
}

type Course struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Instructor  string    `db:"instructor" json:"instructor"`
	TotalHours  int       `db:"total_hours" json:"total_hours"`
	Credits     int       `db:"credits" json:"credits"`
	Tag         Tag       `db:"tag" json:"tag"`
	Progress    int       `db:"progress" json:"progress"`
	CreatedAt   Timestamp `db:"created_at" json:"created_at"`

	Assignments []Assignment `db:"-" json:"assignments,omitempty"`
	Notes       []Note       `db:"-" json:"notes,omitempty"`
	Projects    []Project    `db:"-" json:"projects,omitempty"`
}

type CourseInput struct {
	Title       string
	Description string
	Instructor  string
	TotalHours  int
	Credits     int
	Tag         Tag
	Progress    int
}

type CoursePatch struct {
	Title       *string
	Description *string
	Instructor  *string
	TotalHours  *int
	Credits     *int
	Tag         *Tag
	Progress    *int
}

type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   Timestamp `db:"created_at" json:"created_at"`
}

type AssignmentPatch struct {
	Title       *string
	Description *string
}

type Note struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Heading   string    `db:"heading" json:"heading"`
	Content   string    `db:"content" json:"content"`
	CreatedAt Timestamp `db:"created_at" json:"created_at"`
}

type NotePatch struct {
	Heading *string
	Content *string
}

type Project struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Name      string    `db:"name" json:"name"`
	TechStack string    `db:"tech_stack" json:"tech_stack"`
	Details   string    `db:"details" json:"details"`
	PDFURL    *string   `db:"pdf_url" json:"pdf_url,omitempty"`
	CreatedAt Timestamp `db:"created_at" json:"created_at"`
}

type ProjectPatch struct {
	Name      *string
	TechStack *string
	Details   *string
	PDFURL    *string
}

type Task struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Details   string    `db:"details" json:"details,omitempty"`
	Deadline  string    `db:"deadline" json:"deadline,omitempty"`
	Priority  Priority  `db:"priority" json:"priority"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt Timestamp `db:"created_at" json:"created_at"`
}

type TaskInput struct {
	Title    string
	Details  string
	Deadline string
	Priority Priority
	Status   Status
}

type TaskPatch struct {
	Title    *string
	Details  *string
	Deadline *string
	Priority *Priority
	Status   *Status
}

// FocusBlock is a scheduled study session that has not been completed yet.
type FocusBlock struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Details     string    `db:"details" json:"details,omitempty"`
	Day         string    `db:"day" json:"day"`
	Date        string    `db:"date" json:"date"` // 2006-01-02
	Time        string    `db:"time" json:"time"` // 15:04
	Duration    int       `db:"duration" json:"duration"` // minutes
	Color       string    `db:"color" json:"color"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	IsPaused    bool      `db:"is_paused" json:"is_paused"`
	ElapsedTime int       `db:"elapsed_time" json:"elapsed_time"` // seconds
	Flags       Flags     `db:"flagged_times" json:"flagged_times"`
	CreatedAt   Timestamp `db:"created_at" json:"created_at"`
}

type FocusBlockInput struct {
	Title    string
	Details  string
	Date     string
	Time     string
	Duration int
	Color    string
}

type FocusBlockPatch struct {
	Title       *string
	Details     *string
	Day         *string
	Date        *string
	Time        *string
	Duration    *int
	Color       *string
	IsActive    *bool
	IsPaused    *bool
	ElapsedTime *int
	Flags       *Flags
}

// Session is an immutable record of a completed focus block.
type Session struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Course          string    `db:"course" json:"course"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Focus           string    `db:"focus" json:"focus"`
	LoggedAt        string    `db:"logged_at" json:"logged_at"`
	Color           string    `db:"color" json:"color"`
	Date            Timestamp `db:"session_date" json:"date"`
	CreatedAt       Timestamp `db:"created_at" json:"created_at"`
}

type SessionInput struct {
	Course          string
	DurationMinutes int
	Focus           string
	LoggedAt        string
	Color           string
	Date            time.Time
}

type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
