package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, email string) *User {
	t.Helper()
	u, err := s.CreateUser(email, "secret", "Ada", "Analytical College")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func newTestCourse(t *testing.T, s *Store, userID int64, title string) int64 {
	t.Helper()
	id, err := s.CreateCourse(userID, CourseInput{Title: title, Tag: TagSelf})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return id
}

func newTestBlock(t *testing.T, s *Store, userID int64, date, clock string) int64 {
	t.Helper()
	id, err := s.CreateFocusBlock(userID, FocusBlockInput{
		Title: "Algorithms", Date: date, Time: clock, Duration: 25, Color: "#38BDF8",
	})
	if err != nil {
		t.Fatalf("create focus block: %v", err)
	}
	return id
}

// rawRow returns every column of one row as scanned by the driver.
func rawRow(t *testing.T, s *Store, table string, id int64) []any {
	t.Helper()
	row := s.db.QueryRowx("SELECT * FROM "+table+" WHERE id = ?", id)
	cols, err := row.SliceScan()
	if err != nil {
		t.Fatalf("raw row %s/%d: %v", table, id, err)
	}
	return cols
}

var ignoreGenerated = cmpopts.IgnoreFields(Course{}, "ID", "CreatedAt")

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "learntrack.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	u := newTestUser(t, s, "ada@example.com")
	s.Close()

	// Reopen: data survives and migrations do not run twice.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.GetUser(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("unexpected user after reopen: %+v", got)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
	tx, err := s.db.Beginx()
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	if err := migrateV2(tx); err != nil {
		t.Fatalf("re-running v2 on an upgraded file failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
}

// legacySchema is the layout written by the first release: no timer columns,
// text durations and CURRENT_TIMESTAMP dates.
var legacySchema = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL, name TEXT NOT NULL, college TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE focus_blocks (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		title TEXT NOT NULL, details TEXT, day TEXT, date TEXT, time TEXT, duration INTEGER, color TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE study_sessions (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		course TEXT NOT NULL, duration TEXT, focus TEXT, logged_at TEXT, color TEXT,
		session_date DATETIME DEFAULT CURRENT_TIMESTAMP, created_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
	`INSERT INTO users (email, password, name, college) VALUES ('old@example.com', 'pw', 'Old', 'Uni')`,
	`INSERT INTO focus_blocks (user_id, title, day, date, time, duration, color)
		VALUES (1, 'Legacy block', 'Monday', '2024-03-04', '09:00', 50, '#fff')`,
	`INSERT INTO study_sessions (user_id, course, duration, focus, logged_at, color, session_date)
		VALUES (1, 'Physics', '1h 30m', 'Optics', '12:00', '#000', '2024-03-04 12:00:00')`,
}

// writeLegacyFile creates a first-release database file, then runs extra.
func writeLegacyFile(t *testing.T, extra ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	for _, q := range append(append([]string{}, legacySchema...), extra...) {
		if _, err := raw.Exec(q); err != nil {
			t.Fatalf("seed legacy schema: %v", err)
		}
	}
	return path
}

func TestMigrateLegacyFile(t *testing.T) {
	path := writeLegacyFile(t)

	s, err := New(path)
	if err != nil {
		t.Fatalf("open legacy file: %v", err)
	}
	defer s.Close()

	for _, col := range []string{"is_active", "is_paused", "elapsed_time", "flagged_times"} {
		ok, err := hasColumn(s.db, "focus_blocks", col)
		if err != nil || !ok {
			t.Fatalf("expected focus_blocks.%s after upgrade (err=%v)", col, err)
		}
	}

	blocks, err := s.ListFocusBlocks(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Title != "Legacy block" {
		t.Fatalf("legacy block not preserved: %+v", blocks)
	}
	if blocks[0].IsActive || blocks[0].ElapsedTime != 0 || len(blocks[0].Flags) != 0 {
		t.Fatalf("upgraded block should be idle: %+v", blocks[0])
	}

	sessions, err := s.ListSessions(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].DurationMinutes != 90 {
		t.Fatalf("expected backfilled 90 minutes, got %+v", sessions)
	}
	if sessions[0].CreatedAt.IsZero() {
		t.Fatal("legacy CURRENT_TIMESTAMP should scan")
	}
}

func TestMigrateLegacyTimestampsSortWithNewRows(t *testing.T) {
	s, err := New(writeLegacyFile(t))
	if err != nil {
		t.Fatalf("open legacy file: %v", err)
	}
	defer s.Close()

	for _, c := range []struct{ table, column string }{
		{"users", "created_at"}, {"focus_blocks", "created_at"},
		{"study_sessions", "created_at"}, {"study_sessions", "session_date"},
	} {
		var old int
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s NOT LIKE '%%T%%Z'", c.table, c.column)
		if err := s.db.Get(&old, q); err != nil {
			t.Fatal(err)
		}
		if old != 0 {
			t.Fatalf("%s.%s still has %d legacy timestamps", c.table, c.column, old)
		}
	}

	// Earlier on the same day than the legacy 12:00 session.
	_, err = s.CreateSession(1, SessionInput{
		Course: "Chemistry", DurationMinutes: 30, Date: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := s.ListSessions(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].Course != "Physics" || sessions[1].Course != "Chemistry" {
		t.Fatalf("sessions out of time order: %+v", sessions)
	}
	want := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if !sessions[0].Date.Time.Equal(want) {
		t.Fatalf("legacy session date = %s, want %s", sessions[0].Date.Time, want)
	}
}

func TestMigrateFailureLeavesFileUntouched(t *testing.T) {
	// The trigger makes the duration backfill fail after the new columns
	// have been added.
	path := writeLegacyFile(t, `CREATE TRIGGER no_updates BEFORE UPDATE ON study_sessions
		BEGIN SELECT RAISE(ABORT, 'read only'); END`)

	if _, err := New(path); err == nil {
		t.Fatal("expected migration to fail")
	}

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	var version, added int
	if err := raw.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	err = raw.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('study_sessions')
		WHERE name = 'duration_minutes'`).Scan(&added)
	if err != nil {
		t.Fatal(err)
	}
	if version != 0 || added != 0 {
		t.Fatalf("failed upgrade left partial changes: user_version=%d duration_minutes=%d", version, added)
	}
	if _, err := raw.Exec("DROP TRIGGER no_updates"); err != nil {
		t.Fatal(err)
	}
	raw.Close()

	s, err := New(path)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	defer s.Close()
	sessions, err := s.ListSessions(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].DurationMinutes != 90 {
		t.Fatalf("retried upgrade should backfill 90 minutes, got %+v", sessions)
	}
}

// ============================================================
// Users
// ============================================================

func TestCreateUserAndEmailExists(t *testing.T) {
	s := newTestStore(t)
	exists, err := s.EmailExists("ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("email should not exist before signup")
	}

	u := newTestUser(t, s, "ada@example.com")
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %+v", u)
	}

	exists, _ = s.EmailExists("ada@example.com")
	if !exists {
		t.Fatal("email should exist after signup")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	newTestUser(t, s, "ada@example.com")
	_, err := s.CreateUser("ada@example.com", "x", "Other", "Elsewhere")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUserRequiresCredentials(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUser("", "pw", "n", "c"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthenticateUser(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")

	got, err := s.AuthenticateUser("ada@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated wrong user: %d != %d", got.ID, u.ID)
	}

	if _, err := s.AuthenticateUser("ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.AuthenticateUser("nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	other := newTestUser(t, s, "bob@example.com")

	if err := s.UpdateUser(u.ID, UserPatch{College: Ptr("Engine Institute")}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetUser(u.ID)
	if got.College != "Engine Institute" || got.Name != "Ada" {
		t.Fatalf("unexpected user after patch: %+v", got)
	}

	if err := s.UpdateUser(other.ID, UserPatch{Email: Ptr("ada@example.com")}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUser(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetUserByEmail("none@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	newTestCourse(t, s, u.ID, "Compilers")
	s.CreateTask(u.ID, TaskInput{Title: "Read chapter 3"})
	newTestBlock(t, s, u.ID, "2024-03-04", "09:00")
	s.CreateSession(u.ID, SessionInput{Course: "Compilers", DurationMinutes: 25})

	if err := s.DeleteUser(u.ID); err != nil {
		t.Fatal(err)
	}

	courses, _ := s.ListCourses(u.ID)
	tasks, _ := s.ListTasks(u.ID)
	blocks, _ := s.ListFocusBlocks(u.ID)
	sessions, _ := s.ListSessions(u.ID)
	if courses != nil || tasks != nil || blocks != nil || sessions != nil {
		t.Fatalf("expected cascade: courses=%d tasks=%d blocks=%d sessions=%d",
			len(courses), len(tasks), len(blocks), len(sessions))
	}
}

// ============================================================
// Courses
// ============================================================

func TestCreateAndListCourse(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	in := CourseInput{
		Title: "Compilers", Description: "Dragon book", Instructor: "Aho",
		TotalHours: 40, Credits: 4, Tag: TagCollege, Progress: 30,
	}
	id, err := s.CreateCourse(u.ID, in)
	if err != nil {
		t.Fatal(err)
	}

	courses, err := s.ListCourses(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []Course{{
		UserID: u.ID, Title: "Compilers", Description: "Dragon book", Instructor: "Aho",
		TotalHours: 40, Credits: 4, Tag: TagCollege, Progress: 30,
	}}
	if diff := cmp.Diff(want, courses, ignoreGenerated, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("course mismatch (-want +got):\n%s", diff)
	}
	if courses[0].ID != id {
		t.Fatalf("expected id %d, got %d", id, courses[0].ID)
	}
}

func TestListCoursesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	newTestCourse(t, s, u.ID, "First")
	newTestCourse(t, s, u.ID, "Second")

	courses, _ := s.ListCourses(u.ID)
	if len(courses) != 2 || courses[0].Title != "Second" || courses[1].Title != "First" {
		t.Fatalf("expected newest first, got %+v", courses)
	}
}

func TestListCoursesEmpty(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	courses, err := s.ListCourses(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if courses != nil {
		t.Fatalf("expected nil slice, got %d items", len(courses))
	}
}

func TestListCoursesIsolation(t *testing.T) {
	s := newTestStore(t)
	a := newTestUser(t, s, "a@example.com")
	b := newTestUser(t, s, "b@example.com")
	newTestCourse(t, s, a.ID, "Mine")

	courses, _ := s.ListCourses(b.ID)
	if len(courses) != 0 {
		t.Fatal("another user's courses leaked")
	}
}

func TestCreateCourseInvalid(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")

	tests := []struct {
		name string
		in   CourseInput
	}{
		{"bad tag", CourseInput{Title: "X", Tag: "Hobby"}},
		{"progress over 100", CourseInput{Title: "X", Tag: TagSelf, Progress: 101}},
		{"negative progress", CourseInput{Title: "X", Tag: TagSelf, Progress: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := s.CreateCourse(u.ID, tt.in)
			if !errors.Is(err, ErrInvalidInput) || id != 0 {
				t.Fatalf("expected ErrInvalidInput and id 0, got %d, %v", id, err)
			}
		})
	}
}

func TestCreateCourseMissingOwner(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateCourse(999, CourseInput{Title: "Orphan", Tag: TagSelf})
	if !errors.Is(err, ErrConstraint) || id != 0 {
		t.Fatalf("expected ErrConstraint, got %d, %v", id, err)
	}
}

func TestUpdateCoursePartial(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id := newTestCourse(t, s, u.ID, "Compilers")

	if err := s.UpdateCourse(id, CoursePatch{Progress: Ptr(80)}); err != nil {
		t.Fatal(err)
	}
	c, _ := s.GetCourse(id)
	if c.Progress != 80 || c.Title != "Compilers" {
		t.Fatalf("unexpected course after patch: %+v", c)
	}

	if err := s.UpdateCourse(id, CoursePatch{Progress: Ptr(120)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmptyPatchLeavesRowUnchanged(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	courseID := newTestCourse(t, s, u.ID, "Compilers")
	blockID := newTestBlock(t, s, u.ID, "2024-03-04", "09:00")

	beforeCourse := rawRow(t, s, "courses", courseID)
	beforeBlock := rawRow(t, s, "focus_blocks", blockID)

	if err := s.UpdateCourse(courseID, CoursePatch{}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFocusBlock(blockID, FocusBlockPatch{}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(beforeCourse, rawRow(t, s, "courses", courseID)); diff != "" {
		t.Fatalf("course row changed:\n%s", diff)
	}
	if diff := cmp.Diff(beforeBlock, rawRow(t, s, "focus_blocks", blockID)); diff != "" {
		t.Fatalf("block row changed:\n%s", diff)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateCourse(999, CoursePatch{Title: Ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// An empty patch never reaches the database, so it cannot miss.
	if err := s.UpdateCourse(999, CoursePatch{}); err != nil {
		t.Fatalf("expected nil for empty patch, got %v", err)
	}
	if err := s.DeleteCourse(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestCourseChildren(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	courseID := newTestCourse(t, s, u.ID, "Compilers")

	aID, err := s.CreateAssignment(courseID, "Lexer", "Write a tokenizer")
	if err != nil {
		t.Fatal(err)
	}
	nID, err := s.CreateNote(courseID, "Week 1", "Regular languages")
	if err != nil {
		t.Fatal(err)
	}
	pdf := "https://example.com/brief.pdf"
	pID, err := s.CreateProject(courseID, "Toy compiler", "Go", "Tiny C subset", &pdf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateProject(courseID, "No brief", "", "", nil); err != nil {
		t.Fatal(err)
	}

	courses, _ := s.ListCourses(u.ID)
	c := courses[0]
	if len(c.Assignments) != 1 || c.Assignments[0].ID != aID {
		t.Fatalf("unexpected assignments: %+v", c.Assignments)
	}
	if len(c.Notes) != 1 || c.Notes[0].ID != nID {
		t.Fatalf("unexpected notes: %+v", c.Notes)
	}
	if len(c.Projects) != 2 || c.Projects[1].ID != pID {
		t.Fatalf("unexpected projects: %+v", c.Projects)
	}
	if c.Projects[0].PDFURL != nil {
		t.Fatal("project without brief should have nil PDFURL")
	}
	if c.Projects[1].PDFURL == nil || *c.Projects[1].PDFURL != pdf {
		t.Fatalf("unexpected PDFURL: %v", c.Projects[1].PDFURL)
	}

	if err := s.UpdateNote(nID, NotePatch{Content: Ptr("Finite automata")}); err != nil {
		t.Fatal(err)
	}
	n, _ := s.GetNote(nID)
	if n.Heading != "Week 1" || n.Content != "Finite automata" {
		t.Fatalf("unexpected note: %+v", n)
	}

	if err := s.UpdateAssignment(aID, AssignmentPatch{Title: Ptr("Lexer v2")}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateProject(pID, ProjectPatch{TechStack: Ptr("Go, LLVM")}); err != nil {
		t.Fatal(err)
	}
	p, _ := s.GetProject(pID)
	if p.TechStack != "Go, LLVM" || p.Name != "Toy compiler" {
		t.Fatalf("unexpected project: %+v", p)
	}

	if err := s.DeleteAssignment(aID); err != nil {
		t.Fatal(err)
	}
	assignments, _ := s.ListAssignments(courseID)
	if assignments != nil {
		t.Fatal("assignment should be deleted")
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	courseID := newTestCourse(t, s, u.ID, "Compilers")
	s.CreateAssignment(courseID, "Lexer", "")
	s.CreateNote(courseID, "Week 1", "")
	s.CreateProject(courseID, "Toy", "", "", nil)

	if err := s.DeleteCourse(courseID); err != nil {
		t.Fatal(err)
	}

	for _, table := range []string{"assignments", "notes", "projects"} {
		var n int
		s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE course_id = ?", courseID).Scan(&n)
		if n != 0 {
			t.Fatalf("expected %s to cascade, %d rows left", table, n)
		}
	}
}

func TestCreateChildMissingCourse(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateNote(999, "Orphan", ""); !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id, err := s.CreateTask(u.ID, TaskInput{Title: "Problem set", Deadline: "2024-03-10", Priority: PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	task, err := s.GetTask(id)
	if err != nil {
		t.Fatal(err)
	}
	want := &Task{ID: id, UserID: u.ID, Title: "Problem set", Deadline: "2024-03-10",
		Priority: PriorityHigh, Status: StatusNotStarted}
	if diff := cmp.Diff(want, task, cmpopts.IgnoreFields(Task{}, "CreatedAt")); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTaskInvalidPriority(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	if _, err := s.CreateTask(u.ID, TaskInput{Title: "x", Priority: "Urgent"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTaskStatusFlow(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	a, _ := s.CreateTask(u.ID, TaskInput{Title: "A"})
	s.CreateTask(u.ID, TaskInput{Title: "B"})

	if err := s.UpdateTaskStatus(a, StatusDoing); err != nil {
		t.Fatal(err)
	}
	doing, err := s.ListTasksByStatus(u.ID, StatusDoing)
	if err != nil {
		t.Fatal(err)
	}
	if len(doing) != 1 || doing[0].ID != a {
		t.Fatalf("expected only A doing, got %+v", doing)
	}
	pending, _ := s.ListTasksByStatus(u.ID, StatusNotStarted)
	if len(pending) != 1 || pending[0].Title != "B" {
		t.Fatalf("expected only B pending, got %+v", pending)
	}

	if err := s.UpdateTaskStatus(a, "Blocked"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatusNext(t *testing.T) {
	tests := []struct {
		in, want Status
	}{
		{StatusNotStarted, StatusDoing},
		{StatusDoing, StatusCompleted},
		{StatusCompleted, StatusNotStarted},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%q.Next() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClearTaskDetails(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id, _ := s.CreateTask(u.ID, TaskInput{Title: "A", Details: "notes"})

	if err := s.UpdateTask(id, TaskPatch{Details: Ptr("")}); err != nil {
		t.Fatal(err)
	}
	task, _ := s.GetTask(id)
	if task.Details != "" {
		t.Fatalf("expected cleared details, got %q", task.Details)
	}
	var raw sql.NullString
	s.db.QueryRow("SELECT details FROM tasks WHERE id = ?", id).Scan(&raw)
	if raw.Valid {
		t.Fatal("empty details should be stored as NULL")
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id, _ := s.CreateTask(u.ID, TaskInput{Title: "A"})
	if err := s.DeleteTask(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTask(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Focus blocks & sessions
// ============================================================

func TestCreateFocusBlock(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id := newTestBlock(t, s, u.ID, "2024-03-04", "09:00")

	b, err := s.GetFocusBlock(id)
	if err != nil {
		t.Fatal(err)
	}
	if b.Day != "Monday" {
		t.Fatalf("expected derived day Monday, got %q", b.Day)
	}
	if b.IsActive || b.IsPaused || b.ElapsedTime != 0 {
		t.Fatalf("new block should be idle: %+v", b)
	}
	if b.Flags == nil || len(b.Flags) != 0 {
		t.Fatalf("expected empty flag list, got %#v", b.Flags)
	}
}

func TestCreateFocusBlockInvalid(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")

	tests := []struct {
		name string
		in   FocusBlockInput
	}{
		{"zero duration", FocusBlockInput{Title: "x", Date: "2024-03-04", Duration: 0}},
		{"bad date", FocusBlockInput{Title: "x", Date: "04/03/2024", Duration: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateFocusBlock(u.ID, tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestListFocusBlocksScheduleOrder(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	late := newTestBlock(t, s, u.ID, "2024-03-05", "08:00")
	afternoon := newTestBlock(t, s, u.ID, "2024-03-04", "14:00")
	morning := newTestBlock(t, s, u.ID, "2024-03-04", "09:00")

	blocks, _ := s.ListFocusBlocks(u.ID)
	var got []int64
	for _, b := range blocks {
		got = append(got, b.ID)
	}
	if diff := cmp.Diff([]int64{morning, afternoon, late}, got); diff != "" {
		t.Fatalf("schedule order mismatch:\n%s", diff)
	}
}

func TestUpdateFocusBlockTimerState(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id := newTestBlock(t, s, u.ID, "2024-03-04", "09:00")

	flags := Flags{"0:05", "1:05"}
	err := s.UpdateFocusBlock(id, FocusBlockPatch{
		IsActive: Ptr(true), IsPaused: Ptr(true), ElapsedTime: Ptr(65), Flags: &flags,
	})
	if err != nil {
		t.Fatal(err)
	}

	b, _ := s.GetFocusBlock(id)
	if !b.IsActive || !b.IsPaused || b.ElapsedTime != 65 {
		t.Fatalf("timer state not persisted: %+v", b)
	}
	if diff := cmp.Diff(flags, b.Flags); diff != "" {
		t.Fatalf("flags mismatch:\n%s", diff)
	}

	if err := s.UpdateFocusBlock(id, FocusBlockPatch{Date: Ptr("2024-03-06")}); err != nil {
		t.Fatal(err)
	}
	b, _ = s.GetFocusBlock(id)
	if b.Day != "Wednesday" {
		t.Fatalf("expected day to follow date, got %q", b.Day)
	}
}

func TestFlagsScanNull(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	id := newTestBlock(t, s, u.ID, "2024-03-04", "09:00")
	s.db.Exec("UPDATE focus_blocks SET flagged_times = NULL WHERE id = ?", id)

	b, err := s.GetFocusBlock(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Flags) != 0 {
		t.Fatalf("NULL flags should decode empty, got %v", b.Flags)
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "ada@example.com")
	day := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	older, err := s.CreateSession(u.ID, SessionInput{
		Course: "Compilers", DurationMinutes: 25, Focus: "Parsing", LoggedAt: "10:00", Date: day,
	})
	if err != nil {
		t.Fatal(err)
	}
	newer, _ := s.CreateSession(u.ID, SessionInput{
		Course: "Physics", DurationMinutes: 90, LoggedAt: "12:00", Date: day.Add(2 * time.Hour),
	})

	sessions, err := s.ListSessions(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].ID != newer || sessions[1].ID != older {
		t.Fatalf("expected most recent first, got %+v", sessions)
	}
	if !sessions[1].Date.Time.Equal(day) {
		t.Fatalf("session date round trip: %v != %v", sessions[1].Date.Time, day)
	}

	if err := s.DeleteSession(older); err != nil {
		t.Fatal(err)
	}
	sessions, _ = s.ListSessions(u.ID)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session after delete, got %d", len(sessions))
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	tests := map[string]string{
		SettingDefaultBlockMinutes: "25",
		SettingDefaultBlockColor:   "#38BDF8",
		SettingWeeklyGoalHours:     "10",
	}
	for key, want := range tests {
		got, err := s.GetSetting(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if got != want {
			t.Fatalf("%s: expected %q, got %q", key, want, got)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting(SettingWeeklyGoalHours, "12"); err != nil {
		t.Fatal(err)
	}
	if got := s.IntSetting(SettingWeeklyGoalHours, 0); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	s.SetSetting(SettingWeeklyGoalHours, "lots")
	if got := s.IntSetting(SettingWeeklyGoalHours, 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 3 || settings[0].Key != SettingDefaultBlockColor {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

// ============================================================
// Snapshot
// ============================================================

func TestSnapshot(t *testing.T) {
	s := newTestStore(t)
	a := newTestUser(t, s, "a@example.com")
	b := newTestUser(t, s, "b@example.com")
	courseID := newTestCourse(t, s, a.ID, "Compilers")
	s.CreateNote(courseID, "Week 1", "")
	s.CreateTask(b.ID, TaskInput{Title: "Essay"})
	newTestBlock(t, s, a.ID, "2024-03-04", "09:00")
	s.CreateSession(b.ID, SessionInput{Course: "History", DurationMinutes: 30})

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Users) != 2 || len(snap.Courses) != 1 || len(snap.Tasks) != 1 ||
		len(snap.FocusBlocks) != 1 || len(snap.Sessions) != 1 || len(snap.Settings) != 3 {
		t.Fatalf("unexpected snapshot sizes: %+v", snap)
	}
	if len(snap.Courses[0].Notes) != 1 {
		t.Fatal("snapshot courses should carry children")
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
