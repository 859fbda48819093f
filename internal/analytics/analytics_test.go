package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sadopc/learntrack/internal/store"
)

func session(id int64, course string, mins int, at time.Time) store.Session {
	return store.Session{ID: id, Course: course, DurationMinutes: mins, Color: "#fff", Date: store.NewTimestamp(at)}
}

func TestSummarize(t *testing.T) {
	courses := []store.Course{{Progress: 100}, {Progress: 50}, {Progress: 0}}
	tasks := []store.Task{
		{Status: store.StatusCompleted},
		{Status: store.StatusCompleted},
		{Status: store.StatusDoing},
		{Status: store.StatusNotStarted},
	}
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	sessions := []store.Session{session(1, "A", 90, at), session(2, "B", 25, at)}

	got := Summarize(courses, tasks, sessions)
	want := Summary{
		StudyMinutes: 115,
		SessionCount: 2,
		Tasks:        TaskStats{Completed: 2, Doing: 1, Pending: 1, Total: 4, CompletionRate: 50},
		Courses:      CourseStats{Total: 3, Completed: 1, InProgress: 1, AvgProgress: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if diff := cmp.Diff(Summary{}, Summarize(nil, nil, nil)); diff != "" {
		t.Fatalf("expected zero summary:\n%s", diff)
	}
}

func TestCompletionRateRounds(t *testing.T) {
	tasks := []store.Task{{Status: store.StatusCompleted}, {Status: store.StatusDoing}, {Status: store.StatusDoing}}
	if got := Summarize(nil, tasks, nil).Tasks.CompletionRate; got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}

func TestRecentSeries(t *testing.T) {
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	// Newest first, as the provider holds them.
	sessions := []store.Session{
		session(3, "C", 30, base.Add(2*time.Hour)),
		session(2, "B", 20, base.Add(time.Hour)),
		session(1, "A", 10, base),
	}

	got := RecentSeries(sessions, 2)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("expected [2 3], got %+v", got)
	}
	if sessions[0].ID != 3 {
		t.Fatal("input must not be reordered")
	}
	if RecentSeries(sessions, 0) != nil {
		t.Fatal("n=0 should return nil")
	}
	if len(RecentSeries(sessions, 10)) != 3 {
		t.Fatal("n larger than input should return everything")
	}
}

func TestDailyMinutes(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sessions := []store.Session{
		session(1, "Physics", 30, day.Add(9*time.Hour)),
		session(2, "Physics", 15, day.Add(15*time.Hour)),
		session(3, "Algebra", 20, day.Add(10*time.Hour)),
		session(4, "Physics", 60, day.AddDate(0, 0, 1).Add(8*time.Hour)),
		session(5, "Outside", 99, day.AddDate(0, 0, 3)),
	}

	got := DailyMinutes(sessions, day, day.AddDate(0, 0, 3))
	want := []DailySummary{
		{Date: "2024-03-04", Course: "Algebra", Color: "#fff", Minutes: 20},
		{Date: "2024-03-04", Course: "Physics", Color: "#fff", Minutes: 45},
		{Date: "2024-03-05", Course: "Physics", Color: "#fff", Minutes: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("daily mismatch (-want +got):\n%s", diff)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestGoalProgress(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	sessions := []store.Session{
		session(1, "A", 120, now.Add(-time.Hour)),
		session(2, "B", 60, now.AddDate(0, 0, -7)), // last week
	}

	g := GoalProgress(sessions, 4, now)
	if g.TargetMinutes != 240 || g.DoneMinutes != 120 || g.Percent != 50 {
		t.Fatalf("unexpected goal: %+v", g)
	}

	g = GoalProgress(sessions, 1, now)
	if g.Percent != 100 {
		t.Fatalf("expected capped 100, got %d", g.Percent)
	}
	if GoalProgress(nil, 0, now).Percent != 0 {
		t.Fatal("zero goal should report 0 percent")
	}
}
