// Package analytics computes the figures shown on the analytics tab from
// provider snapshots. Everything here is pure and works on copies.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/learntrack/internal/store"
)

type TaskStats struct {
	Completed      int
	Doing          int
	Pending        int
	Total          int
	CompletionRate int // percent, rounded
}

type CourseStats struct {
	Total       int
	Completed   int // progress == 100
	InProgress  int // 0 < progress < 100
	AvgProgress int // percent, rounded
}

type Summary struct {
	StudyMinutes int
	SessionCount int
	Tasks        TaskStats
	Courses      CourseStats
}

func Summarize(courses []store.Course, tasks []store.Task, sessions []store.Session) Summary {
	var sum Summary

	for _, s := range sessions {
		sum.StudyMinutes += s.DurationMinutes
	}
	sum.SessionCount = len(sessions)

	for _, t := range tasks {
		switch t.Status {
		case store.StatusCompleted:
			sum.Tasks.Completed++
		case store.StatusDoing:
			sum.Tasks.Doing++
		case store.StatusNotStarted:
			sum.Tasks.Pending++
		}
	}
	sum.Tasks.Total = len(tasks)
	sum.Tasks.CompletionRate = percent(sum.Tasks.Completed, sum.Tasks.Total)

	progress := 0
	for _, c := range courses {
		progress += c.Progress
		switch {
		case c.Progress == 100:
			sum.Courses.Completed++
		case c.Progress > 0:
			sum.Courses.InProgress++
		}
	}
	sum.Courses.Total = len(courses)
	if sum.Courses.Total > 0 {
		sum.Courses.AvgProgress = int(math.Round(float64(progress) / float64(sum.Courses.Total)))
	}
	return sum
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// RecentSeries returns the n most recent sessions, oldest first, for
// charting. sessions may be in any order.
func RecentSeries(sessions []store.Session, n int) []store.Session {
	if n <= 0 || len(sessions) == 0 {
		return nil
	}
	sorted := append([]store.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// DailySummary is the study time for one course on one day.
type DailySummary struct {
	Date    string // 2006-01-02 in from's location
	Course  string
	Color   string
	Minutes int
}

// DailyMinutes totals sessions per day and course for the half-open range
// [from, to), ordered by date then course.
func DailyMinutes(sessions []store.Session, from, to time.Time) []DailySummary {
	type key struct{ date, course string }
	totals := map[key]*DailySummary{}

	for _, s := range sessions {
		at := s.Date.In(from.Location())
		if at.Before(from) || !at.Before(to) {
			continue
		}
		k := key{at.Format("2006-01-02"), s.Course}
		d, ok := totals[k]
		if !ok {
			d = &DailySummary{Date: k.date, Course: s.Course, Color: s.Color}
			totals[k] = d
		}
		d.Minutes += s.DurationMinutes
	}

	out := make([]DailySummary, 0, len(totals))
	for _, d := range totals {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Course < out[j].Course
	})
	return out
}

// WeekStart returns midnight on the Monday of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := day.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	return day.AddDate(0, 0, -int(weekday-time.Monday))
}

type Goal struct {
	TargetMinutes int
	DoneMinutes   int
	Percent       int // capped at 100
}

// GoalProgress measures this week's study time against a weekly goal.
func GoalProgress(sessions []store.Session, weeklyGoalHours int, now time.Time) Goal {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)

	g := Goal{TargetMinutes: weeklyGoalHours * 60}
	for _, d := range DailyMinutes(sessions, start, end) {
		g.DoneMinutes += d.Minutes
	}
	g.Percent = percent(g.DoneMinutes, g.TargetMinutes)
	if g.Percent > 100 {
		g.Percent = 100
	}
	return g
}
