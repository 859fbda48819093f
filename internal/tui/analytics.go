package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/learntrack/internal/analytics"
	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
	"github.com/sadopc/learntrack/internal/timer"
)

type chartMode int

const (
	chartDaily chartMode = iota
	chartRecent
)

const (
	recentSessions     = 10
	defaultWeeklyHours = 10
)

type analyticsModel struct {
	courses  *provider.Courses
	tasks    *provider.Tasks
	study    *provider.Study
	settings *store.Store
	clock    timer.Clock
	width    int
	height   int

	mode   chartMode
	offset int // 7-day blocks back from today

	summary analytics.Summary
	daily   []analytics.DailySummary
	recent  []store.Session
	goal    analytics.Goal
	chart   barchart.Model
	goalBar progress.Model
}

func newAnalyticsModel(c *provider.Courses, t *provider.Tasks, s *provider.Study, settings *store.Store, clock timer.Clock) analyticsModel {
	return analyticsModel{
		courses:  c,
		tasks:    t,
		study:    s,
		settings: settings,
		clock:    clock,
		chart:    barchart.New(60, 12),
		goalBar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.goalBar.Width = max(w-24, 10)
}

type analyticsDataMsg struct {
	summary analytics.Summary
	daily   []analytics.DailySummary
	recent  []store.Session
	goal    analytics.Goal
}

func (a analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions := a.study.Sessions()
		from, to := a.dateRange()
		weekly := a.settings.IntSetting(store.SettingWeeklyGoalHours, defaultWeeklyHours)
		return analyticsDataMsg{
			summary: analytics.Summarize(a.courses.Courses(), a.tasks.Tasks(), sessions),
			daily:   analytics.DailyMinutes(sessions, from, to),
			recent:  analytics.RecentSeries(sessions, recentSessions),
			goal:    analytics.GoalProgress(sessions, weekly, a.clock.Now()),
		}
	}
}

// dateRange is the 7-day window ending today, shifted back by offset weeks.
func (a analyticsModel) dateRange() (time.Time, time.Time) {
	now := a.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1-7*a.offset)
	return end.AddDate(0, 0, -7), end
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.summary = msg.summary
		a.daily = msg.daily
		a.recent = msg.recent
		a.goal = msg.goal
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if a.mode == chartDaily {
				a.offset++
				return a, a.refresh()
			}
		case key.Matches(msg, keys.Right):
			if a.mode == chartDaily && a.offset > 0 {
				a.offset--
				return a, a.refresh()
			}
		case key.Matches(msg, keys.Enter):
			if a.mode == chartDaily {
				a.mode = chartRecent
			} else {
				a.mode = chartDaily
			}
			a.offset = 0
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 10
	if a.height > 34 {
		chartHeight = 14
	}
	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch a.mode {
	case chartRecent:
		for _, s := range a.recent {
			bars = append(bars, barchart.BarData{
				Label: s.Date.Local().Format("01/02"),
				Values: []barchart.BarValue{{
					Name:  s.Course,
					Value: float64(s.DurationMinutes),
					Style: lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)),
				}},
			})
		}
	default:
		from, to := a.dateRange()
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			date := d.Format("2006-01-02")
			var values []barchart.BarValue
			for _, s := range a.daily {
				if s.Date == date {
					values = append(values, barchart.BarValue{
						Name:  s.Course,
						Value: float64(s.Minutes),
						Style: lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)),
					})
				}
			}
			if len(values) == 0 {
				values = []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
			}
			bars = append(bars, barchart.BarData{Label: d.Format("Mon 02"), Values: values})
		}
	}

	if len(bars) > 0 {
		a.chart.PushAll(bars)
	}
	a.chart.Draw()
}

func card(label, value string) string {
	return panelStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render(label), highlightStyle.Bold(true).Render(value),
	))
}

func (a analyticsModel) view() string {
	w := a.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	recentTab := inactiveTabStyle.Render("Recent")
	var rangeLabel string
	if a.mode == chartDaily {
		dailyTab = activeTabStyle.Render("Daily")
		from, to := a.dateRange()
		rangeLabel = fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006"))
	} else {
		recentTab = activeTabStyle.Render("Recent")
		rangeLabel = fmt.Sprintf("last %d sessions (minutes)", recentSessions)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", dailyTab, recentTab, "  ", mutedStyle.Render(rangeLabel),
	)

	s := a.summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Study time", store.FormatMinutes(s.StudyMinutes)),
		card("Sessions", fmt.Sprintf("%d", s.SessionCount)),
		card("Tasks done", fmt.Sprintf("%d/%d (%d%%)", s.Tasks.Completed, s.Tasks.Total, s.Tasks.CompletionRate)),
		card("Courses", fmt.Sprintf("%d done · %d active", s.Courses.Completed, s.Courses.InProgress)),
		card("Avg progress", fmt.Sprintf("%d%%", s.Courses.AvgProgress)),
	)

	goal := mutedStyle.Render("Weekly goal  ") +
		a.goalBar.ViewAs(float64(a.goal.Percent)/100) +
		mutedStyle.Render(fmt.Sprintf("  %s / %s", store.FormatMinutes(a.goal.DoneMinutes), store.FormatMinutes(a.goal.TargetMinutes)))

	var chartView string
	if a.mode == chartRecent && len(a.recent) == 0 {
		chartView = mutedStyle.Render("  No sessions yet")
	} else {
		chartView = a.chart.View()
	}

	nav := mutedStyle.Render("  ←/→: move week  enter: switch chart")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", cards, "", goal, "", chartView, "", a.renderLegend(), "", nav,
	))
}

func (a analyticsModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	add := func(course, color string) {
		if seen[course] {
			return
		}
		seen[course] = true
		items = append(items, colorDot(color)+" "+course)
	}
	if a.mode == chartRecent {
		for _, s := range a.recent {
			add(s.Course, s.Color)
		}
	} else {
		for _, s := range a.daily {
			add(s.Course, s.Color)
		}
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
