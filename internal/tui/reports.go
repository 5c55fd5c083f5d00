package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

type reportMode int

const (
	reportWeekly reportMode = iota
	reportRanking
	reportCalendar
)

var reportModeNames = []string{"Weekly", "Tasks", "Calendar"}

// windowChoices are the ranking windows cycled by the window key.
var windowChoices = []int{7, 30}

type reportsModel struct {
	store   *store.Store
	ownerID string
	clock   func() time.Time
	width   int
	height  int

	mode        reportMode
	windowIdx   int
	monthOffset int // months back from the current one (0 = current)

	weekly  stats.WeeklyMatrix
	totals  []store.DailyTotal
	ranking stats.Ranking
	month   stats.Month

	chart barchart.Model
}

func newReportsModel(s *store.Store, ownerID string, clock func() time.Time) reportsModel {
	return reportsModel{
		store:   s,
		ownerID: ownerID,
		clock:   clock,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

type reportsDataMsg struct {
	weekly  stats.WeeklyMatrix
	totals  []store.DailyTotal
	ranking stats.Ranking
	month   stats.Month
	err     error
}

func (r reportsModel) windowDays() int {
	return windowChoices[r.windowIdx]
}

// viewedMonth returns the first day of the month the calendar shows.
func (r reportsModel) viewedMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()-time.Month(r.monthOffset), 1, 0, 0, 0, 0, now.Location())
}

func daysAgo(now time.Time, n int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-n, 0, 0, 0, 0, now.Location())
}

func (r reportsModel) refresh() tea.Cmd {
	window := r.windowDays()
	return func() tea.Msg {
		ctx := context.Background()
		now := r.clock()

		// One query covers the week, the ranking window and the viewed month.
		first := r.viewedMonth(now)
		since := daysAgo(now, max(window, stats.WeekDays)-1)
		if first.Before(since) {
			since = first
		}

		tasks, err := r.store.ListTasks(ctx, r.ownerID)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		records, err := r.store.ListRecords(ctx, r.ownerID, store.RecordFilter{From: stats.DateOf(since)})
		if err != nil {
			return reportsDataMsg{err: err}
		}
		totals, err := r.store.DailyTotals(ctx, r.ownerID,
			stats.DateOf(daysAgo(now, stats.WeekDays-1)), stats.DateOf(now))
		if err != nil {
			return reportsDataMsg{err: err}
		}

		return reportsDataMsg{
			weekly:  stats.Weekly(records, tasks, now),
			totals:  totals,
			ranking: stats.TaskTotals(records, tasks, window, now),
			month:   stats.CalendarFor(records, first.Year(), first.Month(), now),
		}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("Report error", msg.err) }
		}
		r.weekly = msg.weekly
		r.totals = msg.totals
		r.ranking = msg.ranking
		r.month = msg.month
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Mode):
			r.mode = (r.mode + 1) % reportMode(len(reportModeNames))
			return r, nil
		case key.Matches(msg, keys.Window):
			r.windowIdx = (r.windowIdx + 1) % len(windowChoices)
			return r, r.refresh()
		case key.Matches(msg, keys.Left):
			if r.mode == reportCalendar {
				r.monthOffset++
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Right):
			if r.mode == reportCalendar && r.monthOffset > 0 {
				r.monthOffset--
				return r, r.refresh()
			}
		}
	}
	return r, nil
}

// buildChart stacks each task's minutes per day, converted to hours.
func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if len(r.weekly.Days) == 0 {
		return
	}

	bars := make([]barchart.BarData, 0, len(r.weekly.Days))
	for _, day := range r.weekly.Days {
		var values []barchart.BarValue
		for i, task := range r.weekly.Tasks {
			if day.Minutes[i] == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  task.Name,
				Value: float64(day.Minutes[i]) / 60,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(task.Color.Hex())),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: day.Label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range reportModeNames {
		if reportMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	var body, nav string
	switch r.mode {
	case reportWeekly:
		body = lipgloss.JoinVertical(lipgloss.Left,
			r.chart.View(), "", r.renderLegend(), "", r.renderTotalsTable(w))
		nav = "  m: switch mode"
	case reportRanking:
		body = r.renderRanking(w)
		nav = "  m: switch mode  w: 7/30 days"
	case reportCalendar:
		body = r.renderCalendar()
		nav = "  m: switch mode  ←/→: month"
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", mutedStyle.Render(nav)),
	)
}

func (r reportsModel) renderLegend() string {
	var items []string
	for i, task := range r.weekly.Tasks {
		if r.weekly.TaskMinutes(i) == 0 {
			continue
		}
		items = append(items, fmt.Sprintf("%s %s", colorDot(task.Color), task.Name))
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No sessions in the last 7 days")
	}
	return "  " + strings.Join(items, "  ") +
		mutedStyle.Render(fmt.Sprintf("   total %s", formatHours(r.weekly.TotalMinutes())))
}

func (r reportsModel) renderTotalsTable(w int) string {
	if len(r.totals) == 0 {
		return ""
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s", "Date", "Task", "Duration", "Sessions")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 54))),
	}
	for _, t := range r.totals {
		rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %8d",
			t.Date, colorDot(t.TaskColor), t.TaskName, formatMinutes(t.TotalMinutes), t.RecordCount))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderRanking(w int) string {
	title := highlightStyle.Render(fmt.Sprintf("Last %d days", r.ranking.WindowDays)) +
		mutedStyle.Render(fmt.Sprintf("  since %s", r.ranking.Since))
	if r.ranking.NoData {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("  No data for this period"))
	}

	barWidth := max(10, min(40, w-50))
	rows := []string{title, ""}
	for i, e := range r.ranking.Entries {
		share := r.ranking.Share(i)
		filled := int(share * float64(barWidth))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Task.Color.Hex())).Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", barWidth-filled))
		rows = append(rows, fmt.Sprintf("  %d. %s %-18s %s %8s %5.1f%%",
			i+1, colorDot(e.Task.Color), e.Task.Name, bar, formatMinutes(e.Minutes), share*100))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  total %s", formatMinutes(r.ranking.TotalMinutes))))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderCalendar() string {
	if len(r.month.Cells) == 0 {
		return mutedStyle.Render("  Loading...")
	}

	rows := []string{
		highlightStyle.Render(r.month.Title) + mutedStyle.Render("  "+formatMinutes(r.month.TotalMinutes)),
		"",
	}

	var head []string
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		head = append(head, calendarCellStyle.Render(mutedStyle.Render(d)))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for _, week := range r.month.Weeks() {
		var cells []string
		for _, c := range week {
			cells = append(cells, renderDayCell(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// renderDayCell shows the day number over one dot per task worked that day.
func renderDayCell(c stats.DayCell) string {
	if c.Blank {
		return calendarEmptyStyle.Render("")
	}
	dots := ""
	for _, s := range c.Breakdown {
		dots += colorDot(s.TaskColor)
	}
	minutes := ""
	if c.TotalMinutes > 0 {
		minutes = formatMinutes(c.TotalMinutes)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, fmt.Sprintf("%2d", c.Day), dots, mutedStyle.Render(minutes))
	if c.IsToday {
		return calendarTodayStyle.Render(content)
	}
	return calendarCellStyle.Render(content)
}
