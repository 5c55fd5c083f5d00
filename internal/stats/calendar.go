package stats

import (
	"time"

	"github.com/sadopc/habitr/internal/store"
)

type TaskShare struct {
	TaskID    string      `json:"task_id"`
	TaskName  string      `json:"task_name"`
	TaskColor store.Color `json:"task_color"`
	Minutes   int         `json:"minutes"`
	Share     float64     `json:"share"`
}

// DayCell is one square of the month grid. Blank cells pad the first and
// last week and carry no date.
type DayCell struct {
	Blank        bool        `json:"blank"`
	Day          int         `json:"day,omitempty"`
	Date         string      `json:"date,omitempty"`
	TotalMinutes int         `json:"total_minutes"`
	IsToday      bool        `json:"is_today"`
	Breakdown    []TaskShare `json:"breakdown,omitempty"`
}

type Month struct {
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	Title          string    `json:"title"`
	LeadingBlanks  int       `json:"leading_blanks"`
	TrailingBlanks int       `json:"trailing_blanks"`
	Cells          []DayCell `json:"cells"`
	TotalMinutes   int       `json:"total_minutes"`
}

// MonthlyCalendar lays out now's month as weeks starting on Sunday. Each
// day carries its minutes and a per-task breakdown in first-appearance order.
func MonthlyCalendar(records []store.Record, now time.Time) Month {
	return CalendarFor(records, now.Year(), now.Month(), now)
}

// CalendarFor lays out an arbitrary month; now only decides which cell is today.
func CalendarFor(records []store.Record, y int, mo time.Month, now time.Time) Month {
	loc := now.Location()
	first := time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	days := time.Date(y, mo+1, 0, 0, 0, 0, 0, loc).Day()
	today := DateOf(now)

	m := Month{
		Year:          y,
		Month:         int(mo),
		Title:         first.Format("January 2006"),
		LeadingBlanks: int(first.Weekday()),
	}
	if rem := (m.LeadingBlanks + days) % 7; rem != 0 {
		m.TrailingBlanks = 7 - rem
	}

	perDay := make(map[string][]store.Record, days)
	for _, r := range records {
		perDay[r.Date] = append(perDay[r.Date], r)
	}

	m.Cells = make([]DayCell, 0, m.LeadingBlanks+days+m.TrailingBlanks)
	for i := 0; i < m.LeadingBlanks; i++ {
		m.Cells = append(m.Cells, DayCell{Blank: true})
	}
	for d := 1; d <= days; d++ {
		date := DateOf(time.Date(y, mo, d, 0, 0, 0, 0, loc))
		cell := DayCell{Day: d, Date: date, IsToday: date == today}
		cell.Breakdown, cell.TotalMinutes = breakdown(perDay[date])
		m.TotalMinutes += cell.TotalMinutes
		m.Cells = append(m.Cells, cell)
	}
	for i := 0; i < m.TrailingBlanks; i++ {
		m.Cells = append(m.Cells, DayCell{Blank: true})
	}
	return m
}

func breakdown(records []store.Record) ([]TaskShare, int) {
	if len(records) == 0 {
		return nil, 0
	}
	var out []TaskShare
	pos := make(map[string]int)
	total := 0
	for _, r := range records {
		i, ok := pos[r.TaskID]
		if !ok {
			i = len(out)
			pos[r.TaskID] = i
			out = append(out, TaskShare{TaskID: r.TaskID, TaskName: r.TaskName, TaskColor: r.TaskColor})
		}
		out[i].Minutes += r.DurationMinutes
		total += r.DurationMinutes
	}
	for i := range out {
		if total > 0 {
			out[i].Share = float64(out[i].Minutes) / float64(total)
		}
	}
	return out, total
}

// Weeks splits the cells into rows of seven.
func (m Month) Weeks() [][]DayCell {
	var weeks [][]DayCell
	for i := 0; i < len(m.Cells); i += 7 {
		end := i + 7
		if end > len(m.Cells) {
			end = len(m.Cells)
		}
		weeks = append(weeks, m.Cells[i:end])
	}
	return weeks
}
