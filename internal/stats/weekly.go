package stats

import (
	"time"

	"github.com/sadopc/habitr/internal/store"
)

const WeekDays = 7

// DayBucket holds the minutes of one day. Minutes is indexed like the
// matrix's Tasks.
type DayBucket struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Minutes []int  `json:"minutes"`
	Total   int    `json:"total"`
}

type WeeklyMatrix struct {
	Tasks []store.Task `json:"tasks"`
	Days  []DayBucket  `json:"days"`
}

// Weekly builds seven day buckets ending at now's date, oldest first. The
// last bucket is labelled "today", the rest by short weekday name. Records
// of tasks not in tasks are ignored.
func Weekly(records []store.Record, tasks []store.Task, now time.Time) WeeklyMatrix {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}

	m := WeeklyMatrix{
		Tasks: append([]store.Task(nil), tasks...),
		Days:  make([]DayBucket, WeekDays),
	}
	byDate := make(map[string]int, WeekDays)
	for i := 0; i < WeekDays; i++ {
		day := addDays(now, i-(WeekDays-1))
		label := day.Format("Mon")
		if i == WeekDays-1 {
			label = "today"
		}
		m.Days[i] = DayBucket{
			Date:    DateOf(day),
			Label:   label,
			Minutes: make([]int, len(tasks)),
		}
		byDate[m.Days[i].Date] = i
	}

	for _, r := range records {
		d, ok := byDate[r.Date]
		if !ok {
			continue
		}
		ti, ok := index[r.TaskID]
		if !ok {
			continue
		}
		m.Days[d].Minutes[ti] += r.DurationMinutes
		m.Days[d].Total += r.DurationMinutes
	}
	return m
}

// TaskMinutes returns the week's total for the task at index i.
func (m WeeklyMatrix) TaskMinutes(i int) int {
	total := 0
	for _, d := range m.Days {
		if i < len(d.Minutes) {
			total += d.Minutes[i]
		}
	}
	return total
}

func (m WeeklyMatrix) TotalMinutes() int {
	total := 0
	for _, d := range m.Days {
		total += d.Total
	}
	return total
}
