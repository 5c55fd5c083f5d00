package stats

import (
	"time"

	"github.com/sadopc/habitr/internal/store"
)

type Group struct {
	TaskID       string         `json:"task_id"`
	TaskName     string         `json:"task_name"`
	TaskColor    store.Color    `json:"task_color"`
	Sessions     []store.Record `json:"sessions"`
	TotalMinutes int            `json:"total_minutes"`
}

type Today struct {
	Date         string  `json:"date"`
	Groups       []Group `json:"groups"`
	TotalMinutes int     `json:"total_minutes"`
}

// TodayGroups groups the records dated on now's date by task. Groups appear
// in the order their first session appears; sessions keep input order.
func TodayGroups(records []store.Record, now time.Time) Today {
	out := Today{Date: DateOf(now)}
	pos := make(map[string]int)
	for _, r := range records {
		if r.Date != out.Date {
			continue
		}
		i, ok := pos[r.TaskID]
		if !ok {
			i = len(out.Groups)
			pos[r.TaskID] = i
			out.Groups = append(out.Groups, Group{
				TaskID:    r.TaskID,
				TaskName:  r.TaskName,
				TaskColor: r.TaskColor,
			})
		}
		out.Groups[i].Sessions = append(out.Groups[i].Sessions, r)
		out.Groups[i].TotalMinutes += r.DurationMinutes
		out.TotalMinutes += r.DurationMinutes
	}
	return out
}
