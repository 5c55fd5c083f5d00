package stats

import (
	"sort"
	"time"

	"github.com/sadopc/habitr/internal/store"
)

type TaskTotal struct {
	Task    store.Task `json:"task"`
	Minutes int        `json:"minutes"`
}

// Ranking lists tasks by minutes in a trailing window. NoData is set when
// no task has any time in the window.
type Ranking struct {
	WindowDays   int         `json:"window_days"`
	Since        string      `json:"since"`
	Entries      []TaskTotal `json:"entries"`
	TotalMinutes int         `json:"total_minutes"`
	NoData       bool        `json:"no_data"`
}

// TaskTotals sums minutes per task over the last windowDays days including
// today, largest first. Ties keep the order of tasks. A window below one
// day is treated as one day.
func TaskTotals(records []store.Record, tasks []store.Task, windowDays int, now time.Time) Ranking {
	if windowDays < 1 {
		windowDays = 1
	}
	since := DateOf(addDays(now, -(windowDays - 1)))

	sums := make(map[string]int)
	for _, r := range records {
		if r.Date >= since {
			sums[r.TaskID] += r.DurationMinutes
		}
	}

	rk := Ranking{WindowDays: windowDays, Since: since}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if n := sums[t.ID]; n > 0 {
			rk.Entries = append(rk.Entries, TaskTotal{Task: t, Minutes: n})
			rk.TotalMinutes += n
		}
	}
	sort.SliceStable(rk.Entries, func(i, j int) bool {
		return rk.Entries[i].Minutes > rk.Entries[j].Minutes
	})
	rk.NoData = len(rk.Entries) == 0
	return rk
}

// Share returns the fraction of the ranking total held by entry i.
func (rk Ranking) Share(i int) float64 {
	if rk.TotalMinutes == 0 || i < 0 || i >= len(rk.Entries) {
		return 0
	}
	return float64(rk.Entries[i].Minutes) / float64(rk.TotalMinutes)
}
