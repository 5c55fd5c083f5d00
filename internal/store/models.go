package store

import "time"

type Owner struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"user_id"`
	Name          string    `json:"name"`
	TargetMinutes int       `json:"target_minutes"`
	Color         Color     `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
}

// Record is a finished timer session. TaskName and TaskColor are copied from
// the task when the session stops and are never rewritten afterwards.
type Record struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"user_id"`
	TaskID          string    `json:"task_id"`
	TaskName        string    `json:"task_name"`
	TaskColor       Color     `json:"task_color"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            string    `json:"date"` // YYYY-MM-DD, local date of EndTime
	CreatedAt       time.Time `json:"created_at"`
}

type Repeat string

const (
	RepeatDaily    Repeat = "daily"
	RepeatWeekdays Repeat = "weekdays"
	RepeatWeekends Repeat = "weekends"
)

// Valid reports whether r is one of the known repeat patterns.
func (r Repeat) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekdays, RepeatWeekends:
		return true
	}
	return false
}

type Reminder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	TaskName  string    `json:"task_name"`
	Time      string    `json:"time"` // HH:MM, local
	Repeat    Repeat    `json:"repeat"`
	CreatedAt time.Time `json:"created_at"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RecordFilter narrows ListRecords. From and To are inclusive YYYY-MM-DD dates.
type RecordFilter struct {
	From   string
	To     string
	TaskID string
	Limit  int
}

// DailyTotal is the sum of record minutes for one task on one date.
type DailyTotal struct {
	Date         string `json:"date"`
	TaskID       string `json:"task_id"`
	TaskName     string `json:"task_name"`
	TaskColor    Color  `json:"task_color"`
	TotalMinutes int    `json:"total_minutes"`
	RecordCount  int    `json:"record_count"`
}
