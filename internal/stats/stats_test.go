package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/store"
)

var (
	// Tuesday.
	now = time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)

	guitar  = store.Task{ID: "t-guitar", Name: "Guitar", TargetMinutes: 30, Color: "blue-500"}
	reading = store.Task{ID: "t-reading", Name: "Reading", TargetMinutes: 20, Color: "green-500"}
	running = store.Task{ID: "t-running", Name: "Running", TargetMinutes: 45, Color: "red-500"}
	tasks   = []store.Task{guitar, reading, running}
)

func rec(task store.Task, date string, minutes int) store.Record {
	start, _ := time.Parse(DateLayout, date)
	return store.Record{
		ID:              task.ID + "-" + date,
		TaskID:          task.ID,
		TaskName:        task.Name,
		TaskColor:       task.Color,
		StartTime:       start.Add(9 * time.Hour),
		EndTime:         start.Add(9*time.Hour + time.Duration(minutes)*time.Minute),
		DurationMinutes: minutes,
		Date:            date,
	}
}

// ============================================================
// Weekly
// ============================================================

func TestWeeklyNoRecords(t *testing.T) {
	m := Weekly(nil, tasks, now)
	require.Len(t, m.Days, 7)
	for _, d := range m.Days {
		assert.Equal(t, 0, d.Total)
		require.Len(t, d.Minutes, len(tasks))
		for _, v := range d.Minutes {
			assert.Equal(t, 0, v)
		}
	}
	assert.Equal(t, 0, m.TotalMinutes())
}

func TestWeeklyLabelsAndDates(t *testing.T) {
	m := Weekly(nil, nil, now)
	labels := make([]string, 0, 7)
	for _, d := range m.Days {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Wed", "Thu", "Fri", "Sat", "Sun", "Mon", "today"}, labels)
	assert.Equal(t, "2023-12-27", m.Days[0].Date)
	assert.Equal(t, "2024-01-02", m.Days[6].Date)
}

func TestWeeklyBucketsByTask(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-02", 30),
		rec(guitar, "2024-01-02", 45),
		rec(reading, "2024-01-01", 20),
		rec(running, "2023-12-20", 60), // outside the week
		{TaskID: "unknown", Date: "2024-01-02", DurationMinutes: 99},
	}
	m := Weekly(records, tasks, now)

	assert.Equal(t, []int{75, 0, 0}, m.Days[6].Minutes)
	assert.Equal(t, 75, m.Days[6].Total)
	assert.Equal(t, []int{0, 20, 0}, m.Days[5].Minutes)
	assert.Equal(t, 75, m.TaskMinutes(0))
	assert.Equal(t, 0, m.TaskMinutes(2))
	assert.Equal(t, 95, m.TotalMinutes())
}

func TestWeeklyAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	m := Weekly(nil, nil, time.Date(2024, 3, 12, 0, 30, 0, 0, ny))
	dates := make([]string, 0, 7)
	for _, d := range m.Days {
		dates = append(dates, d.Date)
	}
	assert.Equal(t, []string{
		"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09",
		"2024-03-10", "2024-03-11", "2024-03-12",
	}, dates)
}

// ============================================================
// TaskTotals
// ============================================================

func TestTaskTotalsSumsSessions(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-02", 30),
		rec(guitar, "2024-01-02", 45),
	}
	rk := TaskTotals(records, tasks, 7, now)
	require.False(t, rk.NoData)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, "t-guitar", rk.Entries[0].Task.ID)
	assert.Equal(t, 75, rk.Entries[0].Minutes)
	assert.Equal(t, 75, rk.TotalMinutes)
	assert.Equal(t, 1.0, rk.Share(0))
}

func TestTaskTotalsExcludesZeroTotals(t *testing.T) {
	records := []store.Record{rec(reading, "2024-01-01", 10)}
	rk := TaskTotals(records, tasks, 7, now)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, "t-reading", rk.Entries[0].Task.ID)
}

func TestTaskTotalsSortedDescendingStable(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-02", 10),
		rec(reading, "2024-01-02", 40),
		rec(running, "2024-01-01", 10),
	}
	rk := TaskTotals(records, tasks, 7, now)
	ids := []string{}
	for _, e := range rk.Entries {
		ids = append(ids, e.Task.ID)
	}
	assert.Equal(t, []string{"t-reading", "t-guitar", "t-running"}, ids)
}

func TestTaskTotalsWindow(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2023-12-27", 10), // 7 days back inclusive
		rec(guitar, "2023-12-26", 99), // outside 7, inside 30
		rec(guitar, "2023-12-04", 5),  // 30 days back inclusive
	}
	assert.Equal(t, 10, TaskTotals(records, tasks, 7, now).TotalMinutes)
	assert.Equal(t, 114, TaskTotals(records, tasks, 30, now).TotalMinutes)
	assert.Equal(t, "2023-12-27", TaskTotals(records, tasks, 7, now).Since)
}

func TestTaskTotalsNoData(t *testing.T) {
	rk := TaskTotals(nil, tasks, 7, now)
	assert.True(t, rk.NoData)
	assert.Empty(t, rk.Entries)

	// records for tasks no longer listed count as no data
	rk = TaskTotals([]store.Record{rec(guitar, "2024-01-02", 30)}, nil, 7, now)
	assert.True(t, rk.NoData)
}

func TestTaskTotalsWindowBelowOne(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-02", 30),
		rec(guitar, "2024-01-01", 30),
	}
	for _, days := range []int{0, -3} {
		rk := TaskTotals(records, tasks, days, now)
		assert.Equal(t, 1, rk.WindowDays)
		assert.Equal(t, 30, rk.TotalMinutes)
	}
}

func TestTaskTotalsAcrossTwoDays(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-01", 30),
		rec(guitar, "2024-01-02", 45),
	}

	rk := TaskTotals(records, []store.Task{guitar}, 7, now)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, 75, rk.Entries[0].Minutes)
	assert.Equal(t, 75, rk.TotalMinutes)
	assert.False(t, rk.NoData)

	m := Weekly(records, []store.Task{guitar}, now)
	assert.Equal(t, 30, m.Days[5].Total)
	assert.Equal(t, 45, m.Days[6].Total)
	assert.Equal(t, 75, m.TaskMinutes(0))
}

func TestSingleOneMinuteRecord(t *testing.T) {
	records := []store.Record{rec(reading, "2024-01-02", 1)}

	rk := TaskTotals(records, tasks, 7, now)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, reading.ID, rk.Entries[0].Task.ID)
	assert.Equal(t, 1, rk.TotalMinutes)

	assert.Equal(t, 1, Weekly(records, tasks, now).TotalMinutes())

	today := TodayGroups(records, now)
	require.Len(t, today.Groups, 1)
	assert.Equal(t, 1, today.TotalMinutes)

	assert.Equal(t, 1, MonthlyCalendar(records, now).TotalMinutes)
}

// ============================================================
// MonthlyCalendar
// ============================================================

func TestMonthlyCalendarThirtyDayMonth(t *testing.T) {
	// April 1st 2024 is a Monday.
	m := MonthlyCalendar(nil, time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, m.LeadingBlanks)
	assert.Equal(t, 4, m.TrailingBlanks)
	assert.Equal(t, "April 2024", m.Title)

	days := 0
	for _, c := range m.Cells {
		if !c.Blank {
			days++
		}
	}
	assert.Equal(t, 30, days)
	assert.True(t, m.Cells[0].Blank)
	assert.Equal(t, 1, m.Cells[1].Day)
	assert.Equal(t, 0, len(m.Cells)%7)
	assert.Len(t, m.Weeks(), 5)
}

func TestMonthlyCalendarLeadingBlanks(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		leading int
		cells   int
	}{
		{"sunday start", time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), 0, 35},
		{"february fits four weeks", time.Date(2015, 2, 1, 0, 0, 0, 0, time.UTC), 0, 28},
		{"saturday start", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 6, 42},
		{"leap february", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 4, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MonthlyCalendar(nil, tt.now)
			assert.Equal(t, tt.leading, m.LeadingBlanks)
			assert.Len(t, m.Cells, tt.cells)
		})
	}
}

func TestMonthlyCalendarBreakdown(t *testing.T) {
	records := []store.Record{
		rec(reading, "2024-01-02", 15),
		rec(guitar, "2024-01-02", 30),
		rec(reading, "2024-01-02", 15),
		rec(guitar, "2024-01-05", 20),
		rec(guitar, "2023-12-31", 50), // previous month
	}
	m := MonthlyCalendar(records, now)
	// January 1st 2024 is a Monday.
	require.Equal(t, 1, m.LeadingBlanks)

	day2 := m.Cells[m.LeadingBlanks+1]
	assert.Equal(t, "2024-01-02", day2.Date)
	assert.True(t, day2.IsToday)
	assert.Equal(t, 60, day2.TotalMinutes)
	require.Len(t, day2.Breakdown, 2)
	assert.Equal(t, "t-reading", day2.Breakdown[0].TaskID)
	assert.Equal(t, 30, day2.Breakdown[0].Minutes)
	assert.InDelta(t, 0.5, day2.Breakdown[0].Share, 1e-9)
	assert.InDelta(t, 0.5, day2.Breakdown[1].Share, 1e-9)

	day1 := m.Cells[m.LeadingBlanks]
	assert.False(t, day1.IsToday)
	assert.Empty(t, day1.Breakdown)
	assert.Equal(t, 80, m.TotalMinutes)
}

// ============================================================
// TodayGroups
// ============================================================

func TestTodayGroups(t *testing.T) {
	a := rec(guitar, "2024-01-02", 30)
	a.ID = "a"
	b := rec(reading, "2024-01-02", 10)
	b.ID = "b"
	c := rec(guitar, "2024-01-02", 45)
	c.ID = "c"
	old := rec(guitar, "2024-01-01", 99)

	today := TodayGroups([]store.Record{a, old, b, c}, now)
	assert.Equal(t, "2024-01-02", today.Date)
	require.Len(t, today.Groups, 2)
	assert.Equal(t, "t-guitar", today.Groups[0].TaskID)
	assert.Equal(t, 75, today.Groups[0].TotalMinutes)
	require.Len(t, today.Groups[0].Sessions, 2)
	assert.Equal(t, "a", today.Groups[0].Sessions[0].ID)
	assert.Equal(t, "c", today.Groups[0].Sessions[1].ID)
	assert.Equal(t, 10, today.Groups[1].TotalMinutes)
	assert.Equal(t, 85, today.TotalMinutes)
}

func TestTodayGroupsEmpty(t *testing.T) {
	today := TodayGroups(nil, now)
	assert.Empty(t, today.Groups)
	assert.Equal(t, 0, today.TotalMinutes)
}

// ============================================================
// Purity
// ============================================================

func TestAggregationsAreIdempotentAndPure(t *testing.T) {
	records := []store.Record{
		rec(guitar, "2024-01-02", 30),
		rec(reading, "2023-12-30", 25),
		rec(running, "2024-01-01", 40),
	}
	recordsCopy := append([]store.Record(nil), records...)
	tasksCopy := append([]store.Task(nil), tasks...)

	assert.Equal(t, Weekly(records, tasks, now), Weekly(records, tasks, now))
	assert.Equal(t, TaskTotals(records, tasks, 30, now), TaskTotals(records, tasks, 30, now))
	assert.Equal(t, MonthlyCalendar(records, now), MonthlyCalendar(records, now))
	assert.Equal(t, TodayGroups(records, now), TodayGroups(records, now))

	assert.Equal(t, recordsCopy, records)
	assert.Equal(t, tasksCopy, tasks)
}

func TestDateHelpers(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, "2024-01-01", DateOf(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC).In(loc)))

	d, err := ParseDate("2024-02-29", loc)
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, loc, d.Location())

	_, err = ParseDate("2024-13-01", loc)
	assert.Error(t, err)
}

func TestCalendarForOtherMonth(t *testing.T) {
	records := []store.Record{rec(guitar, "2023-12-31", 50)}
	m := CalendarFor(records, 2023, time.December, now)
	assert.Equal(t, "December 2023", m.Title)
	assert.Equal(t, 50, m.TotalMinutes)
	for _, c := range m.Cells {
		assert.False(t, c.IsToday)
	}
	// December 1st 2023 is a Friday.
	assert.Equal(t, 5, m.LeadingBlanks)
}
