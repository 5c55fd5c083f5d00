package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/store"
)

// 2024-01-05 is a Friday.
var friday = time.Date(2024, 1, 5, 18, 0, 30, 0, time.UTC)

func TestParseRepeat(t *testing.T) {
	r, err := ParseRepeat(" Weekdays ")
	require.NoError(t, err)
	assert.Equal(t, store.RepeatWeekdays, r)

	_, err = ParseRepeat("monthly")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:45")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 45, m)

	for _, bad := range []string{"", "7:45", "24:00", "12:60", "noon"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		repeat store.Repeat
		day    time.Weekday
		want   bool
	}{
		{store.RepeatDaily, time.Sunday, true},
		{store.RepeatDaily, time.Wednesday, true},
		{store.RepeatWeekdays, time.Monday, true},
		{store.RepeatWeekdays, time.Saturday, false},
		{store.RepeatWeekends, time.Sunday, true},
		{store.RepeatWeekends, time.Friday, false},
		{"hourly", time.Friday, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.repeat, tt.day), "%s on %s", tt.repeat, tt.day)
	}
}

func TestDue(t *testing.T) {
	reminders := []store.Reminder{
		{ID: "a", Time: "18:00", Repeat: store.RepeatDaily},
		{ID: "b", Time: "18:00", Repeat: store.RepeatWeekends},
		{ID: "c", Time: "18:01", Repeat: store.RepeatDaily},
		{ID: "d", Time: "18:00", Repeat: store.RepeatWeekdays},
		{ID: "e", Time: "bogus", Repeat: store.RepeatDaily},
	}
	due := Due(reminders, friday)
	require.Len(t, due, 2)
	assert.Equal(t, "a", due[0].ID)
	assert.Equal(t, "d", due[1].ID)

	assert.Empty(t, Due(nil, friday))
}

func TestNext(t *testing.T) {
	daily := store.Reminder{Time: "18:00", Repeat: store.RepeatDaily}
	assert.Equal(t, time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC), Next(daily, friday))

	early := store.Reminder{Time: "20:15", Repeat: store.RepeatDaily}
	assert.Equal(t, time.Date(2024, 1, 5, 20, 15, 0, 0, time.UTC), Next(early, friday))

	weekdays := store.Reminder{Time: "09:00", Repeat: store.RepeatWeekdays}
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), Next(weekdays, friday))

	weekends := store.Reminder{Time: "09:00", Repeat: store.RepeatWeekends}
	assert.Equal(t, time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC), Next(weekends, friday))

	assert.True(t, Next(store.Reminder{Time: "x", Repeat: store.RepeatDaily}, friday).IsZero())
	assert.True(t, Next(store.Reminder{Time: "09:00", Repeat: "never"}, friday).IsZero())
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "18:00", Default.Time)
	assert.Equal(t, store.RepeatDaily, Default.Repeat)
	assert.Equal(t, "18:00 daily", Describe(store.Reminder{Time: "18:00", Repeat: store.RepeatDaily}))
}
