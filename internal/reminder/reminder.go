// Package reminder computes when stored reminders fire.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/habitr/internal/store"
)

const ClockLayout = "15:04"

// Default is the schedule a new reminder gets when none is given.
var Default = struct {
	Time   string
	Repeat store.Repeat
}{Time: store.DefaultReminderTime, Repeat: store.DefaultReminderRepeat}

// Repeats lists the patterns in display order.
var Repeats = []store.Repeat{store.RepeatDaily, store.RepeatWeekdays, store.RepeatWeekends}

func ParseRepeat(s string) (store.Repeat, error) {
	r := store.Repeat(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown repeat %q", s)
	}
	return r, nil
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(ClockLayout, s)
	if err != nil || len(s) != len(ClockLayout) {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Matches reports whether repeat covers the given weekday.
func Matches(repeat store.Repeat, day time.Weekday) bool {
	weekend := day == time.Saturday || day == time.Sunday
	switch repeat {
	case store.RepeatDaily:
		return true
	case store.RepeatWeekdays:
		return !weekend
	case store.RepeatWeekends:
		return weekend
	}
	return false
}

// Due returns the reminders that fire in the minute containing now.
// Reminders with an unparseable time are skipped.
func Due(reminders []store.Reminder, now time.Time) []store.Reminder {
	var due []store.Reminder
	for _, r := range reminders {
		h, m, err := ParseClock(r.Time)
		if err != nil {
			continue
		}
		if h == now.Hour() && m == now.Minute() && Matches(r.Repeat, now.Weekday()) {
			due = append(due, r)
		}
	}
	return due
}

// Next returns the first fire time strictly after after, in after's
// location. It returns the zero time when r can never fire.
func Next(r store.Reminder, after time.Time) time.Time {
	h, m, err := ParseClock(r.Time)
	if err != nil {
		return time.Time{}
	}
	y, mo, d := after.Date()
	for i := 0; i <= 7; i++ {
		at := time.Date(y, mo, d+i, h, m, 0, 0, after.Location())
		if at.After(after) && Matches(r.Repeat, at.Weekday()) {
			return at
		}
	}
	return time.Time{}
}

// Describe renders a schedule such as "18:00 weekdays".
func Describe(r store.Reminder) string {
	return r.Time + " " + string(r.Repeat)
}
