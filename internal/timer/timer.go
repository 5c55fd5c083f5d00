// Package timer holds the state machine for a single timed session.
//
// A Session is a value: every transition returns a new Session and leaves
// the receiver untouched. Durations depend only on the instants passed to
// the transitions, never on how often the caller polls.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/habitr/internal/store"
)

type Phase int

const (
	Idle Phase = iota
	Running
	Paused
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// ErrInvalidTransition is returned when a transition is not allowed from the
// session's current phase.
var ErrInvalidTransition = errors.New("invalid timer transition")

// MinRecordMinutes is the shortest session that produces a record.
const MinRecordMinutes = 1

type Session struct {
	phase       Phase
	task        store.Task
	start       time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
}

// Start begins a running session for task. Any previous session value is
// simply replaced by the caller.
func Start(task store.Task, now time.Time) Session {
	return Session{phase: Running, task: task, start: now}
}

func (s Session) Phase() Phase { return s.phase }
func (s Session) Task() store.Task { return s.task }
func (s Session) StartedAt() time.Time { return s.start }
func (s Session) IsRunning() bool { return s.phase == Running }
func (s Session) IsPaused() bool { return s.phase == Paused }
func (s Session) IsActive() bool { return s.phase != Idle }
func (s Session) PausedSince() time.Time { return s.pausedAt }

// PausedFor is the total time spent paused, including an open pause.
func (s Session) PausedFor(now time.Time) time.Duration {
	d := s.pausedTotal
	if s.phase == Paused && now.After(s.pausedAt) {
		d += now.Sub(s.pausedAt)
	}
	return d
}

// Elapsed is the active time of the session. It is frozen while paused.
func (s Session) Elapsed(now time.Time) time.Duration {
	if s.phase == Idle {
		return 0
	}
	end := now
	if s.phase == Paused {
		end = s.pausedAt
	}
	d := end.Sub(s.start) - s.pausedTotal
	if d < 0 {
		return 0
	}
	return d
}

// ElapsedSeconds is Elapsed in whole seconds, rounded down.
func (s Session) ElapsedSeconds(now time.Time) int64 {
	return int64(s.Elapsed(now) / time.Second)
}

func (s Session) Pause(now time.Time) (Session, error) {
	if s.phase != Running {
		return s, fmt.Errorf("%w: pause while %s", ErrInvalidTransition, s.phase)
	}
	s.phase = Paused
	s.pausedAt = now
	return s, nil
}

func (s Session) Resume(now time.Time) (Session, error) {
	if s.phase != Paused {
		return s, fmt.Errorf("%w: resume while %s", ErrInvalidTransition, s.phase)
	}
	if now.After(s.pausedAt) {
		s.pausedTotal += now.Sub(s.pausedAt)
	}
	s.phase = Running
	s.pausedAt = time.Time{}
	return s, nil
}

// Progress is the fraction of the task's target reached, capped at 1.
func (s Session) Progress(now time.Time) float64 {
	if s.task.TargetMinutes <= 0 {
		return 0
	}
	p := float64(s.ElapsedSeconds(now)) / float64(s.task.TargetMinutes*60)
	if p > 1 {
		return 1
	}
	return p
}

// Outcome is the result of stopping a session.
type Outcome struct {
	// Discarded is set when the session was shorter than a minute.
	Discarded bool
	Elapsed   time.Duration
	Record    store.Record
}

// Stop ends the session. Sessions under one minute are discarded; otherwise
// the outcome carries a record dated by the local date of now.
func (s Session) Stop(now time.Time) (Outcome, error) {
	if s.phase == Idle {
		return Outcome{}, fmt.Errorf("%w: stop while idle", ErrInvalidTransition)
	}
	elapsed := s.Elapsed(now)
	minutes := int(s.ElapsedSeconds(now) / 60)
	if minutes < MinRecordMinutes {
		return Outcome{Discarded: true, Elapsed: elapsed}, nil
	}
	return Outcome{
		Elapsed: elapsed,
		Record: store.Record{
			TaskID:          s.task.ID,
			TaskName:        s.task.Name,
			TaskColor:       s.task.Color,
			StartTime:       s.start,
			EndTime:         now,
			DurationMinutes: minutes,
			Date:            now.Format("2006-01-02"),
		},
	}, nil
}

// FormatDuration renders d as H:MM:SS, or MM:SS under an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
