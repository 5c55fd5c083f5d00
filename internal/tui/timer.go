package tui

import (
	"context"
	"time"

	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/timer"
)

const defaultIdleTimeout = 5 * time.Minute

// timerModel drives the single active session and persists it on stop.
type timerModel struct {
	store   *store.Store
	ownerID string

	session timer.Session

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(s *store.Store, ownerID string, idleTimeout time.Duration) timerModel {
	return timerModel{
		store:        s,
		ownerID:      ownerID,
		lastActivity: time.Now(),
		idleTimeout:  idleTimeout,
	}
}

func (t *timerModel) start(task store.Task, now time.Time) {
	t.session = timer.Start(task, now)
	t.lastActivity = now
	t.isIdle = false
}

// stop ends the session. Sessions shorter than a minute are dropped and
// return a nil record. When saving fails the session keeps running so the
// stop can be retried.
func (t *timerModel) stop(now time.Time) (*store.Record, error) {
	out, err := t.session.Stop(now)
	if err != nil {
		return nil, err
	}
	var rec *store.Record
	if !out.Discarded {
		rec, err = t.store.CreateRecord(context.Background(), t.ownerID, out.Record)
		if err != nil {
			return nil, err
		}
	}
	t.session = timer.Session{}
	t.isIdle = false
	return rec, nil
}

func (t *timerModel) pause(now time.Time) {
	if s, err := t.session.Pause(now); err == nil {
		t.session = s
	}
}

func (t *timerModel) resume(now time.Time) {
	if s, err := t.session.Resume(now); err == nil {
		t.session = s
		t.isIdle = false
		t.lastActivity = now
	}
}

func (t *timerModel) toggle(now time.Time) {
	switch t.session.Phase() {
	case timer.Running:
		t.pause(now)
	case timer.Paused:
		t.resume(now)
	}
}

// tick pauses a running session once no key has been pressed for the idle
// timeout. The pause is placed at the moment the user went idle so the idle
// span never counts.
func (t *timerModel) tick(now time.Time) {
	if !t.session.IsRunning() || t.idleTimeout <= 0 || t.isIdle {
		return
	}
	idleAt := t.lastActivity.Add(t.idleTimeout)
	if now.After(idleAt) {
		if idleAt.Before(t.session.StartedAt()) {
			idleAt = now
		}
		t.pause(idleAt)
		t.isIdle = true
	}
}

func (t *timerModel) recordActivity(now time.Time) {
	t.lastActivity = now
	if t.isIdle && t.session.IsPaused() {
		t.resume(now)
	}
}

func (t timerModel) running() bool {
	return t.session.IsActive()
}

func (t timerModel) paused() bool {
	return t.session.IsPaused()
}

func (t timerModel) elapsed(now time.Time) time.Duration {
	return t.session.Elapsed(now)
}

func (t timerModel) progress(now time.Time) float64 {
	return t.session.Progress(now)
}

// pausedFor is how long the current pause has lasted.
func (t timerModel) pausedFor(now time.Time) time.Duration {
	if !t.session.IsPaused() {
		return 0
	}
	return now.Sub(t.session.PausedSince())
}

func (t timerModel) task() store.Task {
	return t.session.Task()
}
