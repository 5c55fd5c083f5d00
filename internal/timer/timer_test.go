package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/store"
)

var (
	t0   = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	task = store.Task{ID: "task-1", Name: "Guitar", TargetMinutes: 30, Color: "blue-500"}
)

func TestStartIsRunning(t *testing.T) {
	s := Start(task, t0)
	assert.Equal(t, Running, s.Phase())
	assert.Equal(t, int64(0), s.ElapsedSeconds(t0))
	assert.Equal(t, int64(90), s.ElapsedSeconds(t0.Add(90*time.Second)))
}

func TestElapsedNeverNegative(t *testing.T) {
	s := Start(task, t0)
	assert.Equal(t, int64(0), s.ElapsedSeconds(t0.Add(-time.Minute)))
	assert.Equal(t, int64(0), Session{}.ElapsedSeconds(t0))
}

func TestStopUnderOneMinuteDiscards(t *testing.T) {
	s := Start(task, t0)
	out, err := s.Stop(t0.Add(59 * time.Second))
	require.NoError(t, err)
	assert.True(t, out.Discarded)
	assert.Equal(t, 59*time.Second, out.Elapsed)
	assert.Empty(t, out.Record.TaskID)
}

func TestStopAtOneMinuteCommits(t *testing.T) {
	s := Start(task, t0)
	out, err := s.Stop(t0.Add(60 * time.Second))
	require.NoError(t, err)
	require.False(t, out.Discarded)
	assert.Equal(t, 1, out.Record.DurationMinutes)
	assert.Equal(t, "task-1", out.Record.TaskID)
	assert.Equal(t, "Guitar", out.Record.TaskName)
	assert.Equal(t, store.Color("blue-500"), out.Record.TaskColor)
	assert.Equal(t, t0, out.Record.StartTime)
	assert.Equal(t, t0.Add(time.Minute), out.Record.EndTime)
	assert.Equal(t, "2024-01-02", out.Record.Date)
}

func TestStopFloorsMinutes(t *testing.T) {
	s := Start(task, t0)
	out, err := s.Stop(t0.Add(44*time.Minute + 59*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 44, out.Record.DurationMinutes)
}

func TestPauseFreezesElapsed(t *testing.T) {
	s := Start(task, t0)
	s, err := s.Pause(t0.Add(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Paused, s.Phase())

	assert.Equal(t, int64(120), s.ElapsedSeconds(t0.Add(2*time.Minute)))
	assert.Equal(t, int64(120), s.ElapsedSeconds(t0.Add(50*time.Minute)))
	assert.Equal(t, 48*time.Minute, s.PausedFor(t0.Add(50*time.Minute)))
}

func TestPauseResumeSubtractsPausedSpans(t *testing.T) {
	s := Start(task, t0)
	var err error
	// run 10m, pause 5m, run 10m, pause 20m, run 5m
	s, err = s.Pause(t0.Add(10 * time.Minute))
	require.NoError(t, err)
	s, err = s.Resume(t0.Add(15 * time.Minute))
	require.NoError(t, err)
	s, err = s.Pause(t0.Add(25 * time.Minute))
	require.NoError(t, err)
	s, err = s.Resume(t0.Add(45 * time.Minute))
	require.NoError(t, err)

	end := t0.Add(50 * time.Minute)
	assert.Equal(t, 25*time.Minute, s.PausedFor(end))
	out, err := s.Stop(end)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Record.DurationMinutes)
	assert.Equal(t, t0, out.Record.StartTime)
	assert.Equal(t, end, out.Record.EndTime)
}

func TestStopWhilePaused(t *testing.T) {
	s := Start(task, t0)
	s, err := s.Pause(t0.Add(3 * time.Minute))
	require.NoError(t, err)

	out, err := s.Stop(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Record.DurationMinutes)
}

func TestTransitionsAreImmutable(t *testing.T) {
	s := Start(task, t0)
	p, err := s.Pause(t0.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, Running, s.Phase())
	assert.Equal(t, Paused, p.Phase())
	assert.Equal(t, int64(300), s.ElapsedSeconds(t0.Add(5*time.Minute)))
}

func TestInvalidTransitions(t *testing.T) {
	running := Start(task, t0)
	paused, err := running.Pause(t0.Add(time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"pause idle", func() error { _, err := Session{}.Pause(t0); return err }},
		{"resume idle", func() error { _, err := Session{}.Resume(t0); return err }},
		{"stop idle", func() error { _, err := Session{}.Stop(t0); return err }},
		{"pause paused", func() error { _, err := paused.Pause(t0.Add(2 * time.Minute)); return err }},
		{"resume running", func() error { _, err := running.Resume(t0.Add(2 * time.Minute)); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrInvalidTransition)
		})
	}
}

func TestRejectedTransitionKeepsState(t *testing.T) {
	paused, err := Start(task, t0).Pause(t0.Add(time.Minute))
	require.NoError(t, err)

	again, err := paused.Pause(t0.Add(10 * time.Minute))
	require.Error(t, err)
	assert.Equal(t, paused, again)
}

func TestStopAcrossMidnightUsesStopDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2024, 3, 9, 23, 40, 0, 0, loc)
	out, err := Start(task, start).Stop(start.Add(40 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", out.Record.Date)
	assert.Equal(t, 40, out.Record.DurationMinutes)
}

func TestProgressCapsAtOne(t *testing.T) {
	s := Start(task, t0)
	assert.InDelta(t, 0.5, s.Progress(t0.Add(15*time.Minute)), 1e-9)
	assert.Equal(t, 1.0, s.Progress(t0.Add(2*time.Hour)))

	noTarget := Start(store.Task{ID: "x"}, t0)
	assert.Equal(t, 0.0, noTarget.Progress(t0.Add(time.Hour)))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "01:05", FormatDuration(65*time.Second))
	assert.Equal(t, "1:01:01", FormatDuration(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "00:00", FormatDuration(-time.Second))
}
