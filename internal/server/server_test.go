package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

// Tuesday evening.
var fixedNow = time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, zap.NewNop(), Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

func do(t *testing.T, srv *Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createTask(t *testing.T, srv *Server, user, name string) store.Task {
	t.Helper()
	code, env := do(t, srv, http.MethodPost, "/api/users/"+user+"/tasks",
		obj{"name": name, "target_minutes": 30, "color": "green-500"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	return decode[store.Task](t, env)
}

func createRecord(t *testing.T, srv *Server, user string, task store.Task, end time.Time, minutes int) store.Record {
	t.Helper()
	code, env := do(t, srv, http.MethodPost, "/api/users/"+user+"/records", obj{
		"task_id":          task.ID,
		"start_time":       end.Add(-time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		"end_time":         end.Format(time.RFC3339),
		"duration_minutes": minutes,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	return decode[store.Record](t, env)
}

type obj = map[string]any

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	code, env := do(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	code, env := do(t, srv, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

// ============================================================
// Tasks
// ============================================================

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")
	assert.Equal(t, "Guitar", task.Name)
	assert.Equal(t, store.Color("green-500"), task.Color)

	code, env := do(t, srv, http.MethodPut, "/api/users/u1/tasks/"+task.ID,
		obj{"name": "Bass", "target_minutes": 45, "color": "red-500"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "Bass", decode[store.Task](t, env).Name)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]store.Task](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, 45, list[0].TargetMinutes)

	code, _ = do(t, srv, http.MethodDelete, "/api/users/u1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, srv, http.MethodGet, "/api/users/u1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestEmptyListsAreArrays(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"tasks", "records", "reminders", "reminders/due", "stats/daily"} {
		code, env := do(t, srv, http.MethodGet, "/api/users/u1/"+path, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "[]", string(env.Data), path)
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"empty task name", http.MethodPost, "/api/users/u1/tasks", obj{"name": "", "target_minutes": 10}},
		{"zero target", http.MethodPost, "/api/users/u1/tasks", obj{"name": "x", "target_minutes": 0}},
		{"bad color", http.MethodPost, "/api/users/u1/tasks", obj{"name": "x", "target_minutes": 5, "color": "plaid"}},
		{"malformed json", http.MethodPost, "/api/users/u1/tasks", "not an object"},
		{"bad limit", http.MethodGet, "/api/users/u1/records?limit=abc", nil},
		{"bad from", http.MethodGet, "/api/users/u1/records?from=yesterday", nil},
		{"bad month", http.MethodGet, "/api/users/u1/stats/calendar?month=2024-13", nil},
		{"bad days", http.MethodGet, "/api/users/u1/stats/tasks?days=week", nil},
		{"missing taskId", http.MethodDelete, "/api/users/u1/reminders", nil},
		{"bad at", http.MethodGet, "/api/users/u1/reminders/due?at=noon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

// ============================================================
// Records
// ============================================================

func TestRecordCreateAndList(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")
	rec := createRecord(t, srv, "u1", task, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), 30)
	assert.Equal(t, "2024-01-02", rec.Date)
	assert.Equal(t, "Guitar", rec.TaskName)
	createRecord(t, srv, "u1", task, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), 15)

	code, env := do(t, srv, http.MethodGet, "/api/users/u1/records?from=2024-01-02", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]store.Record](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/records?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]store.Record](t, env), 1)

	code, _ = do(t, srv, http.MethodDelete, "/api/users/u1/records/"+rec.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, srv, http.MethodGet, "/api/users/u1/records/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecordRejectsShortSession(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")
	end := fixedNow.Add(-time.Hour)
	code, env := do(t, srv, http.MethodPost, "/api/users/u1/records", obj{
		"task_id":    task.ID,
		"start_time": end.Add(-59 * time.Second).Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestRecordRejectsDurationBeyondSpan(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")
	end := fixedNow.Add(-time.Hour)
	code, env := do(t, srv, http.MethodPost, "/api/users/u1/records", obj{
		"task_id":          task.ID,
		"start_time":       end.Add(-10 * time.Minute).Format(time.RFC3339),
		"end_time":         end.Format(time.RFC3339),
		"duration_minutes": 500,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestRecordForeignTaskIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "alice", "Guitar")
	code, _ := do(t, srv, http.MethodPost, "/api/users/bob/records", obj{
		"task_id":          task.ID,
		"start_time":       fixedNow.Add(-time.Hour).Format(time.RFC3339),
		"end_time":         fixedNow.Format(time.RFC3339),
		"duration_minutes": 60,
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNoRecordUpdateRoute(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")
	rec := createRecord(t, srv, "u1", task, fixedNow, 10)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		code, _ := do(t, srv, method, "/api/users/u1/records/"+rec.ID, obj{"duration_minutes": 999})
		assert.Equal(t, http.StatusNotFound, code, method)
	}
}

// ============================================================
// Reminders
// ============================================================

func TestReminderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "u1", "Guitar")

	code, env := do(t, srv, http.MethodPost, "/api/users/u1/reminders", obj{"task_id": task.ID})
	require.Equal(t, http.StatusCreated, code, env.Error)
	rem := decode[store.Reminder](t, env)
	assert.Equal(t, "18:00", rem.Time)
	assert.Equal(t, store.RepeatDaily, rem.Repeat)

	code, _ = do(t, srv, http.MethodPost, "/api/users/u1/reminders", obj{"task_id": task.ID})
	assert.Equal(t, http.StatusConflict, code)

	code, env = do(t, srv, http.MethodPut, "/api/users/u1/reminders/"+rem.ID, obj{"time": "20:00", "repeat": "weekdays"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "20:00", decode[store.Reminder](t, env).Time)

	// fixedNow is Tuesday 20:00
	code, env = do(t, srv, http.MethodGet, "/api/users/u1/reminders/due", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]store.Reminder](t, env), 1)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/reminders/due?at=2024-01-06T20:00:00Z", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]store.Reminder](t, env))

	code, env = do(t, srv, http.MethodDelete, "/api/users/u1/reminders?taskId="+task.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"deleted":1}`, string(env.Data))

	code, _ = do(t, srv, http.MethodDelete, "/api/users/u1/reminders/"+rem.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// ============================================================
// Stats
// ============================================================

func TestStatsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	guitar := createTask(t, srv, "u1", "Guitar")
	reading := createTask(t, srv, "u1", "Reading")
	createRecord(t, srv, "u1", guitar, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), 30)
	createRecord(t, srv, "u1", guitar, time.Date(2024, 1, 2, 18, 45, 0, 0, time.UTC), 45)
	createRecord(t, srv, "u1", reading, time.Date(2023, 12, 20, 10, 0, 0, 0, time.UTC), 20)

	code, env := do(t, srv, http.MethodGet, "/api/users/u1/stats/weekly", nil)
	require.Equal(t, http.StatusOK, code)
	week := decode[stats.WeeklyMatrix](t, env)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "today", week.Days[6].Label)
	assert.Equal(t, 75, week.Days[6].Total)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/stats/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	rk := decode[stats.Ranking](t, env)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, 75, rk.Entries[0].Minutes)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/stats/tasks?days=30", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[stats.Ranking](t, env).Entries, 2)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/stats/today", nil)
	require.Equal(t, http.StatusOK, code)
	today := decode[stats.Today](t, env)
	require.Len(t, today.Groups, 1)
	assert.Equal(t, 75, today.TotalMinutes)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/stats/calendar?month=2023-12", nil)
	require.Equal(t, http.StatusOK, code)
	month := decode[stats.Month](t, env)
	assert.Equal(t, 20, month.TotalMinutes)
	assert.Equal(t, 5, month.LeadingBlanks)

	code, env = do(t, srv, http.MethodGet, "/api/users/u1/stats/daily?from=2024-01-02&to=2024-01-02", nil)
	require.Equal(t, http.StatusOK, code)
	totals := decode[[]store.DailyTotal](t, env)
	require.Len(t, totals, 1)
	assert.Equal(t, 75, totals[0].TotalMinutes)
}

func TestStatsNoData(t *testing.T) {
	srv := newTestServer(t)
	createTask(t, srv, "u1", "Guitar")

	code, env := do(t, srv, http.MethodGet, "/api/users/u1/stats/tasks?days=0", nil)
	require.Equal(t, http.StatusOK, code)
	rk := decode[stats.Ranking](t, env)
	assert.True(t, rk.NoData)
	assert.Equal(t, 1, rk.WindowDays)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(store.ErrDuplicate))
	assert.Equal(t, http.StatusBadRequest, statusFor(store.ErrInvalid))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
