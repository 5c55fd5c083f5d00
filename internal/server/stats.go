package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

const defaultWindowDays = 7

// reportInputs loads the owner's tasks and the records dated from since on.
func (s *Server) reportInputs(c *gin.Context, since string) ([]store.Task, []store.Record, error) {
	ctx := c.Request.Context()
	tasks, err := s.store.ListTasks(ctx, owner(c))
	if err != nil {
		return nil, nil, err
	}
	records, err := s.store.ListRecords(ctx, owner(c), store.RecordFilter{From: since})
	if err != nil {
		return nil, nil, err
	}
	return tasks, records, nil
}

func daysBefore(now time.Time, n int) string {
	y, m, d := now.Date()
	return stats.DateOf(time.Date(y, m, d-n, 0, 0, 0, 0, now.Location()))
}

func (s *Server) handleWeekly(c *gin.Context) {
	now := s.today()
	tasks, records, err := s.reportInputs(c, daysBefore(now, stats.WeekDays-1))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats.Weekly(records, tasks, now))
}

// handleTaskTotals ranks tasks over ?days= (default 7).
func (s *Server) handleTaskTotals(c *gin.Context) {
	days := s.windowDays(c)
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(c, fmt.Errorf("%w: days must be an integer", errBadRequest))
			return
		}
		days = n
	}
	if days < 1 {
		days = 1
	}

	now := s.today()
	tasks, records, err := s.reportInputs(c, daysBefore(now, days-1))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats.TaskTotals(records, tasks, days, now))
}

// windowDays reads the installation default, falling back to a week.
func (s *Server) windowDays(c *gin.Context) int {
	raw, err := s.store.GetSetting(c.Request.Context(), store.SettingDefaultWindowDays)
	if err != nil {
		return defaultWindowDays
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultWindowDays
	}
	return n
}

func (s *Server) handleToday(c *gin.Context) {
	now := s.today()
	date := stats.DateOf(now)
	records, err := s.store.ListRecords(c.Request.Context(), owner(c), store.RecordFilter{From: date, To: date})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats.TodayGroups(records, now))
}

// handleCalendar renders ?month=YYYY-MM, defaulting to the current month.
func (s *Server) handleCalendar(c *gin.Context) {
	now := s.today()
	year, month := now.Year(), now.Month()
	if raw := c.Query("month"); raw != "" {
		t, err := time.ParseInLocation("2006-01", raw, s.loc)
		if err != nil {
			s.respondError(c, fmt.Errorf("%w: month must be YYYY-MM", errBadRequest))
			return
		}
		year, month = t.Year(), t.Month()
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1)
	records, err := s.store.ListRecords(c.Request.Context(), owner(c), store.RecordFilter{
		From: stats.DateOf(first),
		To:   stats.DateOf(last),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats.CalendarFor(records, year, month, now))
}

// handleDailyTotals returns per-day, per-task sums for ?from=&to=, defaulting
// to the current week.
func (s *Server) handleDailyTotals(c *gin.Context) {
	now := s.today()
	from := c.DefaultQuery("from", daysBefore(now, stats.WeekDays-1))
	to := c.DefaultQuery("to", stats.DateOf(now))
	for _, d := range []string{from, to} {
		if _, err := stats.ParseDate(d, s.loc); err != nil {
			s.respondError(c, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errBadRequest, d))
			return
		}
	}

	totals, err := s.store.DailyTotals(c.Request.Context(), owner(c), from, to)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if totals == nil {
		totals = []store.DailyTotal{}
	}
	respondSuccess(c, http.StatusOK, totals)
}
