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

type recordRequest struct {
	TaskID          string    `json:"task_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            string    `json:"date"`
}

func (s *Server) handleListRecords(c *gin.Context) {
	f := store.RecordFilter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		TaskID: c.Query("taskId"),
	}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := stats.ParseDate(d, s.loc); err != nil {
			s.respondError(c, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errBadRequest, d))
			return
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		f.Limit = n
	}

	records, err := s.store.ListRecords(c.Request.Context(), owner(c), f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	respondSuccess(c, http.StatusOK, records)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	rec, err := s.store.GetRecord(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rec)
}

// handleCreateRecord stores a session finished by a client timer. A missing
// date is taken from the end time; a missing duration from the wall-clock span.
func (s *Server) handleCreateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Date == "" && !req.EndTime.IsZero() {
		req.Date = stats.DateOf(req.EndTime.In(s.loc))
	}
	if req.DurationMinutes == 0 && !req.StartTime.IsZero() && !req.EndTime.IsZero() {
		req.DurationMinutes = int(req.EndTime.Sub(req.StartTime) / time.Minute)
	}

	rec, err := s.store.CreateRecord(c.Request.Context(), owner(c), store.Record{
		TaskID:          req.TaskID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Date:            req.Date,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, rec)
}

func (s *Server) handleDeleteRecord(c *gin.Context) {
	if err := s.store.DeleteRecord(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
