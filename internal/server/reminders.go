package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/habitr/internal/reminder"
	"github.com/sadopc/habitr/internal/store"
)

func (s *Server) handleListReminders(c *gin.Context) {
	reminders, err := s.store.ListReminders(c.Request.Context(), owner(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if reminders == nil {
		reminders = []store.Reminder{}
	}
	respondSuccess(c, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(c *gin.Context) {
	var req store.ReminderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rem, err := s.store.CreateReminder(c.Request.Context(), owner(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, rem)
}

func (s *Server) handleUpdateReminder(c *gin.Context) {
	var req store.ReminderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rem, err := s.store.UpdateReminder(c.Request.Context(), owner(c), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rem)
}

func (s *Server) handleDeleteReminder(c *gin.Context) {
	if err := s.store.DeleteReminder(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleDeleteRemindersByTask clears the reminders of ?taskId=.
func (s *Server) handleDeleteRemindersByTask(c *gin.Context) {
	taskID := c.Query("taskId")
	if taskID == "" {
		s.respondError(c, fmt.Errorf("%w: taskId is required", errBadRequest))
		return
	}
	n, err := s.store.DeleteRemindersByTask(c.Request.Context(), owner(c), taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": n})
}

// handleDueReminders lists reminders firing now, or at ?at= (RFC 3339).
func (s *Server) handleDueReminders(c *gin.Context) {
	at := s.today()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.respondError(c, fmt.Errorf("%w: at must be RFC 3339", errBadRequest))
			return
		}
		at = t.In(s.loc)
	}

	reminders, err := s.store.ListReminders(c.Request.Context(), owner(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	due := reminder.Due(reminders, at)
	if due == nil {
		due = []store.Reminder{}
	}
	respondSuccess(c, http.StatusOK, due)
}
