// Package server exposes the store and reports over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/store"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	AllowOrigins []string
	// Location decides calendar dates for reports. Defaults to time.Local.
	Location *time.Location
	// Now overrides the clock in tests.
	Now func() time.Time
}

type Server struct {
	engine *gin.Engine
	store  *store.Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(st *store.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	srv := &Server{
		engine: router,
		store:  st,
		logger: logger,
		loc:    opts.Location,
		now:    opts.Now,
	}
	srv.registerRoutes()
	return srv
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		user := api.Group("/users/:userId")
		{
			user.GET("/tasks", s.handleListTasks)
			user.POST("/tasks", s.handleCreateTask)
			user.GET("/tasks/:id", s.handleGetTask)
			user.PUT("/tasks/:id", s.handleUpdateTask)
			user.DELETE("/tasks/:id", s.handleDeleteTask)

			user.GET("/records", s.handleListRecords)
			user.POST("/records", s.handleCreateRecord)
			user.GET("/records/:id", s.handleGetRecord)
			user.DELETE("/records/:id", s.handleDeleteRecord)

			user.GET("/reminders", s.handleListReminders)
			user.POST("/reminders", s.handleCreateReminder)
			user.DELETE("/reminders", s.handleDeleteRemindersByTask)
			user.GET("/reminders/due", s.handleDueReminders)
			user.PUT("/reminders/:id", s.handleUpdateReminder)
			user.DELETE("/reminders/:id", s.handleDeleteReminder)

			stats := user.Group("/stats")
			{
				stats.GET("/weekly", s.handleWeekly)
				stats.GET("/tasks", s.handleTaskTotals)
				stats.GET("/today", s.handleToday)
				stats.GET("/calendar", s.handleCalendar)
				stats.GET("/daily", s.handleDailyTotals)
			}
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "endpoint not found"})
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func owner(c *gin.Context) string {
	return strings.TrimSpace(c.Param("userId"))
}

// today returns the server clock in the report location.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalid), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// respondError logs the error and writes the failure envelope. Internal
// errors are reported with a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
