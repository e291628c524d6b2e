// Package server is a reference implementation of the remote task store:
// the JSON-over-HTTP API the taskboard client consumes, backed by SQLite.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imkarma/taskboard/internal/predict"
	"github.com/imkarma/taskboard/internal/store"
)

// RequestIDHeader correlates client requests with server log lines.
const RequestIDHeader = "X-Request-ID"

// Config holds server options.
type Config struct {
	Addr        string
	DueSoonDays int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Server is the task store HTTP server.
type Server struct {
	addr        string
	store       *store.Store
	predictor   predict.Predictor
	dueSoonDays int
	logger      *slog.Logger
	now         func() time.Time
	router      *gin.Engine
}

// New creates a server over st. Routes are registered immediately.
func New(st *store.Store, p predict.Predictor, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:        cfg.Addr,
		store:       st,
		predictor:   p,
		dueSoonDays: cfg.DueSoonDays,
		logger:      cfg.Logger,
		now:         cfg.Now,
		router:      router,
	}
	router.Use(s.requestLogger)

	router.GET("/tasks", s.handleListTasks)
	router.POST("/tasks", s.handleCreateTask)
	router.GET("/tasks/:id", s.handleGetTask)
	router.DELETE("/tasks/:id", s.handleDeleteTask)
	router.GET("/stats", s.handleStats)
	router.GET("/categories", s.handleCategories)
	router.POST("/predict_category", s.handlePredictCategory)
	router.GET("/export", s.handleExport)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting task store", "addr", s.addr, "predictor", s.predictor.Name())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger assigns a request id (reusing the client's when present) and
// logs every request once it completes.
func (s *Server) requestLogger(c *gin.Context) {
	start := time.Now()
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(RequestIDHeader, id)
	c.Set("request_id", id)

	c.Next()

	level := slog.LevelInfo
	if c.Writer.Status() >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
		"request_id", id,
	)
}
