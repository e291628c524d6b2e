package server

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/store"
	"github.com/imkarma/taskboard/internal/task"
)

// csvHeader is the column order of CSV exports.
var csvHeader = []string{"id", "title", "description", "status", "priority", "deadline", "category"}

func (s *Server) handleListTasks(c *gin.Context) {
	f := task.Filter{
		Status:   task.Status(c.Query("status")),
		Priority: task.Priority(c.Query("priority")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	tasks, err := s.store.ListTasks(f)
	if err != nil {
		s.internalError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var d task.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.store.CreateTask(d)
	if err != nil {
		s.internalError(c, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.store.GetTask(task.ID(c.Param("id")))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.internalError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id := task.ID(c.Param("id"))

	err := s.store.DeleteTask(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.internalError(c, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.store.Stats(s.now(), s.dueSoonDays)
	if err != nil {
		s.internalError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleCategories(c *gin.Context) {
	categories, err := s.store.Categories()
	if err != nil {
		s.internalError(c, "categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) handlePredictCategory(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}

	category, err := s.predictor.Predict(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		s.logger.Warn("prediction failed", "predictor", s.predictor.Name(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predicted_category": category})
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := s.store.AllTasks()
	if err != nil {
		s.internalError(c, "export", err)
		return
	}

	if format == export.FormatJSON {
		c.JSON(http.StatusOK, tasks)
		return
	}

	data, err := encodeCSV(tasks)
	if err != nil {
		s.internalError(c, "export", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error(op+" failed", "error", err, "request_id", c.GetString("request_id"))
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

// encodeCSV writes tasks with a header row in csvHeader order.
func encodeCSV(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		record := []string{
			string(t.ID), t.Title, t.Description,
			string(t.Status), string(t.Priority), t.Deadline.String(), t.Category,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
