// Package task defines the records shared by the task store client, the view
// state and the reference store server.
package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID is the store-assigned task identifier. Clients treat it as opaque; on the
// wire it may be a JSON number or a JSON string.
type ID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode task id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer identifiers as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label is the human form used in filter pickers.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case "":
		return "All Status"
	}
	return string(s)
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every valid priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Label is the human form used in filter pickers.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case "":
		return "All Priority"
	}
	return string(p)
}

// Task is one unit of work as returned by the store.
type Task struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Deadline    Date     `json:"deadline"`
	Category    string   `json:"category"`
}

// Draft is a task under construction. It has no ID and mirrors the create form,
// so every field is plain text until Validate accepts it.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline"`
	Category    string `json:"category"`
}

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
)

// HasText reports whether both title and description are filled in.
func (d Draft) HasText() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Description) != ""
}

// IsZero reports whether every field of the draft is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Validate checks the draft before it is sent to the store.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrDescriptionRequired
	}
	if d.Status != "" && !Status(d.Status).Valid() {
		return fmt.Errorf("invalid status %q", d.Status)
	}
	if d.Priority != "" && !Priority(d.Priority).Valid() {
		return fmt.Errorf("invalid priority %q", d.Priority)
	}
	if d.Deadline != "" {
		if _, err := ParseDate(d.Deadline); err != nil {
			return err
		}
	}
	return nil
}

// Filter holds the query dimensions of the task list. An empty field is unset.
type Filter struct {
	Status   Status
	Priority Priority
	Category string
	Search   string
}

// IsZero reports whether no dimension is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Stats are the aggregate counters computed by the store.
type Stats struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	InProgress     int     `json:"in_progress_tasks"`
	Overdue        int     `json:"overdue_tasks"`
	DueSoon        int     `json:"due_soon_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}
