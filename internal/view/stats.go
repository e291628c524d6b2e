package view

import (
	"strconv"

	"github.com/imkarma/taskboard/internal/task"
)

// Metric is one labelled value in the stats panel.
type Metric struct {
	Label string
	Value string
}

// ProjectStats maps a store stats payload to the panel's metrics, in display
// order. The payload is used as-is; a nil payload yields no panel at all.
func ProjectStats(s *task.Stats) []Metric {
	if s == nil {
		return nil
	}
	return []Metric{
		{Label: "Total", Value: strconv.Itoa(s.Total)},
		{Label: "Completed", Value: strconv.Itoa(s.Completed)},
		{Label: "In Progress", Value: strconv.Itoa(s.InProgress)},
		{Label: "Overdue", Value: strconv.Itoa(s.Overdue)},
		{Label: "Due Soon", Value: strconv.Itoa(s.DueSoon)},
		{Label: "Completion Rate", Value: strconv.FormatFloat(s.CompletionRate, 'f', -1, 64) + "%"},
	}
}
