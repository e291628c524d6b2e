package view

import (
	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/task"
)

// Result messages delivered back to State.Update by the commands it issues.

type tasksLoadedMsg struct {
	gen     uint64
	initial bool
	filter  task.Filter
	tasks   []task.Task
	err     error
}

type statsLoadedMsg struct {
	stats *task.Stats
	err   error
}

type categoriesLoadedMsg struct {
	categories []string
	err        error
}

type taskCreatedMsg struct {
	task *task.Task
	err  error
}

type taskDeletedMsg struct {
	id  task.ID
	err error
}

type categoryPredictedMsg struct {
	draftGen uint64
	category string
	err      error
}

type exportDoneMsg struct {
	format export.Format
	file   *export.File
	path   string
	err    error
}
