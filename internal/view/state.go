// Package view owns the client-side task view: the task collection for the
// active filter, the filter and draft being edited, derived stats and
// categories, and the flags that gate in-flight requests.
//
// Every entry point is a synchronous state transition that may return a
// tea.Cmd. The command performs the request; its result comes back through
// Update, which is the only place fetched data is reconciled into the state.
package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/task"
)

// Store is the remote task store as seen by the view.
type Store interface {
	ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error)
	GetStats(ctx context.Context) (*task.Stats, error)
	GetCategories(ctx context.Context) ([]string, error)
	CreateTask(ctx context.Context, d task.Draft) (*task.Task, error)
	DeleteTask(ctx context.Context, id task.ID) error
	PredictCategory(ctx context.Context, title, description string) (string, error)
	Export(ctx context.Context, format export.Format) ([]byte, error)
}

// Dimension names one filter dimension.
type Dimension int

const (
	DimStatus Dimension = iota
	DimPriority
	DimCategory
)

// Field names one draft field.
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldStatus
	FieldPriority
	FieldDeadline
	FieldCategory
)

// Notice is the last user-facing message.
type Notice struct {
	Text string
	Err  bool
	At   time.Time
}

// Options configures a State.
type Options struct {
	ExportDir string
	Logger    *slog.Logger
	Now       func() time.Time
}

// State is the task view. It is not safe for concurrent use; bubbletea calls
// Update serially, and the commands it hands out never touch the state.
type State struct {
	store     Store
	exportDir string
	logger    *slog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	tasks      []task.Task
	filter     task.Filter
	draft      task.Draft
	stats      *task.Stats
	categories []string

	loading    bool
	listGen    uint64
	creating   bool
	predicting bool
	draftGen   uint64

	notice     Notice
	lastExport string
}

// New creates a view over store. Nothing is fetched until Init runs.
func New(store Store, opts Options) *State {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &State{
		store:     store,
		exportDir: opts.ExportDir,
		logger:    opts.Logger,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
		tasks:     []task.Task{},
	}
}

// Close cancels every request still in flight.
func (s *State) Close() {
	s.cancel()
}

// --- Accessors ---

func (s *State) Tasks() []task.Task         { return s.tasks }
func (s *State) Filter() task.Filter        { return s.filter }
func (s *State) Draft() task.Draft          { return s.draft }
func (s *State) Stats() *task.Stats         { return s.stats }
func (s *State) Categories() []string       { return s.categories }
func (s *State) Loading() bool              { return s.loading }
func (s *State) Predicting() bool           { return s.predicting }
func (s *State) Creating() bool             { return s.creating }
func (s *State) Notice() Notice             { return s.notice }
func (s *State) LastExport() string         { return s.lastExport }
func (s *State) Query() string              { return task.Describe(s.filter) }
func (s *State) Heading() string            { return fmt.Sprintf("Tasks (%d)", len(s.tasks)) }
func (s *State) StatsPanel() []Metric       { return ProjectStats(s.stats) }
func (s *State) Task(id task.ID) *task.Task { return findTask(s.tasks, id) }

// ClearNotice drops the current notice.
func (s *State) ClearNotice() {
	s.notice = Notice{}
}

// --- Entry points ---

// Init issues the initial list, stats and categories requests together.
func (s *State) Init() tea.Cmd {
	return tea.Batch(s.listTasks(true), s.fetchStats(), s.fetchCategories())
}

// SetSearch edits the search text. Nothing is fetched until Apply.
func (s *State) SetSearch(text string) {
	s.filter.Search = text
}

// SetFilter edits one filter dimension. Nothing is fetched until Apply.
func (s *State) SetFilter(dim Dimension, value string) {
	switch dim {
	case DimStatus:
		s.filter.Status = task.Status(value)
	case DimPriority:
		s.filter.Priority = task.Priority(value)
	case DimCategory:
		s.filter.Category = value
	}
}

// FilterOptions returns the choices for a dimension, "" (all) first.
func (s *State) FilterOptions(dim Dimension) []string {
	opts := []string{""}
	switch dim {
	case DimStatus:
		for _, st := range task.Statuses {
			opts = append(opts, string(st))
		}
	case DimPriority:
		for _, p := range task.Priorities {
			opts = append(opts, string(p))
		}
	case DimCategory:
		opts = append(opts, s.categories...)
	}
	return opts
}

// CycleFilter moves a dimension to the next (delta > 0) or previous option.
func (s *State) CycleFilter(dim Dimension, delta int) {
	var current string
	switch dim {
	case DimStatus:
		current = string(s.filter.Status)
	case DimPriority:
		current = string(s.filter.Priority)
	case DimCategory:
		current = s.filter.Category
	}
	s.SetFilter(dim, cycle(s.FilterOptions(dim), current, delta))
}

// Apply fetches the list for the current filter and search.
func (s *State) Apply() tea.Cmd {
	return s.listTasks(false)
}

// Reset clears every filter dimension and the search, then applies.
func (s *State) Reset() tea.Cmd {
	s.filter = task.Filter{}
	return s.Apply()
}

// SetDraft edits one field of the draft.
func (s *State) SetDraft(field Field, value string) {
	switch field {
	case FieldTitle:
		s.draft.Title = value
	case FieldDescription:
		s.draft.Description = value
	case FieldStatus:
		s.draft.Status = value
	case FieldPriority:
		s.draft.Priority = value
	case FieldDeadline:
		s.draft.Deadline = value
	case FieldCategory:
		s.draft.Category = value
	}
}

// CycleDraft steps the draft's status or priority through its options.
func (s *State) CycleDraft(field Field) {
	switch field {
	case FieldStatus:
		s.draft.Status = cycle(s.FilterOptions(DimStatus), s.draft.Status, 1)
	case FieldPriority:
		s.draft.Priority = cycle(s.FilterOptions(DimPriority), s.draft.Priority, 1)
	}
}

// DiscardDraft empties the draft without creating anything.
func (s *State) DiscardDraft() {
	s.draft = task.Draft{}
	s.draftGen++
}

// Create submits the draft. Title and description are checked locally first;
// an invalid draft is never sent.
func (s *State) Create() tea.Cmd {
	if err := s.draft.Validate(); err != nil {
		s.Warn(validationText(err))
		return nil
	}
	s.creating = true
	store, ctx, d := s.store, s.ctx, s.draft
	return func() tea.Msg {
		created, err := store.CreateTask(ctx, d)
		return taskCreatedMsg{task: created, err: err}
	}
}

// Delete removes a task. The request is issued even when id is not in the
// current view; the store decides whether that is an error.
func (s *State) Delete(id task.ID) tea.Cmd {
	store, ctx := s.store, s.ctx
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: store.DeleteTask(ctx, id)}
	}
}

// Predict asks the store for a category for the draft. It is rejected while
// another prediction is outstanding and when title or description is empty.
func (s *State) Predict() tea.Cmd {
	if s.predicting {
		s.Warn("Prediction already in progress")
		return nil
	}
	if !s.draft.HasText() {
		s.Warn("Enter title and description for prediction")
		return nil
	}
	s.predicting = true
	store, ctx, gen := s.store, s.ctx, s.draftGen
	title, desc := s.draft.Title, s.draft.Description
	return func() tea.Msg {
		category, err := store.PredictCategory(ctx, title, desc)
		return categoryPredictedMsg{draftGen: gen, category: category, err: err}
	}
}

// Export downloads every task in format, regardless of the active filter, and
// writes the file into the export directory.
func (s *State) Export(format export.Format) tea.Cmd {
	store, ctx, dir := s.store, s.ctx, s.exportDir
	return func() tea.Msg {
		payload, err := store.Export(ctx, format)
		if err != nil {
			return exportDoneMsg{format: format, err: err}
		}
		f, err := export.Encode(format, payload)
		if err != nil {
			return exportDoneMsg{format: format, err: err}
		}
		path, err := export.Save(dir, f)
		return exportDoneMsg{format: format, file: f, path: path, err: err}
	}
}

// Update reconciles a request result into the state. It returns a follow-up
// command when the result triggers a settle.
func (s *State) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.gen != s.listGen {
			s.logger.Debug("dropping stale task list", "gen", msg.gen, "latest", s.listGen)
			return nil
		}
		s.loading = false
		if msg.err != nil {
			if msg.initial {
				s.tasks = []task.Task{}
			}
			s.fail("Failed to load tasks", msg.err)
			return nil
		}
		s.tasks = msg.tasks
		return nil

	case statsLoadedMsg:
		if msg.err != nil {
			s.logger.Debug("stats unavailable", "error", msg.err)
			return nil
		}
		s.stats = msg.stats
		return nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			s.logger.Debug("categories unavailable", "error", msg.err)
			return nil
		}
		s.categories = msg.categories
		return nil

	case taskCreatedMsg:
		s.creating = false
		if msg.err != nil {
			s.fail("Failed to add task", msg.err)
			return nil
		}
		s.DiscardDraft()
		s.Inform("Added task #" + string(msg.task.ID) + ": " + msg.task.Title)
		return s.settle()

	case taskDeletedMsg:
		if msg.err != nil {
			s.fail("Failed to delete task", msg.err)
			return nil
		}
		s.Inform("Deleted task #" + string(msg.id))
		return s.settle()

	case categoryPredictedMsg:
		s.predicting = false
		if msg.err != nil {
			s.fail("Prediction failed.", msg.err)
			return nil
		}
		if msg.draftGen != s.draftGen {
			s.logger.Debug("dropping prediction for a discarded draft")
			return nil
		}
		s.draft.Category = msg.category
		s.Inform("Predicted category: " + msg.category)
		return nil

	case exportDoneMsg:
		if msg.err != nil {
			s.fail("Export failed", msg.err)
			return nil
		}
		s.lastExport = msg.path
		s.Inform("Exported " + msg.file.Name + " to " + msg.path)
		return nil
	}
	return nil
}

// settle refreshes the list, stats and categories after a mutation. The list
// uses the filter as it is now, not as it was when the mutation started.
func (s *State) settle() tea.Cmd {
	return tea.Batch(s.listTasks(false), s.fetchStats(), s.fetchCategories())
}

// listTasks marks the view loading and issues a list request stamped with a
// new generation. Only the latest generation's response is applied.
func (s *State) listTasks(initial bool) tea.Cmd {
	s.loading = true
	s.listGen++
	store, ctx, gen, f := s.store, s.ctx, s.listGen, s.filter
	return func() tea.Msg {
		tasks, err := store.ListTasks(ctx, f)
		return tasksLoadedMsg{gen: gen, initial: initial, filter: f, tasks: tasks, err: err}
	}
}

func (s *State) fetchStats() tea.Cmd {
	store, ctx := s.store, s.ctx
	return func() tea.Msg {
		stats, err := store.GetStats(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (s *State) fetchCategories() tea.Cmd {
	store, ctx := s.store, s.ctx
	return func() tea.Msg {
		categories, err := store.GetCategories(ctx)
		return categoriesLoadedMsg{categories: categories, err: err}
	}
}

// Inform sets an informational notice.
func (s *State) Inform(text string) {
	s.notice = Notice{Text: text, At: s.now()}
}

// Warn sets an error notice.
func (s *State) Warn(text string) {
	s.notice = Notice{Text: text, Err: true, At: s.now()}
}

func (s *State) fail(text string, err error) {
	s.logger.Warn(strings.TrimSuffix(text, "."), "error", err)
	s.Warn(text)
}

func validationText(err error) string {
	switch err {
	case task.ErrTitleRequired, task.ErrDescriptionRequired:
		return "Title and description are required"
	}
	return "Invalid task: " + err.Error()
}

func findTask(tasks []task.Task, id task.ID) *task.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

// cycle returns the option delta steps away from current, wrapping around.
// An unknown current value starts from the first option.
func cycle(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(options)
	idx = ((idx+delta)%n + n) % n
	return options[idx]
}
