package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/taskboard/internal/task"
	"github.com/imkarma/taskboard/internal/view"
)

// screen represents which top-level screen is shown.
type screen int

const (
	screenList   screen = iota // Task list with filters and stats (main)
	screenDetail               // Single task drill-down
)

// popup represents an active modal overlay.
type popup int

const (
	popupNone          popup = iota
	popupSearch              // Edit search text
	popupDraft               // Create task form
	popupConfirmDelete       // Confirm deleting the selected task
	popupExport              // Pick an export format
)

// Draft form inputs, in tab order.
const (
	inputTitle = iota
	inputDescription
	inputDeadline
	numInputs
)

var inputFields = [numInputs]view.Field{
	view.FieldTitle,
	view.FieldDescription,
	view.FieldDeadline,
}

// noticeTTL is how long a notice stays in the status line.
const noticeTTL = 5 * time.Second

// Model is the top-level bubbletea model. All task data lives in the shared
// view.State; the model only holds widgets and navigation.
type Model struct {
	state  *view.State
	width  int
	height int

	screen screen
	popup  popup

	cursor   int
	detailID task.ID

	searchInput textinput.Model
	draftInputs [numInputs]textinput.Model
	draftFocus  int
	submitted   bool

	spinner  spinner.Model
	list     viewport.Model
	detail   viewport.Model
	deleteID task.ID

	quitting bool
}

// New creates a new TUI model over state.
func New(state *view.State) Model {
	si := textinput.New()
	si.Placeholder = "Search title or description..."
	si.CharLimit = 200
	si.Width = 50

	var inputs [numInputs]textinput.Model
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 50
	}
	inputs[inputTitle].Placeholder = "Title (required)..."
	inputs[inputTitle].CharLimit = 200
	inputs[inputDescription].Placeholder = "Description (required)..."
	inputs[inputDescription].CharLimit = 1000
	inputs[inputDeadline].Placeholder = "YYYY-MM-DD (optional)"
	inputs[inputDeadline].CharLimit = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		state:       state,
		screen:      screenList,
		searchInput: si,
		draftInputs: inputs,
		spinner:     sp,
		list:        viewport.New(80, 20),
		detail:      viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.state.Init(), m.spinner.Tick, tickCmd())
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) clampCursor() {
	n := len(m.state.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selectedTask() *task.Task {
	tasks := m.state.Tasks()
	if m.cursor < len(tasks) {
		t := tasks[m.cursor]
		return &t
	}
	return nil
}

// syncDraftInputs pulls draft values owned by the state back into the form,
// e.g. after a successful create clears the draft.
func (m *Model) syncDraftInputs() {
	d := m.state.Draft()
	values := [numInputs]string{d.Title, d.Description, d.Deadline}
	for i := range m.draftInputs {
		if m.draftInputs[i].Value() != values[i] {
			m.draftInputs[i].SetValue(values[i])
		}
	}
}

func (m *Model) focusDraftInput(i int) tea.Cmd {
	for j := range m.draftInputs {
		m.draftInputs[j].Blur()
	}
	m.draftFocus = i
	m.draftInputs[i].Focus()
	return textinput.Blink
}
