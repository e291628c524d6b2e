package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/task"
	"github.com/imkarma/taskboard/internal/view"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If popup is active, handle popup keys first.
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw := m.width - 4
		vh := m.height - 12
		if vw < 20 {
			vw = 20
		}
		if vh < 5 {
			vh = 5
		}
		m.list.Width = vw
		m.list.Height = vh
		m.detail.Width = vw
		m.detail.Height = m.height - 6
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// Clear old notices.
		if n := m.state.Notice(); n.Text != "" && time.Since(n.At) > noticeTTL {
			m.state.ClearNotice()
		}
		return m, tickCmd()
	}

	// Everything else is a request result for the view state or a widget
	// message, such as a cursor blink, for the focused input.
	cmds := []tea.Cmd{m.state.Update(msg), m.updateFocusedInput(msg)}
	m.clampCursor()
	m.syncDraftInputs()
	// The form closes once the create it submitted has succeeded.
	if m.submitted && !m.state.Creating() {
		m.submitted = false
		if m.popup == popupDraft && m.state.Draft().IsZero() {
			m.popup = popupNone
		}
	}
	if m.screen == screenDetail && m.state.Task(m.detailID) == nil {
		m.screen = screenList
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.popup {
	case popupSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case popupDraft:
		m.draftInputs[m.draftFocus], cmd = m.draftInputs[m.draftFocus].Update(msg)
	}
	return cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.screen == screenList || msg.String() == "ctrl+c" {
			m.quitting = true
			m.state.Close()
			return m, tea.Quit
		}
		// From sub-screens, go back.
		return m.goBack()

	case "esc":
		return m.goBack()
	}

	switch m.screen {
	case screenList:
		return m.handleListKey(msg)
	case screenDetail:
		return m.handleDetailKey(msg)
	}

	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	if m.screen == screenDetail {
		m.screen = screenList
		m.detailID = ""
	}
	return m, nil
}

// --- List screen keys ---

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	// Navigation.
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.state.Tasks()) - 1
		m.clampCursor()

	// Drill-down into task.
	case "enter", " ":
		if t := m.selectedTask(); t != nil {
			m.detailID = t.ID
			m.screen = screenDetail
			m.detail.SetContent(renderDetail(*t, time.Now()))
			m.detail.GotoTop()
		}

	// Filters. Edits are local until applied.
	case "/":
		m.popup = popupSearch
		m.searchInput.SetValue(m.state.Filter().Search)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "s":
		m.state.CycleFilter(view.DimStatus, 1)
	case "S":
		m.state.CycleFilter(view.DimStatus, -1)
	case "p":
		m.state.CycleFilter(view.DimPriority, 1)
	case "P":
		m.state.CycleFilter(view.DimPriority, -1)
	case "c":
		m.state.CycleFilter(view.DimCategory, 1)
	case "C":
		m.state.CycleFilter(view.DimCategory, -1)
	case "a", "R":
		return m, m.state.Apply()
	case "x":
		return m, m.state.Reset()

	// Create.
	case "n", "ctrl+n":
		m.popup = popupDraft
		m.syncDraftInputs()
		return m, m.focusDraftInput(inputTitle)

	// Delete.
	case "d":
		if t := m.selectedTask(); t != nil {
			m.deleteID = t.ID
			m.popup = popupConfirmDelete
		}

	// Export.
	case "e":
		m.popup = popupExport

	// Copy.
	case "y":
		if t := m.selectedTask(); t != nil {
			m.copyTask(*t)
		}
	}

	return m, nil
}

// --- Detail screen keys ---

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.state.Task(m.detailID)
	if t == nil {
		m.screen = screenList
		return m, nil
	}

	switch msg.String() {
	case "d":
		m.deleteID = t.ID
		m.popup = popupConfirmDelete
		return m, nil
	case "y":
		m.copyTask(*t)
		return m, nil
	case "backspace":
		return m.goBack()
	}

	// Forward to viewport for scrolling.
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.popup {
	case popupSearch:
		return m.handleSearchPopup(msg)
	case popupDraft:
		return m.handleDraftPopup(msg)
	case popupConfirmDelete:
		return m.handleConfirmDeletePopup(msg)
	case popupExport:
		return m.handleExportPopup(msg)
	}
	return m, nil
}

func (m Model) handleSearchPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.state.SetSearch(m.searchInput.Value())
		m.popup = popupNone
		m.searchInput.Blur()
		return m, m.state.Apply()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleDraftPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// The draft is kept so the form can be reopened.
		m.popup = popupNone
		m.draftInputs[m.draftFocus].Blur()
		return m, nil
	case "tab", "down":
		return m, m.focusDraftInput((m.draftFocus + 1) % numInputs)
	case "shift+tab", "up":
		return m, m.focusDraftInput((m.draftFocus + numInputs - 1) % numInputs)
	case "ctrl+s":
		m.state.CycleDraft(view.FieldStatus)
		return m, nil
	case "ctrl+p":
		m.state.CycleDraft(view.FieldPriority)
		return m, nil
	case "ctrl+t":
		return m, m.state.Predict()
	case "ctrl+u":
		m.state.DiscardDraft()
		m.syncDraftInputs()
		return m, nil
	case "enter":
		cmd := m.state.Create()
		m.submitted = cmd != nil
		return m, cmd
	}

	// Forward to the active text input and mirror it into the draft.
	var cmd tea.Cmd
	m.draftInputs[m.draftFocus], cmd = m.draftInputs[m.draftFocus].Update(msg)
	m.state.SetDraft(inputFields[m.draftFocus], m.draftInputs[m.draftFocus].Value())
	return m, cmd
}

func (m Model) handleConfirmDeletePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.popup = popupNone
		return m, m.state.Delete(m.deleteID)
	case "n", "esc":
		m.popup = popupNone
		return m, nil
	}
	return m, nil
}

func (m Model) handleExportPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		m.popup = popupNone
		return m, m.state.Export(export.FormatCSV)
	case "j":
		m.popup = popupNone
		return m, m.state.Export(export.FormatJSON)
	case "esc", "q":
		m.popup = popupNone
		return m, nil
	}
	return m, nil
}

func (m Model) copyTask(t task.Task) {
	text := fmt.Sprintf("#%s %s: %s", t.ID, t.Title, t.Description)
	if err := clipboard.WriteAll(text); err != nil {
		m.state.Warn("Copy failed: " + err.Error())
		return
	}
	m.state.Inform("Copied task #" + string(t.ID))
}
