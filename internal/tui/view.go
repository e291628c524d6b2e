package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/imkarma/taskboard/internal/task"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrWhite     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle     = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle  = lipgloss.NewStyle().Foreground(clrSubtle)
	spinnerStyle = lipgloss.NewStyle().Foreground(clrCyan)

	statCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(clrWhite)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.screen {
	case screenList:
		content = m.viewList()
	case screenDetail:
		content = m.viewDetail()
	}

	// Overlay popup if active.
	if m.popup != popupNone {
		content = m.overlayPopup(content)
	}

	return content
}

// ════════════════════════════════════════════════
// LIST VIEW: filters, stats and the task table
// ════════════════════════════════════════════════

func (m Model) viewList() string {
	var b strings.Builder

	header := titleStyle.Render(m.state.Heading())
	if m.state.Loading() {
		header += " " + m.spinner.View() + dimStyle.Render("Loading tasks...")
	}
	rightHelp := footerKeyStyle.Render("n") + footerDescStyle.Render(" new  ") +
		footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")

	headerLine := header
	if m.width > 0 {
		pad := m.width - lipgloss.Width(header) - lipgloss.Width(rightHelp)
		if pad > 0 {
			headerLine = header + strings.Repeat(" ", pad) + rightHelp
		}
	}
	b.WriteString(headerLine + "\n\n")

	b.WriteString(m.renderFilterBar() + "\n")
	if stats := m.renderStats(); stats != "" {
		b.WriteString(stats + "\n")
	}
	b.WriteString("\n")

	lv := m.list
	lv.SetContent(m.renderRows(time.Now()))
	if m.cursor >= lv.Height {
		lv.SetYOffset(m.cursor - lv.Height + 1)
	}
	b.WriteString(lv.View() + "\n\n")

	b.WriteString(m.renderNotice() + "\n")
	b.WriteString(renderFooter([]struct{ key, desc string }{
		{"j/k", "navigate"},
		{"enter", "open"},
		{"/", "search"},
		{"s/p/c", "filter"},
		{"a", "apply"},
		{"x", "reset"},
		{"d", "delete"},
		{"e", "export"},
		{"y", "copy"},
	}))

	return b.String()
}

func (m Model) renderFilterBar() string {
	f := m.state.Filter()
	category := f.Category
	if category == "" {
		category = "All Categories"
	}
	search := f.Search
	if search == "" {
		search = dimStyle.Render("none")
	}

	parts := []string{
		footerKeyStyle.Render("s") + " " + f.Status.Label(),
		footerKeyStyle.Render("p") + " " + f.Priority.Label(),
		footerKeyStyle.Render("c") + " " + category,
		footerKeyStyle.Render("/") + " " + search,
	}
	return "  " + strings.Join(parts, subtleStyle.Render("  │  "))
}

func (m Model) renderStats() string {
	metrics := m.state.StatsPanel()
	if len(metrics) == 0 {
		return ""
	}
	cards := make([]string, 0, len(metrics))
	for _, mt := range metrics {
		value := lipgloss.NewStyle().Bold(true).Foreground(clrWhite).Render(mt.Value)
		cards = append(cards, statCardStyle.Render(value+"\n"+dimStyle.Render(mt.Label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderRows(now time.Time) string {
	tasks := m.state.Tasks()
	if len(tasks) == 0 {
		return dimStyle.Render("  No tasks found.")
	}

	var b strings.Builder
	for i, t := range tasks {
		b.WriteString(m.renderTaskLine(t, i == m.cursor, now))
		if i < len(tasks)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderTaskLine(t task.Task, selected bool, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = footerKeyStyle.Render("▸ ")
	}

	id := dimStyle.Render(fmt.Sprintf("#%-4s", t.ID))
	title := t.Title
	if selected {
		title = selectedRowStyle.Render(title)
	}

	line := cursor + id + " " + statusIcon(t.Status) + " " + title
	if t.Priority != "" {
		line += " " + priorityStyle(t.Priority).Render("["+string(t.Priority)+"]")
	}
	if t.Category != "" {
		line += " " + lipgloss.NewStyle().Foreground(clrBlue).Render(t.Category)
	}
	if due := dueLabel(t, now); due != "" {
		line += "  " + due
	}
	return line
}

// ════════════════════════════════════════════════
// DETAIL VIEW: single task drill-down
// ════════════════════════════════════════════════

func (m Model) viewDetail() string {
	var b strings.Builder

	t := m.state.Task(m.detailID)
	if t == nil {
		return dimStyle.Render("Task not found.")
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Task #%s", t.ID)) + "\n\n")
	b.WriteString(m.detail.View() + "\n\n")
	b.WriteString(m.renderNotice() + "\n")
	b.WriteString(renderFooter([]struct{ key, desc string }{
		{"j/k", "scroll"},
		{"d", "delete"},
		{"y", "copy"},
		{"esc", "back"},
	}))

	return b.String()
}

// renderDetail is the scrollable body of the detail screen.
func renderDetail(t task.Task, now time.Time) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Title) + "\n\n")
	row := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("-")
		}
		b.WriteString(subtleStyle.Render(fmt.Sprintf("%-10s", label)) + value + "\n")
	}
	row("Status", statusIcon(t.Status)+" "+t.Status.Label())
	if t.Priority != "" {
		row("Priority", priorityStyle(t.Priority).Render(t.Priority.Label()))
	} else {
		row("Priority", "")
	}
	deadline := t.Deadline.String()
	if due := dueLabel(t, now); due != "" {
		deadline += "  " + due
	}
	row("Deadline", deadline)
	row("Category", t.Category)

	b.WriteString("\n" + t.Description + "\n")
	return b.String()
}

// ════════════════════════════════════════════════
// POPUPS
// ════════════════════════════════════════════════

func (m Model) overlayPopup(bg string) string {
	var popup string

	switch m.popup {
	case popupSearch:
		popup = m.viewSearchPopup()
	case popupDraft:
		popup = m.viewDraftPopup()
	case popupConfirmDelete:
		popup = m.viewConfirmDeletePopup()
	case popupExport:
		popup = m.viewExportPopup()
	default:
		return bg
	}

	// Place popup in center of screen.
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return popup
}

func (m Model) viewSearchPopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("Search")
	b.WriteString(title + "\n\n")
	b.WriteString("Matches title or description, case-insensitive.\n\n")
	b.WriteString(m.searchInput.View() + "\n\n")
	b.WriteString(footerDescStyle.Render("enter apply • esc cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewDraftPopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("New Task")
	b.WriteString(title + "\n\n")

	labels := [numInputs]string{"Title:", "Description:", "Deadline:"}
	for i := range m.draftInputs {
		b.WriteString(labels[i] + "\n")
		b.WriteString(m.draftInputs[i].View() + "\n\n")
	}

	d := m.state.Draft()
	status := task.Status(d.Status)
	b.WriteString(fmt.Sprintf("Status:   %s\n", statusIcon(status)+" "+labelOr(status.Label(), d.Status, "todo")))
	priority := task.Priority(d.Priority)
	b.WriteString(fmt.Sprintf("Priority: %s\n", priorityStyle(priority).Render(labelOr(priority.Label(), d.Priority, "none"))))

	category := d.Category
	switch {
	case m.state.Predicting():
		category = m.spinner.View() + dimStyle.Render("Predicting...")
	case category == "":
		category = dimStyle.Render("none")
	default:
		category = lipgloss.NewStyle().Foreground(clrBlue).Render(category)
	}
	b.WriteString(fmt.Sprintf("Category: %s\n\n", category))

	if n := m.state.Notice(); n.Err && n.Text != "" {
		b.WriteString(errorStyle.Render(n.Text) + "\n\n")
	}

	b.WriteString(footerDescStyle.Render("enter create • tab switch • ctrl+s status • ctrl+p priority\nctrl+t predict category • ctrl+u clear • esc close"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewConfirmDeletePopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrRed).Render("Delete Task")
	b.WriteString(title + "\n\n")

	if t := m.state.Task(m.deleteID); t != nil {
		b.WriteString(fmt.Sprintf("#%s %s\n", t.ID, t.Title))
	}
	b.WriteString("This cannot be undone.\n\n")

	b.WriteString(footerKeyStyle.Render("y") + footerDescStyle.Render(" confirm  ") +
		footerKeyStyle.Render("n") + footerDescStyle.Render(" cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewExportPopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("Export Tasks")
	b.WriteString(title + "\n\n")
	b.WriteString("Exports every task, ignoring the current filters.\n")
	if last := m.state.LastExport(); last != "" {
		b.WriteString(dimStyle.Render("Last export: "+last) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(footerKeyStyle.Render("c") + footerDescStyle.Render(" csv  ") +
		footerKeyStyle.Render("j") + footerDescStyle.Render(" json  ") +
		footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = m.width - 12
		if w < 42 {
			w = 42
		}
		if w > 84 {
			w = 84
		}
	}
	return popupStyle.Width(w)
}

// ════════════════════════════════════════════════
// SHARED HELPERS
// ════════════════════════════════════════════════

func (m Model) renderNotice() string {
	n := m.state.Notice()
	if n.Text == "" {
		return ""
	}
	if n.Err {
		return "  " + errorStyle.Render(n.Text)
	}
	return "  " + statusStyle.Render(n.Text)
}

func renderFooter(keys []struct{ key, desc string }) string {
	var parts []string
	for _, k := range keys {
		key := footerKeyStyle.Render(k.key)
		desc := footerDescStyle.Render(k.desc)
		parts = append(parts, key+" "+desc)
	}
	return "  " + strings.Join(parts, "  ")
}

func statusIcon(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return lipgloss.NewStyle().Foreground(clrGreen).Render("✓")
	case task.StatusInProgress:
		return lipgloss.NewStyle().Foreground(clrYellow).Render("●")
	}
	return lipgloss.NewStyle().Foreground(clrSubtle).Render("○")
}

func priorityStyle(p task.Priority) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch p {
	case task.PriorityHigh:
		return st.Foreground(clrRed)
	case task.PriorityMedium:
		return st.Foreground(clrYellow)
	case task.PriorityLow:
		return st.Foreground(clrSubtle)
	}
	return st.Foreground(clrDim)
}

// dueLabel describes the deadline relative to today. Completed tasks and
// tasks without a deadline get no label.
func dueLabel(t task.Task, now time.Time) string {
	if t.Deadline.IsZero() || t.Status == task.StatusCompleted {
		return ""
	}
	today := task.NewDate(now)
	switch {
	case t.Deadline.Equal(today.Time):
		return lipgloss.NewStyle().Foreground(clrYellow).Render("due today")
	case t.Deadline.Before(today.Time):
		return errorStyle.Render("overdue " + humanize.RelTime(t.Deadline.Time, today.Time, "ago", "from now"))
	}
	return dimStyle.Render("due " + humanize.RelTime(t.Deadline.Time, today.Time, "ago", "from now"))
}

// labelOr returns fallback when raw is empty, otherwise the label.
func labelOr(label, raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return label
}
