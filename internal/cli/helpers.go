package cli

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/imkarma/taskboard/internal/client"
	"github.com/imkarma/taskboard/internal/config"
	"github.com/imkarma/taskboard/internal/task"
)

const taskboardDirName = ".taskboard"

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// taskboardPath returns the path to a file inside .taskboard/.
func taskboardPath(parts ...string) string {
	elems := append([]string{taskboardDirName}, parts...)
	return filepath.Join(elems...)
}

// storeClient builds a store client from the loaded config, logging to the
// CLI logger.
func storeClient() (*client.Client, *config.Config, error) {
	c, err := loadedConfig()
	if err != nil {
		return nil, nil, err
	}
	cl, err := newClient(c, logger)
	if err != nil {
		return nil, nil, err
	}
	return cl, c, nil
}

func newClient(c *config.Config, l *slog.Logger) (*client.Client, error) {
	timeout := time.Duration(c.API.TimeoutSec) * time.Second
	return client.New(c.API.BaseURL, timeout, client.WithLogger(l))
}

// colorize wraps s in code when stdout is a terminal.
func colorize(code, s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return code + s + colorReset
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// terminalWidth returns the stdout width, or 100 when it is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	return w
}

// truncate shortens s to n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// statusColor picks the colour for a task status.
func statusColor(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return colorGreen
	case task.StatusInProgress:
		return colorBlue
	}
	return colorDim
}

// priorityColor picks the colour for a task priority.
func priorityColor(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return colorRed
	case task.PriorityMedium:
		return colorYellow
	}
	return colorDim
}

// dueText describes a deadline relative to today for plain output.
func dueText(t task.Task, now time.Time) string {
	if t.Deadline.IsZero() {
		return ""
	}
	today := task.NewDate(now)
	if t.Status == task.StatusCompleted {
		return t.Deadline.String()
	}
	switch {
	case t.Deadline.Equal(today.Time):
		return colorize(colorYellow, "due today")
	case t.Deadline.Before(today.Time):
		return colorize(colorRed, "overdue "+humanize.RelTime(t.Deadline.Time, today.Time, "ago", "from now"))
	}
	return "due " + humanize.RelTime(t.Deadline.Time, today.Time, "ago", "from now")
}

// pad right-pads s to width visible columns, ignoring ANSI codes.
func pad(s string, width int) string {
	visible := len([]rune(stripANSI(s)))
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
