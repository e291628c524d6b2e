package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/tui"
	"github.com/imkarma/taskboard/internal/view"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive task view",
	Long:  "Opens an interactive view of the store's tasks with filters, search, statistics, task creation with category prediction, deletion and export.",
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	// Logs go to a file so they never corrupt the screen.
	uiLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		uiLogger = newLogger(f, c.Log.Level)
	}

	cl, err := newClient(c, uiLogger)
	if err != nil {
		return err
	}

	state := view.New(cl, view.Options{
		ExportDir: c.Export.Dir,
		Logger:    uiLogger,
	})
	defer state.Close()

	p := tea.NewProgram(tui.New(state), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
