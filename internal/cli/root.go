// Package cli implements the taskboard command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/config"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool

	// Populated by initConfig before any command runs.
	cfg    *config.Config
	cfgErr error
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Task list client for a remote task store",
	Long: `taskboard keeps a filtered view of the tasks held by a remote store.

Quick start:
  taskboard init              Write .taskboard/config.yaml
  taskboard serve             Run the bundled store on :5000
  taskboard ui                Open the interactive task view
  taskboard add "Buy milk" -d "2 liters"`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .taskboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

// initConfig loads .env, then the config file and TASKBOARD_* overrides.
func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(taskboardPath("config.yaml")); err == nil {
			path = taskboardPath("config.yaml")
		}
	}

	cfg, cfgErr = config.Load(path)
	if cfgErr != nil {
		return
	}

	logger = newLogger(os.Stderr, cfg.Log.Level)
	if path != "" {
		logger.Debug("using config file", "path", path)
	}
}

// loadedConfig returns the config read by initConfig.
func loadedConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// newLogger builds a text logger at level; --verbose forces debug.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
