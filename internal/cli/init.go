package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/config"
	"github.com/imkarma/taskboard/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize taskboard in the current directory",
	Long:  "Creates a .taskboard/ directory with a default config and an empty store database.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check if already initialized.
	if _, err := os.Stat(taskboardDirName); err == nil {
		return fmt.Errorf("taskboard already initialized in this directory (%s/ exists)", taskboardDirName)
	}

	if err := os.MkdirAll(taskboardDirName, 0755); err != nil {
		return fmt.Errorf("create %s: %w", taskboardDirName, err)
	}

	// Write default config.
	c := config.DefaultConfig()
	c.Log.File = taskboardPath("taskboard.log")
	cfgPath := taskboardPath("config.yaml")
	if err := config.Save(cfgPath, c); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Create database by opening store (migration runs automatically).
	if err := os.MkdirAll(filepath.Dir(c.Server.DBPath), 0755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	st, err := store.New(c.Server.DBPath)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	st.Close()

	fmt.Printf("Initialized taskboard in %s/\n", taskboardDirName)
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s to point api.base_url at your store\n", cfgPath)
	fmt.Println("  2. Or run the bundled store: taskboard serve")
	fmt.Println("  3. Run: taskboard ui")

	return nil
}
