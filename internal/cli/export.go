package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/export"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [csv|json]",
	Short: "Download every task as tasks.csv or tasks.json",
	Long:  "Exports the full task list, ignoring filters, into the export directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "o", "", "Output directory (default export.dir from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cl, c, err := storeClient()
	if err != nil {
		return err
	}

	name := "json"
	if len(args) > 0 {
		name = args[0]
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	payload, err := cl.Export(cmd.Context(), format)
	if err != nil {
		return err
	}
	f, err := export.Encode(format, payload)
	if err != nil {
		return err
	}

	dir := exportDir
	if dir == "" {
		dir = c.Export.Dir
	}
	path, err := export.Save(dir, f)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %s to %s\n", f.Name, path)
	return nil
}
