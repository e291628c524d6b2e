package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/view"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	RunE:  runStats,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories in use",
	RunE:  runCategories,
}

func runStats(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	stats, err := cl.GetStats(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(stats)
	}

	for _, m := range view.ProjectStats(stats) {
		fmt.Printf("  %-17s %s\n", m.Label+":", colorize(colorBold, m.Value))
	}
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	categories, err := cl.GetCategories(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(categories)
	}

	if len(categories) == 0 {
		fmt.Println("No categories yet.")
		return nil
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}
