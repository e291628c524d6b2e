package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/imkarma/taskboard/internal/task"
	"github.com/imkarma/taskboard/internal/view"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick status overview",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	ov, err := fetchOverview(cmd.Context(), cl)
	if err != nil {
		return err
	}
	tasks, stats, categories := ov.tasks, ov.stats, ov.categories

	if jsonOut {
		return printJSON(map[string]any{
			"store":      cl.BaseURL(),
			"stats":      stats,
			"categories": categories,
		})
	}

	fmt.Printf("%sStore:%s %s\n", colorBold, colorReset, cl.BaseURL())
	if len(tasks) == 0 {
		fmt.Printf("No tasks. Run: %s\n", colorize(colorCyan, `taskboard add "title" -d "description"`))
		return nil
	}

	fmt.Printf("%sTasks: %d total%s\n", colorBold, len(tasks), colorReset)
	// Missing stats omit the panel.
	metrics := view.ProjectStats(stats)
	for i := 1; i < len(metrics); i++ {
		fmt.Printf("  %-17s %s\n", metrics[i].Label+":", metrics[i].Value)
	}
	if len(categories) > 0 {
		fmt.Printf("  %-17s %d\n", "Categories:", len(categories))
	}

	// Tasks that need attention.
	now := time.Now()
	today := task.NewDate(now)
	var overdue []task.Task
	for _, t := range tasks {
		if t.Status != task.StatusCompleted && !t.Deadline.IsZero() && t.Deadline.Before(today.Time) {
			overdue = append(overdue, t)
		}
	}
	if len(overdue) > 0 {
		fmt.Printf("\n%s⚠  Overdue:%s\n", colorRed+colorBold, colorReset)
		for _, t := range overdue {
			fmt.Printf("  %s#%s%s: %s (%s)\n", colorYellow, t.ID, colorReset, t.Title, dueText(t, now))
		}
	}

	return nil
}

type overview struct {
	tasks      []task.Task
	stats      *task.Stats
	categories []string
}

// fetchOverview loads tasks, stats and categories concurrently. Only a task
// list failure is an error; stats and categories are best effort.
func fetchOverview(ctx context.Context, cl view.Store) (*overview, error) {
	var ov overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.tasks, err = cl.ListTasks(ctx, task.Filter{})
		return err
	})
	g.Go(func() error {
		stats, err := cl.GetStats(ctx)
		if err != nil {
			logger.Debug("stats unavailable", "error", err)
			return nil
		}
		ov.stats = stats
		return nil
	})
	g.Go(func() error {
		categories, err := cl.GetCategories(ctx)
		if err != nil {
			logger.Debug("categories unavailable", "error", err)
			return nil
		}
		ov.categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}
