package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/task"
)

var (
	listStatus   string
	listPriority string
	listCategory string
	listSearch   string

	addDescription string
	addStatus      string
	addPriority    string
	addDeadline    string
	addCategory    string
	addPredict     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered",
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm [id...]",
	Short: "Delete tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Status: todo, in_progress, completed")
	listCmd.Flags().StringVar(&listPriority, "priority", "", "Priority: high, medium, low")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive text in title or description")

	addCmd.Flags().StringVarP(&addDescription, "desc", "d", "", "Task description (required)")
	addCmd.Flags().StringVar(&addStatus, "status", "", "Status: todo, in_progress, completed")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority: high, medium, low")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "Deadline as YYYY-MM-DD")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category")
	addCmd.Flags().BoolVar(&addPredict, "predict", false, "Ask the store to predict the category when none is given")
}

func runList(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	f := task.Filter{
		Status:   task.Status(unlessAll(listStatus)),
		Priority: task.Priority(unlessAll(listPriority)),
		Category: unlessAll(listCategory),
		Search:   listSearch,
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("invalid status %q", listStatus)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", listPriority)
	}
	logger.Debug("listing tasks", "query", task.Describe(f))

	tasks, err := cl.ListTasks(cmd.Context(), f)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	fmt.Printf("%s\n", colorize(colorBold, fmt.Sprintf("Tasks (%d)", len(tasks))))
	printTaskTable(tasks, time.Now())
	return nil
}

func printTaskTable(tasks []task.Task, now time.Time) {
	// Give the title whatever the fixed columns leave over.
	titleWidth := terminalWidth() - 6 - 13 - 8 - 14 - 20
	if titleWidth < 20 {
		titleWidth = 20
	}

	for _, t := range tasks {
		id := pad(colorize(colorDim, "#"+string(t.ID)), 6)
		status := pad(colorize(statusColor(t.Status), string(t.Status)), 13)
		priority := pad(colorize(priorityColor(t.Priority), string(t.Priority)), 8)
		category := pad(truncate(t.Category, 12), 14)
		fmt.Println(id + status + priority + category + pad(truncate(t.Title, titleWidth), titleWidth) + "  " + dueText(t, now))
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	d := task.Draft{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Status:      addStatus,
		Priority:    addPriority,
		Deadline:    addDeadline,
		Category:    addCategory,
	}
	if err := d.Validate(); err != nil {
		return err
	}

	if addPredict && d.Category == "" {
		category, err := cl.PredictCategory(cmd.Context(), d.Title, d.Description)
		if err != nil {
			return err
		}
		d.Category = category
		if !jsonOut {
			fmt.Printf("Predicted category: %s\n", colorize(colorCyan, category))
		}
	}

	created, err := cl.CreateTask(cmd.Context(), d)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(created)
	}

	fmt.Printf("Added task #%s: %s\n", created.ID, created.Title)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	for _, id := range args {
		if err := cl.DeleteTask(cmd.Context(), task.ID(id)); err != nil {
			return err
		}
		fmt.Printf("Deleted task #%s\n", id)
	}
	return nil
}

// unlessAll treats the literal "all" as an unset filter dimension.
func unlessAll(v string) string {
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
