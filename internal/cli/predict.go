package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var predictDescription string

var predictCmd = &cobra.Command{
	Use:   "predict [title]",
	Short: "Ask the store to predict a category",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictDescription, "desc", "d", "", "Task description (required)")
}

func runPredict(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	if strings.TrimSpace(predictDescription) == "" {
		return fmt.Errorf("enter title and description for prediction")
	}

	cl, _, err := storeClient()
	if err != nil {
		return err
	}

	category, err := cl.PredictCategory(cmd.Context(), title, predictDescription)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]string{"predicted_category": category})
	}

	fmt.Printf("Predicted category: %s\n", colorize(colorCyan, category))
	return nil
}
