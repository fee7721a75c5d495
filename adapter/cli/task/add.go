package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
)

var (
	addHours      float64
	addDeadline   string
	addImportance int
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a task of your own",
	Long: `Record a self-created task. It counts into your workload and gets
laid out by the scheduler like any assigned item.

Examples:
  taskpilot task add "Prepare demo" --hours 6
  taskpilot task add "Quarterly review" --hours 12 --deadline 2026-09-15 --importance 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LocalStore == nil {
			fmt.Println("Own tasks live in local mode. Unset DATABASE_URL to use the local profile.")
			return nil
		}

		var deadline *time.Time
		if addDeadline != "" {
			parsed, err := time.Parse("2006-01-02", addDeadline)
			if err != nil {
				return fmt.Errorf("invalid deadline, use YYYY-MM-DD: %w", err)
			}
			deadline = &parsed
		}

		id, err := app.LocalStore.AddSelfTask(cmd.Context(), args[0], addHours, deadline, addImportance)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}
		fmt.Printf("Added task %d: %s (%.1fh)\n", id, args[0], addHours)
		return nil
	},
}

func init() {
	addCmd.Flags().Float64Var(&addHours, "hours", 0, "estimated hours (0 means no estimate)")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "deadline (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&addImportance, "importance", 0, "importance 1..10 (0 means unset)")
}
