package assign

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
)

var acceptCmd = &cobra.Command{
	Use:   "accept ASSIGNMENT_ID",
	Short: "Accept a pending assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], "accepted", func(ctx context.Context, id int64) error {
			return cli.GetContainer().AssignmentLifecycle.Accept(ctx, id)
		})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject ASSIGNMENT_ID",
	Short: "Reject a pending assignment, freeing its task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], "rejected", func(ctx context.Context, id int64) error {
			return cli.GetContainer().AssignmentLifecycle.Reject(ctx, id)
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete ASSIGNMENT_ID",
	Short: "Mark an accepted assignment completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], "completed", func(ctx context.Context, id int64) error {
			return cli.GetContainer().AssignmentLifecycle.Complete(ctx, id)
		})
	},
}

var rateImportance int

var rateCmd = &cobra.Command{
	Use:   "rate ASSIGNMENT_ID",
	Short: "Record your own importance rating on an assignment",
	Long: `Record the assignee's own 1..10 importance rating. The effective
importance of the item becomes the average of the manager's rating
and this one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], "rated", func(ctx context.Context, id int64) error {
			return cli.GetContainer().AssignmentLifecycle.RateImportance(ctx, id, rateImportance)
		})
	},
}

func init() {
	rateCmd.Flags().IntVar(&rateImportance, "importance", 5, "importance rating 1..10")
}

func runLifecycle(cmd *cobra.Command, rawID, verb string, fn func(context.Context, int64) error) error {
	app := cli.GetContainer()
	if app == nil || app.AssignmentLifecycle == nil {
		fmt.Println("Assignment lifecycle requires a database connection.")
		fmt.Println("Set DATABASE_URL and retry.")
		return nil
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid assignment id %q: %w", rawID, err)
	}
	if err := fn(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to update assignment %d: %w", id, err)
	}
	fmt.Printf("Assignment %d %s.\n", id, verb)
	return nil
}
