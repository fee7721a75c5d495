package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
)

var updatesPerson int64

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Check whether the schedule has gone stale",
	Long: `Report whether open items or unavailable blocks arrived after the
schedule's baseline. Staleness is advisory; regeneration stays your call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.CheckScheduleUpdates == nil {
			fmt.Println("Schedule update checks require storage.")
			return nil
		}

		personID, err := resolvePerson(app, updatesPerson)
		if err != nil {
			return err
		}

		updates, err := app.CheckScheduleUpdates.Handle(cmd.Context(), queries.CheckScheduleUpdatesQuery{PersonID: personID})
		if err != nil {
			return fmt.Errorf("failed to check schedule updates: %w", err)
		}

		if !updates.HasSchedule {
			fmt.Println("No schedule stored yet. Generate one with 'taskpilot schedule generate'.")
			return nil
		}
		if !updates.Stale {
			fmt.Printf("Schedule is current (baseline %s).\n", updates.Baseline.Format("2006-01-02 15:04"))
			return nil
		}

		fmt.Printf("Schedule is stale (baseline %s):\n", updates.Baseline.Format("2006-01-02 15:04"))
		if updates.NewItems > 0 {
			fmt.Printf("  %d new open item(s)\n", updates.NewItems)
		}
		if updates.NewBlocks > 0 {
			fmt.Printf("  %d new unavailable block(s)\n", updates.NewBlocks)
		}
		fmt.Println("\nRegenerate with 'taskpilot schedule generate' when ready.")
		return nil
	},
}

func init() {
	updatesCmd.Flags().Int64Var(&updatesPerson, "person", 0, "person id (defaults to the local profile)")
}
