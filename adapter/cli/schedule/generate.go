package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
	"github.com/taskpilot/taskpilot/internal/app"
)

var (
	generatePerson     int64
	generateKeepLocked bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh schedule from open work",
	Long: `Run the scheduler over all open items and store the result as the
person's latest schedule, replacing any previous one. Rows pinned with
'schedule lock' survive regeneration when --keep-locked is set.

Examples:
  taskpilot schedule generate
  taskpilot schedule generate --person 3 --keep-locked`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.GenerateSchedule == nil {
			fmt.Println("Scheduling requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, generatePerson)
		if err != nil {
			return err
		}

		result, err := app.GenerateSchedule.Handle(cmd.Context(), commands.GenerateScheduleCommand{
			PersonID:   personID,
			Today:      time.Now(),
			KeepLocked: generateKeepLocked,
		})
		if err != nil {
			return fmt.Errorf("failed to generate schedule: %w", err)
		}

		built := result.Built
		fmt.Printf("Schedule %s: %s to %s, %d workdays, %d entries\n",
			result.ScheduleID,
			built.Start.Format("2006-01-02"),
			built.End.Format("2006-01-02"),
			len(built.Workdays),
			len(built.Entries),
		)

		if len(built.Outcomes) > 0 {
			fmt.Println(strings.Repeat("=", 60))
			for _, o := range built.Outcomes {
				line := fmt.Sprintf("  %-30s %5.1fh of %5.1fh (%.0f%%)",
					o.Name, o.ScheduledHours, o.EstimatedHours, o.Progress)
				if o.Risk != nil {
					line += fmt.Sprintf("  risk: %s", o.Risk.Level)
				}
				fmt.Println(line)
			}
		}
		if built.SkippedMalformed > 0 {
			fmt.Printf("\nNote: %d malformed unavailable block(s) were skipped.\n", built.SkippedMalformed)
		}
		fmt.Println("\nReview with 'taskpilot schedule show', then 'taskpilot schedule accept'.")
		return nil
	},
}

func init() {
	generateCmd.Flags().Int64Var(&generatePerson, "person", 0, "person id (defaults to the local profile)")
	generateCmd.Flags().BoolVar(&generateKeepLocked, "keep-locked", false, "carry locked rows of the previous schedule")
}

// resolvePerson defaults to the local profile in local mode and demands an
// explicit --person in team mode.
func resolvePerson(container *app.Container, flag int64) (int64, error) {
	if flag != 0 {
		return flag, nil
	}
	if container.LocalMode() {
		return persistence.LocalPersonID, nil
	}
	return 0, fmt.Errorf("--person is required in team mode")
}
