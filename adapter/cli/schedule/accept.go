package schedule

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var acceptPerson int64

var acceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept the latest schedule as your working plan",
	Long: `Mark the latest stored schedule accepted. Acceptance sets the
baseline that 'schedule updates' measures staleness against.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.AcceptSchedule == nil {
			fmt.Println("Schedule acceptance requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, acceptPerson)
		if err != nil {
			return err
		}

		latest, err := app.GetSchedule.Handle(cmd.Context(), queries.GetScheduleQuery{PersonID: personID})
		if err != nil {
			if errors.Is(err, domain.ErrScheduleNotFound) {
				fmt.Println("No schedule stored yet. Generate one with 'taskpilot schedule generate'.")
				return nil
			}
			return fmt.Errorf("failed to load schedule: %w", err)
		}
		if latest.Accepted {
			fmt.Println("Schedule is already accepted.")
			return nil
		}

		if err := app.AcceptSchedule.Handle(cmd.Context(), commands.AcceptScheduleCommand{ScheduleID: latest.ID}); err != nil {
			return fmt.Errorf("failed to accept schedule: %w", err)
		}
		fmt.Printf("Schedule %s accepted.\n", latest.ID)
		return nil
	},
}

func init() {
	acceptCmd.Flags().Int64Var(&acceptPerson, "person", 0, "person id (defaults to the local profile)")
}
