package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var startPerson int64

var startCmd = &cobra.Command{
	Use:   "start ITEM_ID",
	Short: "Start the clock on a schedule row",
	Long: `Begin tracking time on a row of your latest schedule. Starting a row
you paused earlier picks it up again. Only one session runs at a time;
pause or complete the current one first. Item ids come from
'schedule show' or 'session today'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.WorkSession == nil {
			fmt.Println("Time tracking requires storage.")
			return nil
		}

		itemID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid item id %q: %w", args[0], err)
		}

		personID, err := resolvePerson(app, startPerson)
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

		var row *queries.ScheduleItemDTO
		for i := range latest.Items {
			if latest.Items[i].ID == itemID {
				row = &latest.Items[i]
				break
			}
		}
		if row == nil {
			fmt.Printf("No row %s in the latest schedule.\n", itemID)
			return nil
		}

		session, err := app.WorkSession.Start(cmd.Context(), commands.StartSessionCommand{
			PersonID:       personID,
			ScheduleItemID: row.ID,
			Key:            domain.ItemKey{Kind: domain.ItemKind(row.Kind), ID: row.ItemID},
			Name:           row.Name,
			Date:           row.Date,
			PlannedHours:   row.Hours,
		})
		if err != nil {
			var active *domain.OtherSessionActiveError
			switch {
			case errors.As(err, &active):
				fmt.Printf("Finish or pause the current task first: %s\n", active.TaskName)
				return nil
			case errors.Is(err, domain.ErrSessionAlreadyWorking):
				fmt.Println("That task is already in progress.")
				return nil
			}
			return fmt.Errorf("failed to start session: %w", err)
		}

		fmt.Printf("Working on %q (session %d, planned %.1fh for %s).\n",
			session.Name, session.ID, session.PlannedHours,
			session.Date.Format("2006-01-02"))
		return nil
	},
}

func init() {
	startCmd.Flags().Int64Var(&startPerson, "person", 0, "person id (defaults to the local profile)")
}
