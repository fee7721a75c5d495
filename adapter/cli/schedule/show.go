package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var showPerson int64

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest stored schedule",
	Long: `Display the person's latest stored schedule day by day.

Examples:
  taskpilot schedule show
  taskpilot schedule show --person 3`,
	Aliases: []string{"view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.GetSchedule == nil {
			fmt.Println("Schedule viewing requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, showPerson)
		if err != nil {
			return err
		}

		schedule, err := app.GetSchedule.Handle(cmd.Context(), queries.GetScheduleQuery{PersonID: personID})
		if err != nil {
			if errors.Is(err, domain.ErrScheduleNotFound) {
				fmt.Println("No schedule stored yet. Generate one with 'taskpilot schedule generate'.")
				return nil
			}
			return fmt.Errorf("failed to load schedule: %w", err)
		}

		state := "draft"
		if schedule.Accepted {
			state = "accepted " + schedule.AcceptedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("Schedule %s (%s)\n", schedule.ID, state)
		fmt.Printf("%s to %s, %.1fh per day\n",
			schedule.StartDate.Format("2006-01-02"),
			schedule.EndDate.Format("2006-01-02"),
			schedule.DailyHours,
		)
		fmt.Println(strings.Repeat("=", 60))

		if len(schedule.Items) == 0 {
			fmt.Println("\n  Nothing scheduled. All caught up.")
			return nil
		}

		var currentDay string
		for _, item := range schedule.Items {
			day := item.Date.Format("Monday, January 2")
			if day != currentDay {
				fmt.Printf("\n%s\n", day)
				currentDay = day
			}

			lock := " "
			if item.Locked {
				lock = "*"
			}
			line := fmt.Sprintf("  %s %-30s %5.1fh  %3.0f%% done", lock, item.Name, item.Hours, item.Progress)
			if item.Deadline != nil {
				line += fmt.Sprintf("  due %s", item.Deadline.Format("01-02"))
			}
			fmt.Println(line)
			fmt.Printf("      id %s\n", item.ID)
		}
		fmt.Println("\n  * locked row, survives regeneration with --keep-locked")
		return nil
	},
}

func init() {
	showCmd.Flags().Int64Var(&showPerson, "person", 0, "person id (defaults to the local profile)")
}
