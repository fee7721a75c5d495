package session

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
)

var todayPerson int64

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's rows and what is already tracked",
	Long: `The working view over your accepted schedule: today's rows plus the
next two workdays, each merged with the session tracked on it, if any.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.TodayWork == nil {
			fmt.Println("Time tracking requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, todayPerson)
		if err != nil {
			return err
		}

		view, err := app.TodayWork.Handle(cmd.Context(), queries.TodayWorkQuery{
			PersonID: personID,
			Today:    time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to load today's work: %w", err)
		}

		if !view.HasSchedule {
			fmt.Println("No schedule stored yet. Generate one with 'taskpilot schedule generate'.")
			return nil
		}
		if view.NeedsAcceptance {
			fmt.Println("Your latest schedule is not accepted yet. Review it with 'taskpilot schedule show', then 'taskpilot schedule accept'.")
			return nil
		}

		fmt.Printf("Today, %s\n", view.Today.Format("2006-01-02"))
		printCards(view.TodayTasks)
		if len(view.Upcoming) > 0 {
			fmt.Println("\nComing up")
			printCards(view.Upcoming)
		}

		updates, err := app.CheckScheduleUpdates.Handle(cmd.Context(), queries.CheckScheduleUpdatesQuery{PersonID: personID})
		if err == nil && updates.Stale {
			fmt.Printf("\nNote: %d new item(s) and %d new block(s) since the schedule was accepted. Consider 'taskpilot schedule generate --keep-locked'.\n",
				updates.NewItems, updates.NewBlocks)
		}
		return nil
	},
}

func printCards(cards []queries.WorkCardDTO) {
	if len(cards) == 0 {
		fmt.Println("  nothing scheduled")
		return
	}
	for _, card := range cards {
		line := fmt.Sprintf("  %s  %-30s %.1fh planned", card.Date.Format("Mon 01-02"), card.Name, card.PlannedHours)
		if card.SessionID != nil {
			line += fmt.Sprintf("  [%s, %.1fh worked, session %d]", card.Status, card.WorkedHours, *card.SessionID)
		} else {
			line += fmt.Sprintf("  [not started, item %s]", card.ScheduleItemID)
		}
		if card.DueToday {
			line += "  due"
		}
		fmt.Println(line)
	}
}

func init() {
	todayCmd.Flags().Int64Var(&todayPerson, "person", 0, "person id (defaults to the local profile)")
}
