package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var (
	historyPerson int64
	historyDate   string
	historyStatus string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past work sessions",
	Long: `Show tracked sessions, newest first. Narrow with --date (YYYY-MM-DD)
or --status (pending, working, paused, completed).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.SessionHistory == nil {
			fmt.Println("Time tracking requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, historyPerson)
		if err != nil {
			return err
		}

		query := queries.SessionHistoryQuery{PersonID: personID, Status: historyStatus}
		if historyDate != "" {
			day, err := domain.ParseDay(historyDate)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", historyDate, err)
			}
			query.Date = &day
		}

		sessions, err := app.SessionHistory.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions tracked yet.")
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("%d  %s  %-30s %-9s planned %.1fh worked %.2fh\n",
				s.ID, s.Date.Format("2006-01-02"), s.Name, s.Status,
				s.PlannedHours, s.WorkedHours)
			for _, in := range s.Interruptions {
				fmt.Printf("     interrupted %s: %s (%.0fm)\n",
					in.PausedAt.Format("15:04"), in.Reason, in.Minutes)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int64Var(&historyPerson, "person", 0, "person id (defaults to the local profile)")
	historyCmd.Flags().StringVar(&historyDate, "date", "", "only sessions on this day (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only sessions in this status")
}
