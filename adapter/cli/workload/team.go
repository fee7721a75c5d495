package workload

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
)

var teamManager string

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Show the workload of everyone on a team",
	Long: `Display the current-week workload of every person a manager owns.
Without --manager, all people are listed.

Examples:
  taskpilot workload team
  taskpilot workload team --manager alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.TeamWorkload == nil {
			fmt.Println("Team workload requires a database connection.")
			fmt.Println("Set DATABASE_URL and retry.")
			return nil
		}

		rows, err := app.TeamWorkload.Handle(cmd.Context(), queries.TeamWorkloadQuery{
			ManagerID: teamManager,
			Today:     time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to compute team workload: %w", err)
		}

		if len(rows) == 0 {
			fmt.Println("No people found.")
			return nil
		}

		fmt.Printf("Team workload (%d people)\n", len(rows))
		fmt.Println(strings.Repeat("=", 60))
		for _, row := range rows {
			fmt.Printf("  %-24s %5.1fh / %5.1fh  %4.0f%%  %s\n",
				row.Person.Name,
				row.Report.TaskHoursWindow,
				row.Report.ActualAvailableHours,
				row.Report.DisplayRatio,
				row.Report.Level,
			)
		}
		return nil
	},
}

func init() {
	teamCmd.Flags().StringVar(&teamManager, "manager", "", "limit to one manager's people")
}
