package workload

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
)

var (
	showPerson int64
	showFrom   string
	showTo     string
	showItems  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one person's workload report",
	Long: `Display a person's workload for the current week, or for an
explicit window.

Examples:
  taskpilot workload show
  taskpilot workload show --person 3 --from 2026-03-02 --to 2026-03-08
  taskpilot workload show --items`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.GetWorkload == nil {
			fmt.Println("Workload reporting requires storage.")
			return nil
		}

		personID := showPerson
		if personID == 0 {
			if !app.LocalMode() {
				return fmt.Errorf("--person is required in team mode")
			}
			personID = persistence.LocalPersonID
		}

		query := queries.GetWorkloadQuery{PersonID: personID}
		var err error
		if showFrom != "" || showTo != "" {
			query.WindowStart, query.WindowEnd, err = parseWindow(showFrom, showTo)
			if err != nil {
				return err
			}
		}

		report, err := app.GetWorkload.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to compute workload: %w", err)
		}

		printReport(report, showItems)
		return nil
	},
}

func init() {
	showCmd.Flags().Int64Var(&showPerson, "person", 0, "person id (defaults to the local profile)")
	showCmd.Flags().StringVar(&showFrom, "from", "", "window start (YYYY-MM-DD)")
	showCmd.Flags().StringVar(&showTo, "to", "", "window end (YYYY-MM-DD)")
	showCmd.Flags().BoolVar(&showItems, "items", false, "list each item's apportioned hours")
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to must be given together")
	}
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from, use YYYY-MM-DD: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to, use YYYY-MM-DD: %w", err)
	}
	return start, end, nil
}

func printReport(report *domain.WorkloadReport, withItems bool) {
	fmt.Printf("Workload for person %d, %s to %s\n",
		report.PersonID,
		report.WindowStart.Format("2006-01-02"),
		report.WindowEnd.Format("2006-01-02"),
	)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Workdays:     %d\n", report.WorkdayCount)
	fmt.Printf("  Available:    %.1fh (%.1fh unavailable)\n", report.ActualAvailableHours, report.UnavailableHours)
	fmt.Printf("  Assigned:     %.1fh in window (%.1fh total estimates)\n", report.AssignedHoursWindow, report.AssignedHoursTotal)
	fmt.Printf("  Self:         %.1fh in window (%.1fh total estimates)\n", report.SelfHoursWindow, report.SelfHoursTotal)
	fmt.Printf("  Booked:       %.1fh, free %.1fh\n", report.TaskHoursWindow, report.FreeHours)
	fmt.Printf("  Load:         %.0f%% (%s)\n", report.DisplayRatio, report.Level)

	if report.SkippedMalformed > 0 {
		fmt.Printf("\n  Note: %d malformed unavailable block(s) were skipped.\n", report.SkippedMalformed)
	}

	if withItems && len(report.Items) > 0 {
		fmt.Println("\n  Items:")
		for _, item := range report.Items {
			fmt.Printf("    %-30s %5.1fh of %5.1fh  (%s to %s)\n",
				item.Name,
				item.WindowHours,
				item.EstimatedHours,
				item.SpanStart.Format("01-02"),
				item.SpanEnd.Format("01-02"),
			)
		}
	}
}
