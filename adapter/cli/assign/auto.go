package assign

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var (
	autoManager string
	autoApply   bool
	autoByID    string
	autoByName  string
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Plan assignments for unassigned tasks",
	Long: `Run the greedy planner over all unassigned tasks and print its
proposals with the full score breakdown. Nothing is persisted unless
--apply is given.

Examples:
  taskpilot assign auto --manager alice
  taskpilot assign auto --manager alice --apply --by-id alice --by-name "Alice Doe"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.Planner == nil {
			fmt.Println("Assignment planning requires a database connection.")
			fmt.Println("Set DATABASE_URL and retry.")
			return nil
		}

		plan, err := app.Planner.PlanAssignments(cmd.Context(), autoManager, time.Now())
		if err != nil {
			return fmt.Errorf("failed to plan assignments: %w", err)
		}

		printPlan(plan)

		if !autoApply {
			if len(plan.Decisions) > 0 {
				fmt.Println("\nDry run. Re-run with --apply to confirm these assignments.")
			}
			return nil
		}
		if len(plan.Decisions) == 0 {
			fmt.Println("\nNothing to apply.")
			return nil
		}

		pairs := make([]commands.ConfirmPair, 0, len(plan.Decisions))
		for _, d := range plan.Decisions {
			pairs = append(pairs, commands.ConfirmPair{TaskID: d.Task.ID, PersonID: d.PersonID})
		}
		result, err := app.ConfirmAssignments.Handle(cmd.Context(), commands.ConfirmAssignmentsCommand{
			Pairs:          pairs,
			AssignedByID:   autoByID,
			AssignedByName: autoByName,
		})
		if err != nil {
			return fmt.Errorf("failed to confirm assignments: %w", err)
		}
		printConfirmed(result)
		return nil
	},
}

func init() {
	autoCmd.Flags().StringVar(&autoManager, "manager", "", "limit planning to one manager's people")
	autoCmd.Flags().BoolVar(&autoApply, "apply", false, "confirm every proposed pair")
	autoCmd.Flags().StringVar(&autoByID, "by-id", "", "id of the confirming manager")
	autoCmd.Flags().StringVar(&autoByName, "by-name", "", "name of the confirming manager")
}

func printPlan(plan *domain.Plan) {
	fmt.Printf("Assignment plan: %d proposed, %d unassigned\n", len(plan.Decisions), len(plan.Unassigned))
	fmt.Println(strings.Repeat("=", 60))

	for _, d := range plan.Decisions {
		fmt.Printf("\n  #%d %s -> %s (score %.1f)\n", d.Task.ID, d.Task.Name, d.PersonName, d.Score)
		fmt.Printf("      skills %.0f%% / rating %.1f / load %.0f%% -> %.0f%%\n",
			d.Match.Ratio, d.Match.AvgRating, d.WorkloadBefore, d.WorkloadAfter)
		if d.Risk != nil {
			fmt.Printf("      risk: %s (%s)\n", d.Risk.Level, d.Risk.Reason)
		}
		if len(d.Alternatives) > 0 {
			alts := make([]string, 0, len(d.Alternatives))
			for _, a := range d.Alternatives {
				alts = append(alts, fmt.Sprintf("%s %.1f", a.PersonName, a.Score))
			}
			fmt.Printf("      also considered: %s\n", strings.Join(alts, ", "))
		}
	}

	if len(plan.Unassigned) > 0 {
		fmt.Println("\nUnassigned:")
		for _, u := range plan.Unassigned {
			fmt.Printf("  #%d %s: %s\n", u.TaskID, u.Name, u.Reason)
		}
	}
	for _, adv := range plan.Advisories {
		fmt.Printf("\nAdvisory: %s\n", adv.Message)
	}
}

func printConfirmed(result *commands.ConfirmAssignmentsResult) {
	fmt.Printf("\nConfirmed %d assignment(s):\n", len(result.Confirmed))
	for _, c := range result.Confirmed {
		note := "notified"
		if !c.NotificationSent {
			note = "notification failed"
			if c.NotificationError != "" {
				note = "notification failed: " + c.NotificationError
			}
		}
		fmt.Printf("  assignment %d: task #%d %s -> person %d (%s)\n",
			c.AssignmentID, c.TaskID, c.TaskName, c.PersonID, note)
	}
}
