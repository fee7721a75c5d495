package assign

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
)

var (
	confirmByID   string
	confirmByName string
)

var confirmCmd = &cobra.Command{
	Use:   "confirm TASK:PERSON [TASK:PERSON...]",
	Short: "Confirm task-to-person pairs as assignments",
	Long: `Turn approved pairs into durable assignments. Each argument is a
task id and a person id joined by a colon.

Examples:
  taskpilot assign confirm 12:3
  taskpilot assign confirm 12:3 15:7 --by-id alice --by-name "Alice Doe"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.ConfirmAssignments == nil {
			fmt.Println("Confirming assignments requires a database connection.")
			fmt.Println("Set DATABASE_URL and retry.")
			return nil
		}

		pairs := make([]commands.ConfirmPair, 0, len(args))
		for _, arg := range args {
			pair, err := parsePair(arg)
			if err != nil {
				return err
			}
			pairs = append(pairs, pair)
		}

		result, err := app.ConfirmAssignments.Handle(cmd.Context(), commands.ConfirmAssignmentsCommand{
			Pairs:          pairs,
			AssignedByID:   confirmByID,
			AssignedByName: confirmByName,
		})
		if err != nil {
			return fmt.Errorf("failed to confirm assignments: %w", err)
		}
		printConfirmed(result)
		return nil
	},
}

func init() {
	confirmCmd.Flags().StringVar(&confirmByID, "by-id", "", "id of the confirming manager")
	confirmCmd.Flags().StringVar(&confirmByName, "by-name", "", "name of the confirming manager")
}

func parsePair(arg string) (commands.ConfirmPair, error) {
	taskPart, personPart, found := strings.Cut(arg, ":")
	if !found {
		return commands.ConfirmPair{}, fmt.Errorf("invalid pair %q, expected TASK:PERSON", arg)
	}
	taskID, err := strconv.ParseInt(taskPart, 10, 64)
	if err != nil {
		return commands.ConfirmPair{}, fmt.Errorf("invalid task id in %q: %w", arg, err)
	}
	personID, err := strconv.ParseInt(personPart, 10, 64)
	if err != nil {
		return commands.ConfirmPair{}, fmt.Errorf("invalid person id in %q: %w", arg, err)
	}
	return commands.ConfirmPair{TaskID: taskID, PersonID: personID}, nil
}
