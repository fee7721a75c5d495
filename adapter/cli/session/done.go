package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var doneCmd = &cobra.Command{
	Use:     "done SESSION_ID",
	Short:   "Complete a session and see how the plan held up",
	Aliases: []string{"complete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.WorkSession == nil {
			fmt.Println("Time tracking requires storage.")
			return nil
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", args[0], err)
		}

		session, stats, err := app.WorkSession.Complete(cmd.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionCompleted):
				fmt.Println("That session is already completed.")
				return nil
			case errors.Is(err, domain.ErrSessionNotFound):
				fmt.Printf("No session %d.\n", id)
				return nil
			}
			return fmt.Errorf("failed to complete session: %w", err)
		}

		fmt.Printf("Completed %q.\n", session.Name)
		fmt.Printf("  planned %.1fh, worked %.2fh, efficiency %.1f%%\n",
			stats.PlannedHours, stats.WorkedHours, stats.Efficiency)
		if stats.Interruptions > 0 {
			fmt.Printf("  %d interruption(s), %.1f minutes away\n",
				stats.Interruptions, stats.InterruptionMinutes)
		}
		return nil
	},
}
