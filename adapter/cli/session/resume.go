package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var resumeCmd = &cobra.Command{
	Use:   "resume SESSION_ID",
	Short: "Resume a paused session",
	Args:  cobra.ExactArgs(1),
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

		session, err := app.WorkSession.Resume(cmd.Context(), id)
		if err != nil {
			var active *domain.OtherSessionActiveError
			switch {
			case errors.As(err, &active):
				fmt.Printf("Finish or pause the current task first: %s\n", active.TaskName)
				return nil
			case errors.Is(err, domain.ErrSessionNotPaused):
				fmt.Println("Only a paused session can be resumed.")
				return nil
			case errors.Is(err, domain.ErrSessionNotFound):
				fmt.Printf("No session %d.\n", id)
				return nil
			}
			return fmt.Errorf("failed to resume session: %w", err)
		}

		fmt.Printf("Back on %q.\n", session.Name)
		return nil
	},
}
