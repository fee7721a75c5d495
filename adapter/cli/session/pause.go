package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var pauseReason string

var pauseCmd = &cobra.Command{
	Use:   "pause SESSION_ID",
	Short: "Pause the running session",
	Long: `Interrupt a working session. The reason is required; it goes into the
interruption log shown by 'session history'.`,
	Args: cobra.ExactArgs(1),
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

		session, err := app.WorkSession.Pause(cmd.Context(), id, pauseReason)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInterruptReasonRequired):
				fmt.Println("A reason is required: --reason \"why\".")
				return nil
			case errors.Is(err, domain.ErrSessionNotWorking):
				fmt.Println("Only a working session can be paused.")
				return nil
			case errors.Is(err, domain.ErrSessionNotFound):
				fmt.Printf("No session %d.\n", id)
				return nil
			}
			return fmt.Errorf("failed to pause session: %w", err)
		}

		fmt.Printf("Paused %q at %.1fh worked.\n", session.Name, session.WorkedHours())
		return nil
	},
}

func init() {
	pauseCmd.Flags().StringVar(&pauseReason, "reason", "", "why the work was interrupted (required)")
}
