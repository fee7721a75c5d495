package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var logMinutes int64

var logCmd = &cobra.Command{
	Use:   "log SESSION_ID",
	Short: "Log extra worked minutes on the running session",
	Long: `Bank time you measured yourself, on top of what pause and complete
account for. The session must be working.`,
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
		if logMinutes <= 0 {
			return fmt.Errorf("--minutes must be positive")
		}

		session, err := app.WorkSession.LogTime(cmd.Context(), id, logMinutes*60)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionNotWorking):
				fmt.Println("Time can only be logged on a working session.")
				return nil
			case errors.Is(err, domain.ErrSessionNotFound):
				fmt.Printf("No session %d.\n", id)
				return nil
			}
			return fmt.Errorf("failed to log time: %w", err)
		}

		fmt.Printf("Logged %dm on %q, %.1fh total.\n", logMinutes, session.Name, session.WorkedHours())
		return nil
	},
}

func init() {
	logCmd.Flags().Int64Var(&logMinutes, "minutes", 0, "minutes to add")
	_ = logCmd.MarkFlagRequired("minutes")
}
