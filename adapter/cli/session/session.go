package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
	"github.com/taskpilot/taskpilot/internal/app"
)

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Track time actually worked on scheduled rows",
	Long:  `Start the clock on a row of your accepted schedule, pause it with a reason when you get interrupted, and complete it to see how the plan held up.`,
}

func init() {
	Cmd.AddCommand(todayCmd)
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(pauseCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(logCmd)
	Cmd.AddCommand(historyCmd)
}

// resolvePerson defaults to the local profile in local mode and demands an
// explicit --person in team mode.
func resolvePerson(container *app.Container, flag int64) (int64, error) {
	if flag != 0 {
		return flag, nil
	}
	if container.LocalMode() {
		return persistence.LocalPersonID, nil
	}
	return 0, fmt.Errorf("--person is required in team mode")
}

