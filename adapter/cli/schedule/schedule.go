package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate and manage day-by-day schedules",
	Long:  `Lay open work out over the coming workdays, pin rows you want kept, and accept the result as your working plan.`,
}

func init() {
	Cmd.AddCommand(generateCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(lockCmd)
	Cmd.AddCommand(acceptCmd)
	Cmd.AddCommand(updatesCmd)
}
