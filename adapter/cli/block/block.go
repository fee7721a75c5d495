package block

import (
	"github.com/spf13/cobra"
)

// Cmd is the block command group
var Cmd = &cobra.Command{
	Use:   "block",
	Short: "Manage your unavailable blocks (local mode)",
	Long:  `Record hours you are unavailable. Blocks reduce the capacity the workload report and the scheduler count for that day.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
