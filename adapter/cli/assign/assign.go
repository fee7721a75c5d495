package assign

import (
	"github.com/spf13/cobra"
)

// Cmd is the assign command group
var Cmd = &cobra.Command{
	Use:   "assign",
	Short: "Propose and manage task assignments",
	Long:  `Run the auto-assignment planner, confirm its proposals, and walk assignments through their lifecycle.`,
}

func init() {
	Cmd.AddCommand(autoCmd)
	Cmd.AddCommand(confirmCmd)
	Cmd.AddCommand(acceptCmd)
	Cmd.AddCommand(rejectCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(rateCmd)
}
