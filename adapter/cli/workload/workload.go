package workload

import (
	"github.com/spf13/cobra"
)

// Cmd is the workload command group
var Cmd = &cobra.Command{
	Use:   "workload",
	Short: "Inspect workload over a workday window",
	Long:  `Report how loaded a person or a whole team is: hours apportioned into the window against actually available hours.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(teamCmd)
}
