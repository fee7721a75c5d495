package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage your own tasks (local mode)",
	Long:  `Add, list, and complete self-created tasks. These feed the same workload and scheduling pipeline as assigned work.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(doneCmd)
}
