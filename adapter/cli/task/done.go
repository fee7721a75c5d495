package task

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var doneCmd = &cobra.Command{
	Use:     "done TASK_ID",
	Short:   "Mark one of your tasks completed",
	Aliases: []string{"complete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LocalStore == nil {
			fmt.Println("Own tasks live in local mode. Unset DATABASE_URL to use the local profile.")
			return nil
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q: %w", args[0], err)
		}

		if err := app.LocalStore.CompleteSelfTask(cmd.Context(), id); err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				fmt.Printf("No open task %d.\n", id)
				return nil
			}
			return fmt.Errorf("failed to complete task: %w", err)
		}
		fmt.Printf("Task %d completed.\n", id)
		return nil
	},
}
