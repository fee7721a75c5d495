package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your open tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LocalStore == nil {
			fmt.Println("Own tasks live in local mode. Unset DATABASE_URL to use the local profile.")
			return nil
		}

		items, err := app.LocalStore.OpenItems(cmd.Context(), persistence.LocalPersonID)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No open tasks.")
			return nil
		}

		fmt.Printf("Open tasks (%d)\n", len(items))
		fmt.Println(strings.Repeat("=", 60))
		for _, item := range items {
			line := fmt.Sprintf("  #%-4d %-30s", item.Key.ID, item.Name)
			if item.EstimatedHours > 0 {
				line += fmt.Sprintf(" %5.1fh", item.EstimatedHours)
			} else {
				line += "    -  "
			}
			if item.Deadline != nil {
				line += fmt.Sprintf("  due %s", item.Deadline.Format("2006-01-02"))
			}
			if item.Importance > 0 {
				line += fmt.Sprintf("  importance %d", item.Importance)
			}
			fmt.Println(line)
		}
		return nil
	},
}
