package block

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
)

var (
	listFrom string
	listTo   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List unavailable blocks in a window",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LocalStore == nil {
			fmt.Println("Unavailable blocks live in local mode. Unset DATABASE_URL to use the local profile.")
			return nil
		}

		from, to, err := resolveWindow(listFrom, listTo)
		if err != nil {
			return err
		}

		blocks, err := app.LocalStore.Blocks(cmd.Context(), persistence.LocalPersonID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list blocks: %w", err)
		}

		if len(blocks) == 0 {
			fmt.Printf("No blocks between %s and %s.\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
			return nil
		}

		fmt.Printf("Unavailable blocks, %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
		fmt.Println(strings.Repeat("=", 60))
		for _, b := range blocks {
			line := fmt.Sprintf("  %s %s-%s", b.Date.Format("2006-01-02"), b.StartTime, b.EndTime)
			if b.Reason != "" {
				line += "  " + b.Reason
			}
			if b.Note != "" {
				line += fmt.Sprintf(" (%s)", b.Note)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "window start (YYYY-MM-DD, default today)")
	listCmd.Flags().StringVar(&listTo, "to", "", "window end (YYYY-MM-DD, default two weeks out)")
}

func resolveWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)

	var err error
	if fromRaw != "" {
		from, err = time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from, use YYYY-MM-DD: %w", err)
		}
	}
	if toRaw != "" {
		to, err = time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to, use YYYY-MM-DD: %w", err)
		}
	}
	return from, to, nil
}
