package block

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
)

var (
	addDate   string
	addStart  string
	addEnd    string
	addReason string
	addNote   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an unavailable block",
	Long: `Record a stretch of a day you are unavailable, start and end as
HH:MM clock times.

Examples:
  taskpilot block add --date 2026-09-01 --start 09:00 --end 12:00 --reason meeting
  taskpilot block add --date 2026-09-03 --start 13:00 --end 17:00 --reason vacation --note "half day off"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LocalStore == nil {
			fmt.Println("Unavailable blocks live in local mode. Unset DATABASE_URL to use the local profile.")
			return nil
		}

		date, err := time.Parse("2006-01-02", addDate)
		if err != nil {
			return fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
		}

		b := domain.UnavailableBlock{
			PersonID:  persistence.LocalPersonID,
			Date:      date,
			StartTime: addStart,
			EndTime:   addEnd,
			Reason:    addReason,
			Note:      addNote,
		}
		if err := app.LocalStore.AddBlock(cmd.Context(), b); err != nil {
			return fmt.Errorf("failed to add block: %w", err)
		}

		hours, _ := b.Hours()
		fmt.Printf("Blocked %s %s-%s (%.1fh).\n", addDate, addStart, addEnd, hours)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "day of the block (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addStart, "start", "", "start of the block (HH:MM)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "end of the block (HH:MM)")
	addCmd.Flags().StringVar(&addReason, "reason", "", "reason (meeting, vacation, ...)")
	addCmd.Flags().StringVar(&addNote, "note", "", "free-form note")
	_ = addCmd.MarkFlagRequired("date")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")
}
