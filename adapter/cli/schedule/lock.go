package schedule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var (
	lockPerson int64
	lockUnlock bool
)

var lockCmd = &cobra.Command{
	Use:   "lock ITEM_ID [ITEM_ID...]",
	Short: "Pin schedule rows so regeneration keeps them",
	Long: `Lock rows of the latest schedule in place. Locked rows keep their
day and hours when the schedule is regenerated with --keep-locked.
Use --unlock to release them again. Item ids come from 'schedule show'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		if app == nil || app.LockScheduleItems == nil {
			fmt.Println("Schedule locking requires storage.")
			return nil
		}

		personID, err := resolvePerson(app, lockPerson)
		if err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, 0, len(args))
		for _, arg := range args {
			id, err := uuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", arg, err)
			}
			itemIDs = append(itemIDs, id)
		}

		latest, err := app.GetSchedule.Handle(cmd.Context(), queries.GetScheduleQuery{PersonID: personID})
		if err != nil {
			if errors.Is(err, domain.ErrScheduleNotFound) {
				fmt.Println("No schedule stored yet. Generate one with 'taskpilot schedule generate'.")
				return nil
			}
			return fmt.Errorf("failed to load schedule: %w", err)
		}

		result, err := app.LockScheduleItems.Handle(cmd.Context(), commands.LockScheduleItemsCommand{
			ScheduleID: latest.ID,
			ItemIDs:    itemIDs,
			Locked:     !lockUnlock,
		})
		if err != nil {
			return fmt.Errorf("failed to update locks: %w", err)
		}

		verb := "Locked"
		if lockUnlock {
			verb = "Unlocked"
		}
		fmt.Printf("%s %d row(s).\n", verb, result.Changed)
		if result.Changed < len(itemIDs) {
			fmt.Printf("%d id(s) did not match any row and were ignored.\n", len(itemIDs)-result.Changed)
		}
		return nil
	},
}

func init() {
	lockCmd.Flags().Int64Var(&lockPerson, "person", 0, "person id (defaults to the local profile)")
	lockCmd.Flags().BoolVar(&lockUnlock, "unlock", false, "release the rows instead")
}
