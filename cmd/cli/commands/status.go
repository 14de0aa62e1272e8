package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// StatusCmd creates the status command
func StatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <duty_id> <seat_id> <lock|confirm|cancel|reset>",
		Short: "Lock, confirm, cancel or reset a seat's assignment",
		Long: `Change the status of one seat's assignment.
Locked and confirmed seats are kept by generate; reset hands the seat back to it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := services.SetAssignmentStatus(app.Ctx, app.Database, app.Logger, args[0], args[1], services.StatusAction(args[2]))
			if err != nil {
				return err
			}

			fmt.Printf("%s Seat %s is now %s\n", green.Sprint("✓"), updated.SeatID, statusLabel(updated.Status))
			return nil
		},
	}
}
