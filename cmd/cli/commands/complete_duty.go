package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// CompleteDutyCmd creates the complete command
func CompleteDutyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <duty_id>",
		Short: "Mark a duty completed and record its crew in the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CompleteDuty(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Duty %s completed\n", result.DutyID)
			fmt.Printf("Seats:    %d\n", result.Seats)
			if result.Recorded < result.Seats {
				fmt.Printf("Recorded: %d %s\n\n", result.Recorded, faint.Sprint("(the rest was recorded earlier)"))
			} else {
				fmt.Printf("Recorded: %d\n\n", result.Recorded)
			}
			return nil
		},
	}
}
