package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// ShowCrewCmd creates the show command
func ShowCrewCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <duty_id>",
		Short: "Show the seats of a duty and who is on them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, err := services.ShowDutyCrew(app.Ctx, app.Database, args[0])
			if err != nil {
				return err
			}

			fmt.Println()
			printDutyHeader(os.Stdout, dc.Duty)
			printDutySeats(os.Stdout, dc.Seats)

			fmt.Printf("\nFilled:   %s\n", fillSummary(dc.Filled, len(dc.Seats)))
			if dc.Warnings > 0 {
				fmt.Printf("Warnings: %s\n", yellow.Sprint(dc.Warnings))
			}
			fmt.Println()
			return nil
		},
	}
}
