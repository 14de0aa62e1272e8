package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// AssignSeatCmd creates the assign command
func AssignSeatCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <duty_id> <seat_id> [member_id]",
		Short: "Put a member on a seat as confirmed, or clear the seat",
		Long: `Assign a member to a seat by hand. The member is checked against the seat's rules on the duty date.
A member failing the check is rejected unless --override is given together with --reason.
Leave out member_id to clear the seat.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetBool("override")
			reason, _ := cmd.Flags().GetString("reason")
			actor, _ := cmd.Flags().GetString("actor")

			req := services.AssignSeatRequest{
				DutyID:   args[0],
				SeatID:   args[1],
				Override: override,
				Reason:   reason,
				Actor:    actor,
				Now:      time.Now(),
			}
			if len(args) > 2 {
				req.MemberID = args[2]
			}

			result, err := services.AssignSeat(app.Ctx, app.Database, app.Cfg, app.Logger, req)
			if errors.Is(err, services.ErrQualificationCheckFailed) && result != nil {
				fmt.Printf("%s %s does not meet the seat's requirements:\n", red.Sprint("✗"), req.MemberID)
				for _, w := range result.Evaluation.Warnings {
					fmt.Printf("  • %s\n", w)
				}
				fmt.Println("Use --override --reason \"...\" to assign anyway.")
				return err
			}
			if err != nil {
				return err
			}

			if result.Evaluation == nil {
				fmt.Printf("%s Seat %s cleared\n", green.Sprint("✓"), req.SeatID)
				return nil
			}

			fmt.Printf("%s %s assigned to %s (%s)\n",
				tierIcon(result.Evaluation.Tier), req.MemberID, req.SeatID, result.Evaluation.Tier)
			if result.Overridden {
				fmt.Printf("  %s override: %s\n", yellow.Sprint("⚠"), reason)
			}
			for _, w := range result.Evaluation.Warnings {
				fmt.Printf("  %s %s\n", yellow.Sprint("⚠"), w)
			}
			return nil
		},
	}

	cmd.Flags().Bool("override", false, "Assign even if the member fails the qualification check")
	cmd.Flags().String("reason", "", "Reason for the override (required with --override)")
	cmd.Flags().String("actor", "", "Who makes the assignment")

	return cmd
}
