package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// AttendanceCmd creates the attendance command
func AttendanceCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance <duty_id> <member_id>",
		Short: "Check a member in for a duty, or mark them absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			absent, _ := cmd.Flags().GetBool("absent")
			actor, _ := cmd.Flags().GetString("actor")

			record, err := services.MarkAttendance(app.Ctx, app.Database, app.Logger, args[0], args[1], !absent, actor, time.Now())
			if err != nil {
				return err
			}

			if record.IsPresent {
				fmt.Printf("%s %s checked in for %s at %s\n",
					green.Sprint("✓"), record.MemberID, record.DutyID, record.CheckedInAt.Local().Format("15:04"))
			} else {
				fmt.Printf("%s %s marked absent for %s\n", faint.Sprint("-"), record.MemberID, record.DutyID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("absent", false, "Mark the member absent instead of present")
	cmd.Flags().String("actor", "", "Who checks the member in")

	return cmd
}
