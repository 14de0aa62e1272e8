package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// FairnessCmd creates the fairness command
func FairnessCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fairness [year]",
		Short: "Show how often each member served in a year (defaults to this year)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")

			year := time.Now().Year()
			if len(args) > 0 {
				var err error
				year, err = strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("year must be a number: %w", err)
				}
			}

			var scores []crew.FairnessScore
			var err error
			if refresh {
				scores, err = services.RefreshFairness(app.Ctx, app.Database, app.Logger, year)
			} else {
				scores, err = services.FairnessReport(app.Ctx, app.Database, app.Logger, year)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n📊 Duties in %d\n\n", year)
			if len(scores) == 0 {
				fmt.Println("No completed duties recorded.")
				return nil
			}

			for _, s := range scores {
				last := "-"
				if !s.LastDutyDate.IsZero() {
					last = s.LastDutyDate.Format("2006-01-02")
				}
				fmt.Printf("  %-12s %3d  last %s\n", s.MemberID, s.TotalDuties, last)
				fmt.Printf("  %-12s      positions: %s\n", "", formatCounts(s.TotalByPosition))
				fmt.Printf("  %-12s      vehicles:  %s\n", "", formatCounts(s.TotalByVehicle))
			}
			if refresh {
				fmt.Printf("\n%s Snapshot stored for %d members\n", green.Sprint("✓"), len(scores))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().Bool("refresh", false, "Store the computed scores as the year's snapshot")

	return cmd
}
