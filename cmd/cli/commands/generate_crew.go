package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// GenerateCrewCmd creates the generate command
func GenerateCrewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <duty_id>",
		Short: "Propose a crew for a duty from the members checked in",
		Long: `Fill the seats of the duty's vehicles with members checked in for it.
Locked and confirmed seats are kept. Proposed seats are saved as suggested.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicles, _ := cmd.Flags().GetStringSlice("vehicles")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seedFlag, _ := cmd.Flags().GetString("seed")

			opts := services.GenerateCrewOptions{DutyID: args[0], Vehicles: vehicles, DryRun: dryRun}
			if seedFlag != "" {
				seed, err := strconv.ParseUint(seedFlag, 10, 64)
				if err != nil {
					return fmt.Errorf("seed must be a non-negative number: %w", err)
				}
				opts.Seed = &seed
			}

			app.Logger.Debug("generate command",
				zap.String("duty_id", opts.DutyID),
				zap.Strings("vehicles", vehicles),
				zap.Bool("dry_run", dryRun))

			result := services.GenerateCrew(app.Ctx, app.Database, app.Cfg, app.Logger, opts)

			fmt.Printf("\n🚒 Crew Generation for %s\n\n", result.DutyID)
			if !result.Success {
				fmt.Printf("Status:   %s\n", red.Sprint("FAILED"))
				fmt.Printf("Error:    %s\n\n", result.Error)
				return errors.New("crew generation failed")
			}

			switch {
			case result.DryRun:
				fmt.Printf("Mode:     🧪 DRY RUN (not saved)\n")
			default:
				fmt.Printf("Status:   %s (%d seats written)\n", green.Sprint("SAVED"), result.WrittenCount)
			}
			fmt.Printf("Filled:   %d\n", result.FilledCount)
			fmt.Printf("Warnings: %d\n", result.WarningCount)
			if result.ClearedCount > 0 {
				fmt.Printf("Cleared:  %d\n", result.ClearedCount)
			}

			currentVehicle := ""
			for _, d := range result.Decisions {
				if d.VehicleID != currentVehicle {
					currentVehicle = d.VehicleID
					fmt.Printf("\n  %s\n", bold.Sprint(result.CallSigns[d.VehicleID]))
				}
				fmt.Println(decisionLine(d, result.MemberNames))
			}

			if len(result.Skipped) > 0 {
				fmt.Printf("\nUnchanged seats (%d):\n", len(result.Skipped))
				for _, s := range result.Skipped {
					detail := ""
					if s.Detail != "" {
						detail = " (" + s.Detail + ")"
					}
					fmt.Printf("  • %s %s: %s%s\n", result.CallSigns[s.VehicleID], s.SeatID, s.Reason, detail)
				}
			}
			if len(result.UnfilledRequired) > 0 {
				fmt.Printf("\n%s %s\n", red.Sprint("Required seats without a member:"), strings.Join(result.UnfilledRequired, ", "))
			}
			fmt.Println()

			if result.DryRun {
				fmt.Fprintln(os.Stderr, faint.Sprint("Run again without --dry-run to save the crew."))
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("vehicles", nil, "Call signs or IDs of the vehicles to staff (default: configured selection, else all)")
	cmd.Flags().Bool("dry-run", false, "Compute the crew without saving it")
	cmd.Flags().String("seed", "", "Seed for reproducible tie breaking")

	return cmd
}
