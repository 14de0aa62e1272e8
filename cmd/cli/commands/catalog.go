package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/fire-crew-roster/pkg/core/services"
)

// CatalogCmd creates the catalog command
func CatalogCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Check the qualification catalog, covers graph and seat rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := services.CheckCatalog(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n📋 Qualification Catalog\n\n")
			fmt.Printf("Qualifications: %d\n", report.Qualifications)
			fmt.Printf("Covers edges:   %d\n", report.Covers)

			if report.OK() {
				fmt.Printf("\n%s No problems found\n\n", green.Sprint("✓"))
				return nil
			}

			if len(report.Cycles) > 0 {
				fmt.Printf("\n%s Covers cycles (%d), members of a cycle satisfy each other:\n", yellow.Sprint("⚠"), len(report.Cycles))
				for _, c := range report.Cycles {
					fmt.Printf("  • %s\n", strings.Join(c, " → "))
				}
			}
			if len(report.IgnoredCovers) > 0 {
				fmt.Printf("\n%s Covers edges with unknown codes (%d), ignored:\n", yellow.Sprint("⚠"), len(report.IgnoredCovers))
				for _, c := range report.IgnoredCovers {
					fmt.Printf("  • %s → %s\n", c.From, c.To)
				}
			}
			if len(report.UnknownCodes) > 0 {
				fmt.Printf("\n%s Seat rules with unknown codes (%d), generate skips these seats:\n", red.Sprint("✗"), len(report.UnknownCodes))
				for _, u := range report.UnknownCodes {
					fmt.Printf("  • seat %s rule %s: %s\n", u.SeatID, u.RuleID, u.Code)
				}
			}
			if len(report.InvalidRuleTypes) > 0 {
				fmt.Printf("\n%s Seat rules with an unknown type (%d), ignored:\n", red.Sprint("✗"), len(report.InvalidRuleTypes))
				for _, id := range report.InvalidRuleTypes {
					fmt.Printf("  • %s\n", id)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

// SeedCoversCmd creates the seedCovers command
func SeedCoversCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seedCovers",
		Short: "Add the default qualification ladder edges missing from the covers graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.SeedCovers(app.Ctx, app.Database, app.Logger, dryRun)
			if err != nil {
				return err
			}

			if len(result.Missing) == 0 {
				fmt.Printf("%s Covers graph already contains the default ladder\n", green.Sprint("✓"))
				return nil
			}

			fmt.Printf("\nMissing default edges (%d):\n", len(result.Missing))
			for _, c := range result.Missing {
				fmt.Printf("  • %s → %s\n", c.From, c.To)
			}
			if result.DryRun {
				fmt.Printf("\n🧪 DRY RUN (not saved)\n\n")
				return nil
			}
			fmt.Printf("\n%s Inserted %d edges\n\n", green.Sprint("✓"), result.Inserted)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List the missing edges without inserting them")

	return cmd
}
