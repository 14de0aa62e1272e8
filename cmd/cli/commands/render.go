package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	blue   = color.New(color.FgBlue)
	faint  = color.New(color.Faint)
	bold   = color.New(color.Bold)
)

// statusLabel renders an assignment status padded to a fixed width
func statusLabel(status string) string {
	label := fmt.Sprintf("%-9s", status)
	switch crew.AssignmentStatus(status) {
	case crew.StatusLocked:
		return blue.Sprint(label)
	case crew.StatusConfirmed:
		return green.Sprint(label)
	case crew.StatusCancelled:
		return faint.Sprint(label)
	case crew.StatusSuggested:
		return label
	default:
		return faint.Sprint(fmt.Sprintf("%-9s", "empty"))
	}
}

// tierIcon marks a decision or seat by how well the member fits
func tierIcon(tier crew.Tier) string {
	switch tier {
	case crew.TierQualified:
		return green.Sprint("✓")
	case crew.TierAllowed:
		return yellow.Sprint("!")
	default:
		return red.Sprint("✗")
	}
}

// decisionLine renders one seat decision of a generation run
func decisionLine(d crew.SeatDecision, memberNames map[string]string) string {
	if d.MemberID == "" {
		return fmt.Sprintf("    %s %-6s %s", faint.Sprint("-"), d.PositionCode, faint.Sprint("cleared, member moved to an earlier seat"))
	}
	line := fmt.Sprintf("    %s %-6s %s", tierIcon(d.Tier), d.PositionCode, memberNames[d.MemberID])
	if d.Warning {
		line += "  " + yellow.Sprint("⚠ "+d.WarningText)
	}
	return line
}

// seatName renders "HLF 20 #2 AGT"
func seatName(callSign string, seatNumber int, positionCode string) string {
	return fmt.Sprintf("%s #%d %s", callSign, seatNumber, positionCode)
}

// fillSummary colours "filled/total" by how much of the crew is staffed
func fillSummary(filled, total int) string {
	text := fmt.Sprintf("%d/%d", filled, total)
	switch {
	case total == 0 || filled == total:
		return green.Sprint(text)
	case filled*2 >= total:
		return yellow.Sprint(text)
	default:
		return red.Sprint(text)
	}
}

// printDutyHeader prints the duty line shared by the crew views
func printDutyHeader(w io.Writer, duty *db.Duty) {
	fmt.Fprintf(w, "%s  %s  %s (%s)\n",
		bold.Sprint(duty.Title),
		duty.DutyDate.Format("Mon 2006-01-02"),
		duty.DutyType,
		duty.Status)
}

// printDutySeats prints the crew table grouped by vehicle
func printDutySeats(w io.Writer, seats []db.DutySeat) {
	currentVehicle := ""
	for _, s := range seats {
		if s.VehicleID != currentVehicle {
			currentVehicle = s.VehicleID
			fmt.Fprintf(w, "\n  %s\n", bold.Sprint(s.CallSign))
		}

		member := faint.Sprint("-")
		if s.MemberID != "" {
			member = s.MemberName
		}
		line := fmt.Sprintf("    #%d %-6s %s %s", s.SeatNumber, s.PositionCode, statusLabel(s.AssignmentStatus), member)
		if s.HasWarning {
			line += "  " + yellow.Sprint("⚠ "+s.WarningText)
		}
		fmt.Fprintln(w, line)
	}
}

// formatCounts renders a count map as "a=1, b=2" in key order
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
