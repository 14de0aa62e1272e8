package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

func withoutColor(t *testing.T) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func TestFillSummary(t *testing.T) {
	withoutColor(t)

	assert.Equal(t, "3/3", fillSummary(3, 3))
	assert.Equal(t, "0/0", fillSummary(0, 0))
	assert.Equal(t, "1/9", fillSummary(1, 9))
}

func TestStatusLabel(t *testing.T) {
	withoutColor(t)

	assert.Equal(t, "locked   ", statusLabel("locked"))
	assert.Equal(t, "suggested", statusLabel("suggested"))
	assert.Equal(t, "empty    ", statusLabel(""))
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "-", formatCounts(nil))
	assert.Equal(t, "AGT=2, GF=1, TF=4", formatCounts(map[string]int{"TF": 4, "GF": 1, "AGT": 2}))
}

func TestPrintDutySeats(t *testing.T) {
	withoutColor(t)

	seats := []db.DutySeat{
		{VehicleID: "hlf", CallSign: "HLF 20", SeatID: "hlf-1", SeatNumber: 1, PositionCode: "GF",
			MemberID: "m-1", MemberName: "Anna Adler", AssignmentStatus: "confirmed"},
		{VehicleID: "hlf", CallSign: "HLF 20", SeatID: "hlf-2", SeatNumber: 2, PositionCode: "AGT",
			MemberID: "m-3", MemberName: "Carl Christ", AssignmentStatus: "suggested", HasWarning: true, WarningText: "no recent exercise"},
		{VehicleID: "tlf", CallSign: "TLF 3000", SeatID: "tlf-1", SeatNumber: 1, PositionCode: "TF"},
	}

	var buf bytes.Buffer
	printDutyHeader(&buf, &db.Duty{Title: "Übungsdienst", DutyType: "exercise", DutyDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), Status: "planned"})
	printDutySeats(&buf, seats)

	out := buf.String()
	assert.Contains(t, out, "Übungsdienst  Thu 2025-06-12  exercise (planned)")
	assert.Contains(t, out, "\n  HLF 20\n")
	assert.Contains(t, out, "#1 GF     confirmed Anna Adler")
	assert.Contains(t, out, "Carl Christ  ⚠ no recent exercise")
	assert.Contains(t, out, "\n  TLF 3000\n")
	assert.Contains(t, out, "#1 TF     empty     -")
}

func TestDecisionLine(t *testing.T) {
	withoutColor(t)
	names := map[string]string{"anna": "Anna Adler"}

	assert.Equal(t, "    ✓ GF     Anna Adler",
		decisionLine(crew.SeatDecision{PositionCode: "GF", MemberID: "anna", Tier: crew.TierQualified}, names))
	assert.Equal(t, "    ✗ GF     Anna Adler  ⚠ missing qualification: GF",
		decisionLine(crew.SeatDecision{PositionCode: "GF", MemberID: "anna", Tier: crew.TierUnqualified,
			Warning: true, WarningText: "missing qualification: GF"}, names))
	assert.Equal(t, "    - TF     cleared, member moved to an earlier seat",
		decisionLine(crew.SeatDecision{PositionCode: "TF"}, names))
}
