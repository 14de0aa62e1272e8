package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyKey struct {
	memberID     string
	positionCode string
	year         int
}

// historyIndex counts history entries by member, position and year
type historyIndex map[historyKey]int

func newHistoryIndex(entries []HistoryEntry) historyIndex {
	idx := make(historyIndex)
	for _, e := range entries {
		idx[historyKey{e.MemberID, e.PositionCode, e.DutyDate.Year()}]++
	}
	return idx
}

func (h historyIndex) AssignmentCount(memberID, positionCode string, year int) int {
	return h[historyKey{memberID, positionCode, year}]
}

func TestPositionCounts_OtherYearIsZero(t *testing.T) {
	counts := PositionCounts{Year: 2026, Counts: map[string]map[string]int{"m1": {"GF": 3}}}

	assert.Equal(t, 3, counts.AssignmentCount("m1", "GF", 2026))
	assert.Equal(t, 0, counts.AssignmentCount("m1", "GF", 2025))
	assert.Equal(t, 0, counts.AssignmentCount("m2", "GF", 2026))
}

func TestComputeFairnessScores(t *testing.T) {
	entries := []HistoryEntry{
		{MemberID: "m1", VehicleID: "hlf", PositionCode: "GF", DutyDate: date(2026, 1, 3)},
		{MemberID: "m1", VehicleID: "lf", PositionCode: "MA", DutyDate: date(2026, 4, 9)},
		{MemberID: "m2", VehicleID: "hlf", PositionCode: "TM", DutyDate: date(2026, 2, 1)},
		{MemberID: "m3", VehicleID: "hlf", PositionCode: "TM", DutyDate: date(2026, 2, 1)},
		{MemberID: "m2", VehicleID: "hlf", PositionCode: "TM", DutyDate: date(2025, 2, 1)},
	}

	scores := ComputeFairnessScores(entries, 2026)

	require.Len(t, scores, 3)
	assert.Equal(t, "m1", scores[0].MemberID)
	assert.Equal(t, 2, scores[0].TotalDuties)
	assert.Equal(t, map[string]int{"hlf": 1, "lf": 1}, scores[0].TotalByVehicle)
	assert.Equal(t, map[string]int{"GF": 1, "MA": 1}, scores[0].TotalByPosition)
	assert.Equal(t, date(2026, 4, 9), scores[0].LastDutyDate)

	assert.Equal(t, "m2", scores[1].MemberID)
	assert.Equal(t, 1, scores[1].TotalDuties)
	assert.Equal(t, "m3", scores[2].MemberID)
}
