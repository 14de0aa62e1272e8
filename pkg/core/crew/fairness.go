package crew

import (
	"cmp"
	"slices"
	"time"
)

// FairnessHistory answers how often a member already served a position in a year.
// Lower counts rank better.
type FairnessHistory interface {
	AssignmentCount(memberID, positionCode string, year int) int
}

// HistoryEntry is one completed assignment as recorded in the history fact table
type HistoryEntry struct {
	MemberID     string
	VehicleID    string
	PositionCode string
	DutyType     string
	DutyDate     time.Time
}

// PositionCounts is a precomputed (member, position) -> count table for a single year.
// Storage layers return this shape from an aggregate query.
type PositionCounts struct {
	Year   int
	Counts map[string]map[string]int
}

// AssignmentCount implements FairnessHistory; other years count as zero
func (p PositionCounts) AssignmentCount(memberID, positionCode string, year int) int {
	if year != p.Year {
		return 0
	}
	return p.Counts[memberID][positionCode]
}

// FairnessScore is a yearly per-member aggregate of the history
type FairnessScore struct {
	MemberID        string
	Year            int
	TotalDuties     int
	TotalByVehicle  map[string]int
	TotalByPosition map[string]int
	LastDutyDate    time.Time
}

// ComputeFairnessScores aggregates the entries of the given year into one score per member,
// sorted by total duties descending, then member ID.
func ComputeFairnessScores(entries []HistoryEntry, year int) []FairnessScore {
	byMember := make(map[string]*FairnessScore)
	for _, e := range entries {
		if e.DutyDate.Year() != year {
			continue
		}
		score, ok := byMember[e.MemberID]
		if !ok {
			score = &FairnessScore{
				MemberID:        e.MemberID,
				Year:            year,
				TotalByVehicle:  make(map[string]int),
				TotalByPosition: make(map[string]int),
			}
			byMember[e.MemberID] = score
		}
		score.TotalDuties++
		score.TotalByVehicle[e.VehicleID]++
		score.TotalByPosition[e.PositionCode]++
		if e.DutyDate.After(score.LastDutyDate) {
			score.LastDutyDate = e.DutyDate
		}
	}

	scores := make([]FairnessScore, 0, len(byMember))
	for _, score := range byMember {
		scores = append(scores, *score)
	}
	slices.SortFunc(scores, func(a, b FairnessScore) int {
		if a.TotalDuties != b.TotalDuties {
			return b.TotalDuties - a.TotalDuties
		}
		return cmp.Compare(a.MemberID, b.MemberID)
	})
	return scores
}
