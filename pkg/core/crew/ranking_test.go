package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateIDs(candidates []Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Member.ID
	}
	return ids
}

func TestRankCandidates_SortKeys(t *testing.T) {
	candidates := []Candidate{
		{Member: &Member{ID: "unqualified"}, Evaluation: Evaluation{Tier: TierUnqualified, PreferenceBonus: 5}},
		{Member: &Member{ID: "busy"}, Evaluation: Evaluation{Tier: TierQualified}, FairnessScore: 4},
		{Member: &Member{ID: "allowed"}, Evaluation: Evaluation{Tier: TierAllowed}},
		{Member: &Member{ID: "fresh-bonus"}, Evaluation: Evaluation{Tier: TierQualified, PreferenceBonus: 2}, FairnessScore: 1},
		{Member: &Member{ID: "fresh"}, Evaluation: Evaluation{Tier: TierQualified}, FairnessScore: 1},
		{Member: &Member{ID: "newest"}, Evaluation: Evaluation{Tier: TierQualified, PreferenceBonus: 0}, FairnessScore: 0},
	}

	RankCandidates(candidates, NewRand(7))

	assert.Equal(t, []string{"newest", "fresh-bonus", "fresh", "busy", "allowed", "unqualified"}, candidateIDs(candidates))
}

func TestRankCandidates_FixedSeedIsDeterministic(t *testing.T) {
	build := func() []Candidate {
		var c []Candidate
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			c = append(c, Candidate{Member: &Member{ID: id}})
		}
		return c
	}

	first := build()
	second := build()
	RankCandidates(first, NewRand(42))
	RankCandidates(second, NewRand(42))

	assert.Equal(t, candidateIDs(first), candidateIDs(second))
}

func TestRankCandidates_TiesAreNotDegenerate(t *testing.T) {
	wins := map[string]int{}

	for seed := uint64(0); seed < 200; seed++ {
		candidates := []Candidate{
			{Member: &Member{ID: "a"}, FairnessScore: 1},
			{Member: &Member{ID: "b"}, FairnessScore: 1},
		}
		RankCandidates(candidates, NewRand(seed))
		wins[candidates[0].Member.ID]++
	}

	assert.Greater(t, wins["a"], 0)
	assert.Greater(t, wins["b"], 0)
}

func TestScoreCandidates_UsesFairnessForPositionAndYear(t *testing.T) {
	ev := defaultEvaluator()
	history := newHistoryIndex([]HistoryEntry{
		{MemberID: "m1", PositionCode: "MA", DutyDate: date(2026, 2, 1)},
		{MemberID: "m1", PositionCode: "MA", DutyDate: date(2026, 3, 1)},
		{MemberID: "m1", PositionCode: "GF", DutyDate: date(2026, 3, 1)},
		{MemberID: "m1", PositionCode: "MA", DutyDate: date(2025, 3, 1)},
		{MemberID: "m2", PositionCode: "MA", DutyDate: date(2026, 4, 1)},
	})
	seat := Seat{ID: "s1", PositionCode: "MA", Rules: []SeatRule{RequiredRule("MA")}}

	candidates := ScoreCandidates(seat, []*Member{NewMember("m1", "", "MA"), NewMember("m2", "", "MA")}, ev, history)

	require.Len(t, candidates, 2)
	assert.Equal(t, 2, candidates[0].FairnessScore)
	assert.Equal(t, 1, candidates[1].FairnessScore)

	RankCandidates(candidates, NewRand(1))
	assert.Equal(t, "m2", candidates[0].Member.ID)
}
