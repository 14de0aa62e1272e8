package crew

import (
	"math/rand/v2"
	"slices"
)

// Candidate is a scored member for a single seat
type Candidate struct {
	Member *Member
	Evaluation

	// FairnessScore is the member's number of past assignments to the seat's position this year
	FairnessScore int
}

// ScoreCandidates evaluates every member of the pool for the seat.
// The pool must already exclude members claimed earlier in the run.
func ScoreCandidates(seat Seat, pool []*Member, evaluator SeatEvaluator, history FairnessHistory) []Candidate {
	candidates := make([]Candidate, 0, len(pool))
	year := evaluator.AsOf.Year()

	for _, member := range pool {
		candidate := Candidate{
			Member:     member,
			Evaluation: evaluator.Evaluate(member, seat),
		}
		if history != nil {
			candidate.FairnessScore = history.AssignmentCount(member.ID, seat.PositionCode, year)
		}
		candidates = append(candidates, candidate)
	}

	return candidates
}

// RankCandidates orders candidates best first: by tier, then fewer past assignments, then
// higher preference bonus.
//
// The slice is shuffled with rng before a stable sort, so candidates tied on every key end up
// in random order. A fixed seed gives a reproducible ranking.
func RankCandidates(candidates []Candidate, rng *rand.Rand) {
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	slices.SortStableFunc(candidates, compareCandidates)
}

func compareCandidates(a, b Candidate) int {
	if a.Tier != b.Tier {
		return int(a.Tier) - int(b.Tier)
	}
	if a.FairnessScore != b.FairnessScore {
		return a.FairnessScore - b.FairnessScore
	}
	return b.PreferenceBonus - a.PreferenceBonus
}

// NewRand returns a PCG-backed source seeded from a single value
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
