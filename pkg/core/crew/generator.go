package crew

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	ErrNoMembersPresent   = errors.New("no members marked present")
	ErrNoVehiclesSelected = errors.New("no vehicles selected")
)

// GenerationConfig contains everything a single generation run reads
type GenerationConfig struct {
	// Members are the members present at the duty and available for service
	Members []*Member

	// Vehicles are all vehicles linked to the duty
	Vehicles []Vehicle

	// SelectedVehicleIDs optionally restricts the run to a subset of the duty's vehicles (empty = all)
	SelectedVehicleIDs []string

	// Existing are the duty's assignments before the run
	Existing []ExistingAssignment

	// Graph resolves the covers relation
	Graph *QualificationGraph

	// BreathingApparatus is the policy used for seats requiring breathing apparatus
	BreathingApparatus BreathingApparatusPolicy

	// History provides fairness counts
	History FairnessHistory

	// AsOf is the reference date for certifications and the fairness year (the duty date)
	AsOf time.Time

	// Rand breaks ties between equally ranked candidates. A time-seeded source is used when nil.
	Rand *rand.Rand
}

// SeatDecision is the assignment the run wants written for one seat.
// An empty MemberID clears the seat.
type SeatDecision struct {
	VehicleID    string
	SeatID       string
	PositionCode string
	MemberID     string

	Tier        Tier
	Warning     bool
	WarningText string

	FairnessScore   int
	PreferenceBonus int

	// CandidateCount is the number of members that were ranked for the seat
	CandidateCount int
}

// SkipReason explains why a seat was left untouched
type SkipReason string

const (
	SkipProtected            SkipReason = "assignment is locked or confirmed"
	SkipUnknownQualification SkipReason = "seat references an unknown qualification"
	SkipNoCandidates         SkipReason = "no unclaimed members left"
	SkipNoSeats              SkipReason = "vehicle has no seats"
)

// SkippedSeat is a seat the run did not write
type SkippedSeat struct {
	VehicleID string
	SeatID    string
	Reason    SkipReason
	Detail    string
}

// GenerationOutcome represents the result of a generation run
type GenerationOutcome struct {
	// Decisions are the seat assignments to upsert, in staffing order
	Decisions []SeatDecision

	// Skipped are the seats left as they were
	Skipped []SkippedSeat

	FilledCount  int
	WarningCount int

	// ClearedCount is the number of decisions emptying a seat whose suggested member
	// was moved to an earlier seat by this run
	ClearedCount int

	// UnfilledRequired lists required seats the run left without a member
	UnfilledRequired []string
}

type plannedSeat struct {
	vehicle Vehicle
	seat    Seat
}

// Generate staffs the duty's seats greedily, vehicle by vehicle in priority order and seat by seat
// in seat order. It does not write anything: the caller persists the decisions.
func Generate(config GenerationConfig) (*GenerationOutcome, error) {
	if len(config.Members) == 0 {
		return nil, ErrNoMembersPresent
	}

	vehicles := selectVehicles(config.Vehicles, config.SelectedVehicleIDs)
	if len(vehicles) == 0 {
		return nil, ErrNoVehiclesSelected
	}

	rng := config.Rand
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}

	existingBySeat := make(map[string]ExistingAssignment, len(config.Existing))
	for _, existing := range config.Existing {
		existingBySeat[existing.SeatID] = existing
	}

	outcome := &GenerationOutcome{}
	planned, touchedSeats := planSeats(vehicles, existingBySeat, config.Graph, outcome)

	// Members sitting on seats this run will not write stay where they are
	claimed := mapset.NewThreadUnsafeSet[string]()
	for _, existing := range config.Existing {
		if existing.MemberID == "" || existing.Status == StatusCancelled {
			continue
		}
		if !touchedSeats.Contains(existing.SeatID) {
			claimed.Add(existing.MemberID)
		}
	}

	evaluator := SeatEvaluator{
		Graph:              config.Graph,
		BreathingApparatus: config.BreathingApparatus,
		AsOf:               config.AsOf,
	}

	for _, p := range planned {
		pool := make([]*Member, 0, len(config.Members))
		for _, member := range config.Members {
			if !claimed.Contains(member.ID) {
				pool = append(pool, member)
			}
		}

		if len(pool) == 0 {
			existing, ok := existingBySeat[p.seat.ID]
			hasMember := ok && existing.MemberID != "" && existing.Status != StatusCancelled

			// The previous member was given an earlier seat in this run
			if hasMember && claimed.Contains(existing.MemberID) {
				outcome.Decisions = append(outcome.Decisions, SeatDecision{
					VehicleID:    p.vehicle.ID,
					SeatID:       p.seat.ID,
					PositionCode: p.seat.PositionCode,
				})
				outcome.ClearedCount++
				hasMember = false
			} else {
				outcome.Skipped = append(outcome.Skipped, SkippedSeat{
					VehicleID: p.vehicle.ID,
					SeatID:    p.seat.ID,
					Reason:    SkipNoCandidates,
				})
			}

			if p.seat.Required && !hasMember {
				outcome.UnfilledRequired = append(outcome.UnfilledRequired, p.seat.ID)
			}
			continue
		}

		candidates := ScoreCandidates(p.seat, pool, evaluator, config.History)
		RankCandidates(candidates, rng)
		best := candidates[0]

		decision := SeatDecision{
			VehicleID:       p.vehicle.ID,
			SeatID:          p.seat.ID,
			PositionCode:    p.seat.PositionCode,
			MemberID:        best.Member.ID,
			Tier:            best.Tier,
			Warning:         !best.Qualified(),
			WarningText:     best.WarningText(),
			FairnessScore:   best.FairnessScore,
			PreferenceBonus: best.PreferenceBonus,
			CandidateCount:  len(candidates),
		}
		outcome.Decisions = append(outcome.Decisions, decision)
		outcome.FilledCount++
		if decision.Warning {
			outcome.WarningCount++
		}

		claimed.Add(best.Member.ID)
	}

	return outcome, nil
}

// selectVehicles filters the duty's vehicles to the selection and orders them by priority then call sign
func selectVehicles(vehicles []Vehicle, selectedIDs []string) []Vehicle {
	var selected []Vehicle
	if len(selectedIDs) == 0 {
		selected = slices.Clone(vehicles)
	} else {
		wanted := mapset.NewThreadUnsafeSet(selectedIDs...)
		for _, v := range vehicles {
			if wanted.Contains(v.ID) {
				selected = append(selected, v)
			}
		}
	}

	slices.SortStableFunc(selected, func(a, b Vehicle) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return cmp.Compare(a.CallSign, b.CallSign)
	})
	return selected
}

// planSeats lists the seats the run will try to staff and records the ones it skips up front.
// It returns the planned seats and the IDs of seats the run may write.
func planSeats(vehicles []Vehicle, existingBySeat map[string]ExistingAssignment, graph *QualificationGraph, outcome *GenerationOutcome) ([]plannedSeat, mapset.Set[string]) {
	var planned []plannedSeat
	touched := mapset.NewThreadUnsafeSet[string]()

	for _, vehicle := range vehicles {
		if len(vehicle.Seats) == 0 {
			outcome.Skipped = append(outcome.Skipped, SkippedSeat{VehicleID: vehicle.ID, Reason: SkipNoSeats})
			continue
		}

		seats := slices.Clone(vehicle.Seats)
		slices.SortStableFunc(seats, func(a, b Seat) int { return a.SeatNumber - b.SeatNumber })

		for _, seat := range seats {
			if existing, ok := existingBySeat[seat.ID]; ok && existing.Status.IsProtected() {
				outcome.Skipped = append(outcome.Skipped, SkippedSeat{
					VehicleID: vehicle.ID,
					SeatID:    seat.ID,
					Reason:    SkipProtected,
					Detail:    string(existing.Status),
				})
				continue
			}

			if unknown := unknownCodes(seat, graph); len(unknown) > 0 {
				outcome.Skipped = append(outcome.Skipped, SkippedSeat{
					VehicleID: vehicle.ID,
					SeatID:    seat.ID,
					Reason:    SkipUnknownQualification,
					Detail:    fmt.Sprint(unknown),
				})
				continue
			}

			planned = append(planned, plannedSeat{vehicle: vehicle, seat: seat})
			touched.Add(seat.ID)
		}
	}

	return planned, touched
}

func unknownCodes(seat Seat, graph *QualificationGraph) []string {
	if graph == nil {
		return nil
	}
	var unknown []string
	for _, code := range seat.QualificationCodes() {
		if !graph.Has(code) && !slices.Contains(unknown, code) {
			unknown = append(unknown, code)
		}
	}
	return unknown
}
