package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// CatalogReader reads the qualification catalog and the stored covers graph
type CatalogReader interface {
	GetQualifications(ctx context.Context) ([]db.Qualification, error)
	GetQualificationCovers(ctx context.Context) ([]db.QualificationCover, error)
}

// MemberProfileReader reads what the engine needs to know about members
type MemberProfileReader interface {
	GetQualificationGrants(ctx context.Context, memberIDs []string) ([]db.QualificationGrant, error)
	GetMedicalExams(ctx context.Context, memberIDs []string) ([]db.MedicalExam, error)
	GetExerciseRecords(ctx context.Context, memberIDs []string, since time.Time) ([]db.ExerciseRecord, error)
}

// SeatReader reads vehicle seats and their rules
type SeatReader interface {
	GetSeats(ctx context.Context, vehicleIDs []string) ([]db.Seat, error)
	GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error)
}

// ErrDutyClosed is returned when a completed or cancelled duty would be changed
var ErrDutyClosed = errors.New("duty is closed")

// ensureDutyOpen rejects changes to completed and cancelled duties
func ensureDutyOpen(duty *db.Duty) error {
	if duty.Status == db.DutyStatusCompleted || duty.Status == db.DutyStatusCancelled {
		return fmt.Errorf("%w: duty %s is %s", ErrDutyClosed, duty.ID, duty.Status)
	}
	return nil
}

var dutyLocks sync.Map

// lockDuty serializes work on one duty within this process. The store adds its own lock across processes.
func lockDuty(dutyID string) func() {
	m, _ := dutyLocks.LoadOrStore(dutyID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadQualificationGraph builds the resolver from the stored catalog and covers edges
func loadQualificationGraph(ctx context.Context, store CatalogReader) (*crew.QualificationGraph, error) {
	qualifications, err := store.GetQualifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualifications: %w", err)
	}

	covers, err := store.GetQualificationCovers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualification covers: %w", err)
	}

	codes := make([]string, len(qualifications))
	for i, q := range qualifications {
		codes[i] = q.Code
	}

	return crew.NewQualificationGraph(codes, toCrewCovers(covers)), nil
}

func toCrewCovers(covers []db.QualificationCover) []crew.Cover {
	result := make([]crew.Cover, len(covers))
	for i, c := range covers {
		result[i] = crew.Cover{From: c.FromCode, To: c.ToCode}
	}
	return result
}

// loadMembers attaches grants, exams and the exercises inside the policy window to the members
func loadMembers(
	ctx context.Context,
	store MemberProfileReader,
	members []db.Member,
	policy crew.BreathingApparatusPolicy,
	asOf time.Time,
) ([]*crew.Member, error) {
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, len(members))
	byID := make(map[string]*crew.Member, len(members))
	result := make([]*crew.Member, len(members))
	for i, m := range members {
		ids[i] = m.ID
		result[i] = crew.NewMember(m.ID, m.DisplayName())
		byID[m.ID] = result[i]
	}

	grants, err := store.GetQualificationGrants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualification grants: %w", err)
	}
	for _, g := range grants {
		if m, ok := byID[g.MemberID]; ok {
			m.Qualifications.Add(g.QualificationCode)
		}
	}

	exams, err := store.GetMedicalExams(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch medical exams: %w", err)
	}
	for _, e := range exams {
		m, ok := byID[e.MemberID]
		if !ok {
			continue
		}
		exam := crew.MedicalExam{ExamTypeCode: e.ExamTypeCode, ExamDate: e.ExamDate, Passed: e.Passed}
		if e.ValidUntil != nil {
			exam.ValidUntil = *e.ValidUntil
		}
		m.MedicalExams = append(m.MedicalExams, exam)
	}

	since := crew.DateOnly(asOf).AddDate(0, 0, -policy.ExerciseWindowDays)
	exercises, err := store.GetExerciseRecords(ctx, ids, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exercise records: %w", err)
	}
	for _, x := range exercises {
		if m, ok := byID[x.MemberID]; ok {
			m.Exercises = append(m.Exercises, crew.ExerciseRecord{QualificationCode: x.QualificationCode, ExerciseDate: x.ExerciseDate})
		}
	}

	return result, nil
}

// loadVehicles attaches seats and seat rules to the vehicles
func loadVehicles(ctx context.Context, store SeatReader, vehicles []db.Vehicle) ([]crew.Vehicle, error) {
	if len(vehicles) == 0 {
		return nil, nil
	}

	vehicleIDs := make([]string, len(vehicles))
	for i, v := range vehicles {
		vehicleIDs[i] = v.ID
	}

	seats, err := store.GetSeats(ctx, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seats: %w", err)
	}

	seatIDs := make([]string, len(seats))
	for i, s := range seats {
		seatIDs[i] = s.ID
	}

	rules, err := store.GetSeatRules(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seat rules: %w", err)
	}
	rulesBySeat := make(map[string][]db.SeatRule)
	for _, r := range rules {
		rulesBySeat[r.SeatID] = append(rulesBySeat[r.SeatID], r)
	}

	seatsByVehicle := make(map[string][]crew.Seat)
	for _, s := range seats {
		seatsByVehicle[s.VehicleID] = append(seatsByVehicle[s.VehicleID], toCrewSeat(s, rulesBySeat[s.ID]))
	}

	result := make([]crew.Vehicle, len(vehicles))
	for i, v := range vehicles {
		result[i] = crew.Vehicle{
			ID:       v.ID,
			CallSign: v.CallSign,
			Priority: v.Priority,
			Seats:    seatsByVehicle[v.ID],
		}
	}
	return result, nil
}

func toCrewSeat(s db.Seat, rules []db.SeatRule) crew.Seat {
	seat := crew.Seat{
		ID:                         s.ID,
		PositionCode:               s.PositionCode,
		SeatNumber:                 s.SeatNumber,
		Required:                   s.IsRequired,
		RequiresBreathingApparatus: s.RequiresBreathingApparatus,
	}
	for _, r := range rules {
		seat.Rules = append(seat.Rules, crew.SeatRule{
			Kind:           crew.RuleKind(r.RuleType),
			Qualifications: r.QualificationCodes,
			AllRequired:    r.AllRequired,
			WarningText:    r.WarningText,
			Priority:       r.Priority,
		})
	}
	return seat
}

// resolveVehicleRefs maps call signs or IDs onto the duty's vehicles.
// Unknown references are returned separately.
func resolveVehicleRefs(vehicles []db.Vehicle, refs []string) (ids []string, unknown []string) {
	for _, ref := range refs {
		found := false
		for _, v := range vehicles {
			if v.ID == ref || strings.EqualFold(v.CallSign, ref) {
				ids = append(ids, v.ID)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, ref)
		}
	}
	return ids, unknown
}
