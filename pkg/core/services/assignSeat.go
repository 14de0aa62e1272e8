package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/internal/config"
	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

var (
	ErrQualificationCheckFailed = errors.New("qualification check failed")
	ErrOverrideReasonRequired   = errors.New("an override needs a reason")
	ErrMemberAlreadyAssigned    = errors.New("member already holds another seat on this duty")
	ErrMemberUnavailable        = errors.New("member is not available for service")
	ErrSeatNotOnDuty            = errors.New("seat does not belong to a vehicle of this duty")
)

// AssignSeatRequest describes a manual seat assignment. An empty MemberID clears the seat.
type AssignSeatRequest struct {
	DutyID   string
	SeatID   string
	MemberID string

	// Override accepts a member failing the qualification check. Reason is then required.
	Override bool
	Reason   string

	Actor string
	Now   time.Time
}

// AssignSeatResult contains the stored assignment and the qualification check behind it
type AssignSeatResult struct {
	Assignment *db.Assignment

	// Evaluation is nil when the seat was cleared
	Evaluation *crew.Evaluation

	Overridden bool
}

// AssignSeatStore defines the database operations needed for a manual assignment
type AssignSeatStore interface {
	CatalogReader
	MemberProfileReader
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetDutyVehicles(ctx context.Context, dutyID string) ([]db.Vehicle, error)
	GetSeat(ctx context.Context, seatID string) (*db.Seat, error)
	GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error)
	GetMember(ctx context.Context, memberID string) (*db.Member, error)
	GetAssignments(ctx context.Context, dutyID string) ([]db.Assignment, error)
	UpsertAssignment(ctx context.Context, assignment *db.Assignment) error
}

// AssignSeat puts a member on a seat, or clears it, as a confirmed assignment.
//
// The member is checked against the seat's rules on the duty date. A member failing the check is
// rejected unless the request overrides it, in which case the reason, actor and time are recorded.
// Members holding another non-cancelled seat on the duty are always rejected.
func AssignSeat(
	ctx context.Context,
	database AssignSeatStore,
	cfg *config.Config,
	logger *zap.Logger,
	req AssignSeatRequest,
) (*AssignSeatResult, error) {
	logger.Debug("Starting assignSeat",
		zap.String("duty_id", req.DutyID),
		zap.String("seat_id", req.SeatID),
		zap.String("member_id", req.MemberID),
		zap.Bool("override", req.Override))

	if req.Override && req.Reason == "" {
		return nil, ErrOverrideReasonRequired
	}

	unlock := lockDuty(req.DutyID)
	defer unlock()

	duty, err := database.GetDuty(ctx, req.DutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty: %w", err)
	}
	if err := ensureDutyOpen(duty); err != nil {
		return nil, err
	}

	seat, err := database.GetSeat(ctx, req.SeatID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seat: %w", err)
	}

	vehicles, err := database.GetDutyVehicles(ctx, duty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty vehicles: %w", err)
	}
	if !slices.ContainsFunc(vehicles, func(v db.Vehicle) bool { return v.ID == seat.VehicleID }) {
		return nil, fmt.Errorf("seat %s: %w", seat.ID, ErrSeatNotOnDuty)
	}

	assignments, err := database.GetAssignments(ctx, duty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	assignment := &db.Assignment{
		ID:     uuid.NewString(),
		DutyID: duty.ID,
		SeatID: seat.ID,
		Status: string(crew.StatusConfirmed),
	}
	for _, a := range assignments {
		if a.SeatID == seat.ID {
			assignment.ID = a.ID
			continue
		}
		if req.MemberID != "" && a.MemberID == req.MemberID && a.Status != string(crew.StatusCancelled) {
			return nil, fmt.Errorf("seat %s: %w", a.SeatID, ErrMemberAlreadyAssigned)
		}
	}

	result := &AssignSeatResult{Assignment: assignment}

	if req.MemberID == "" {
		if err := database.UpsertAssignment(ctx, assignment); err != nil {
			return nil, fmt.Errorf("failed to clear seat: %w", err)
		}
		logger.Info("Seat cleared", zap.String("duty_id", duty.ID), zap.String("seat_id", seat.ID))
		return result, nil
	}

	member, err := database.GetMember(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	if !member.IsAvailable() {
		return nil, fmt.Errorf("%s: %w", member.DisplayName(), ErrMemberUnavailable)
	}

	eval, err := evaluateForSeat(ctx, database, cfg, duty, *seat, *member)
	if err != nil {
		return nil, err
	}
	result.Evaluation = eval

	if eval.Tier == crew.TierUnqualified {
		if !req.Override {
			return result, fmt.Errorf("%w: %s", ErrQualificationCheckFailed, eval.WarningText())
		}
		overriddenAt := req.Now.UTC()
		assignment.OverrideReason = req.Reason
		assignment.OverriddenBy = req.Actor
		assignment.OverriddenAt = &overriddenAt
		result.Overridden = true
		logger.Warn("Qualification check overridden",
			zap.String("duty_id", duty.ID),
			zap.String("seat_id", seat.ID),
			zap.String("member", member.DisplayName()),
			zap.String("warnings", eval.WarningText()),
			zap.String("reason", req.Reason),
			zap.String("actor", req.Actor))
	}

	assignment.MemberID = member.ID
	assignment.HasWarning = !eval.Qualified()
	assignment.WarningText = eval.WarningText()

	if err := database.UpsertAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	logger.Info("Seat assigned",
		zap.String("duty_id", duty.ID),
		zap.String("seat_id", seat.ID),
		zap.String("member", member.DisplayName()),
		zap.String("tier", eval.Tier.String()))

	return result, nil
}

type seatEvaluationStore interface {
	CatalogReader
	MemberProfileReader
	GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error)
}

// evaluateForSeat runs the engine's qualification check for one member and seat on the duty date
func evaluateForSeat(
	ctx context.Context,
	database seatEvaluationStore,
	cfg *config.Config,
	duty *db.Duty,
	seat db.Seat,
	member db.Member,
) (*crew.Evaluation, error) {
	graph, err := loadQualificationGraph(ctx, database)
	if err != nil {
		return nil, err
	}

	rules, err := database.GetSeatRules(ctx, []string{seat.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seat rules: %w", err)
	}

	policy := cfg.BreathingApparatusPolicy()
	members, err := loadMembers(ctx, database, []db.Member{member}, policy, duty.DutyDate)
	if err != nil {
		return nil, err
	}

	evaluator := crew.SeatEvaluator{Graph: graph, BreathingApparatus: policy, AsOf: duty.DutyDate}
	eval := evaluator.Evaluate(members[0], toCrewSeat(seat, rules))
	return &eval, nil
}
