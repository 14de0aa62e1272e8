package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// CompleteDutyResult contains the history recorded for a duty
type CompleteDutyResult struct {
	DutyID string

	// Recorded is the number of history rows written by this call. Rows recorded by an earlier call are not counted.
	Recorded int

	// Seats is the number of filled seats the duty was completed with
	Seats int
}

// CompleteDutyStore defines the database operations needed for completing a duty
type CompleteDutyStore interface {
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetDutySeats(ctx context.Context, dutyID string) ([]db.DutySeat, error)
	CompleteDuty(ctx context.Context, dutyID string, history []db.AssignmentHistory) (int, error)
}

// CompleteDuty appends a history row for every filled, non-cancelled seat and marks the duty completed.
// Running it again for the same duty records nothing new.
func CompleteDuty(
	ctx context.Context,
	database CompleteDutyStore,
	logger *zap.Logger,
	dutyID string,
) (*CompleteDutyResult, error) {
	logger.Debug("Starting completeDuty", zap.String("duty_id", dutyID))

	unlock := lockDuty(dutyID)
	defer unlock()

	duty, err := database.GetDuty(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty: %w", err)
	}
	if duty.Status == db.DutyStatusCancelled {
		return nil, fmt.Errorf("%w: duty %s is cancelled", ErrDutyClosed, duty.ID)
	}

	seats, err := database.GetDutySeats(ctx, duty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty seats: %w", err)
	}

	history := buildHistory(duty, seats)
	logger.Debug("Built history rows", zap.Int("count", len(history)))

	recorded, err := database.CompleteDuty(ctx, duty.ID, history)
	if err != nil {
		return nil, fmt.Errorf("failed to complete duty: %w", err)
	}

	logger.Info("Duty completed",
		zap.String("duty_id", duty.ID),
		zap.Int("seats", len(history)),
		zap.Int("recorded", recorded))

	return &CompleteDutyResult{DutyID: duty.ID, Recorded: recorded, Seats: len(history)}, nil
}

func buildHistory(duty *db.Duty, seats []db.DutySeat) []db.AssignmentHistory {
	var history []db.AssignmentHistory
	for _, s := range seats {
		if s.MemberID == "" || s.AssignmentStatus == string(crew.StatusCancelled) {
			continue
		}
		history = append(history, db.AssignmentHistory{
			ID:                 uuid.NewString(),
			DutyID:             duty.ID,
			SeatID:             s.SeatID,
			MemberID:           s.MemberID,
			VehicleID:          s.VehicleID,
			PositionCode:       s.PositionCode,
			DutyType:           duty.DutyType,
			DutyDate:           duty.DutyDate,
			Year:               duty.DutyDate.Year(),
			Month:              int(duty.DutyDate.Month()),
			QualificationValid: !s.HasWarning,
		})
	}
	return history
}
