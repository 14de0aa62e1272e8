package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// StatusAction is an operator action on one seat's assignment
type StatusAction string

const (
	ActionLock    StatusAction = "lock"
	ActionConfirm StatusAction = "confirm"
	ActionCancel  StatusAction = "cancel"
	ActionReset   StatusAction = "reset"
)

var statusForAction = map[StatusAction]crew.AssignmentStatus{
	ActionLock:    crew.StatusLocked,
	ActionConfirm: crew.StatusConfirmed,
	ActionCancel:  crew.StatusCancelled,
	ActionReset:   crew.StatusSuggested,
}

// SetAssignmentStatusStore defines the database operations needed for changing an assignment's status
type SetAssignmentStatusStore interface {
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetAssignment(ctx context.Context, dutyID, seatID string) (*db.Assignment, error)
	SetAssignmentStatus(ctx context.Context, dutyID, seatID, status string) error
}

// SetAssignmentStatus locks, confirms, cancels or resets one seat's assignment.
// Locked and confirmed seats are kept by generation runs; reset hands the seat back to them.
func SetAssignmentStatus(
	ctx context.Context,
	database SetAssignmentStatusStore,
	logger *zap.Logger,
	dutyID, seatID string,
	action StatusAction,
) (*db.Assignment, error) {
	status, ok := statusForAction[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q (expected lock, confirm, cancel or reset)", action)
	}

	unlock := lockDuty(dutyID)
	defer unlock()

	duty, err := database.GetDuty(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty: %w", err)
	}
	if err := ensureDutyOpen(duty); err != nil {
		return nil, err
	}

	current, err := database.GetAssignment(ctx, dutyID, seatID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	if current.Status == string(status) {
		logger.Debug("Assignment already has status", zap.String("seat_id", seatID), zap.String("status", current.Status))
		return current, nil
	}

	if err := database.SetAssignmentStatus(ctx, dutyID, seatID, string(status)); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	logger.Info("Assignment status changed",
		zap.String("duty_id", dutyID),
		zap.String("seat_id", seatID),
		zap.String("from", current.Status),
		zap.String("to", string(status)))

	current.Status = string(status)
	return current, nil
}
