package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// MarkAttendanceStore defines the database operations needed for checking members in
type MarkAttendanceStore interface {
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetMember(ctx context.Context, memberID string) (*db.Member, error)
	GetAttendance(ctx context.Context, dutyID string) ([]db.Attendance, error)
	UpsertAttendance(ctx context.Context, attendance *db.Attendance) error
}

// MarkAttendance sets a member present or absent for a duty. Presence stamps the check-in time and actor,
// absence clears them.
func MarkAttendance(
	ctx context.Context,
	database MarkAttendanceStore,
	logger *zap.Logger,
	dutyID, memberID string,
	present bool,
	actor string,
	now time.Time,
) (*db.Attendance, error) {
	logger.Debug("Starting markAttendance",
		zap.String("duty_id", dutyID),
		zap.String("member_id", memberID),
		zap.Bool("present", present))

	duty, err := database.GetDuty(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty: %w", err)
	}
	if err := ensureDutyOpen(duty); err != nil {
		return nil, err
	}

	member, err := database.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	if present && !member.IsAvailable() {
		logger.Warn("Member checked in but not available for service; they will not be considered for seats",
			zap.String("member_id", member.ID),
			zap.String("status", member.Status),
			zap.Bool("is_active", member.IsActive))
	}

	records, err := database.GetAttendance(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance: %w", err)
	}

	attendance := &db.Attendance{ID: uuid.NewString(), DutyID: dutyID, MemberID: memberID}
	for _, r := range records {
		if r.MemberID == memberID {
			attendance.ID = r.ID
			break
		}
	}

	attendance.IsPresent = present
	if present {
		checkedIn := now.UTC()
		attendance.CheckedInAt = &checkedIn
		attendance.CheckedInBy = actor
	}

	if err := database.UpsertAttendance(ctx, attendance); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	logger.Info("Attendance updated",
		zap.String("duty_id", dutyID),
		zap.String("member", member.DisplayName()),
		zap.Bool("present", present))

	return attendance, nil
}
