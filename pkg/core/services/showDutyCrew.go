package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// DutyCrewStore defines the database operations needed for showing a duty's crew
type DutyCrewStore interface {
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetDutySeats(ctx context.Context, dutyID string) ([]db.DutySeat, error)
}

// DutyCrew is a duty with its seats in staffing order
type DutyCrew struct {
	Duty  *db.Duty
	Seats []db.DutySeat

	Filled   int
	Warnings int
}

// ShowDutyCrew loads a duty's seats and their current assignments
func ShowDutyCrew(ctx context.Context, database DutyCrewStore, dutyID string) (*DutyCrew, error) {
	duty, err := database.GetDuty(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty: %w", err)
	}

	seats, err := database.GetDutySeats(ctx, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch duty seats: %w", err)
	}

	dc := &DutyCrew{Duty: duty, Seats: seats}
	for _, s := range seats {
		if s.MemberID == "" || s.AssignmentStatus == string(crew.StatusCancelled) {
			continue
		}
		dc.Filled++
		if s.HasWarning {
			dc.Warnings++
		}
	}
	return dc, nil
}
