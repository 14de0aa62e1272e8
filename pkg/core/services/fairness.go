package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// FairnessReportStore defines the database operations needed for fairness statistics
type FairnessReportStore interface {
	GetAssignmentHistory(ctx context.Context, year int) ([]db.AssignmentHistory, error)
}

// RefreshFairnessStore additionally stores the snapshot
type RefreshFairnessStore interface {
	FairnessReportStore
	ReplaceFairnessScores(ctx context.Context, year int, scores []db.FairnessScore) error
}

// FairnessReport computes per-member totals for a year from the assignment history
func FairnessReport(ctx context.Context, database FairnessReportStore, logger *zap.Logger, year int) ([]crew.FairnessScore, error) {
	logger.Debug("Fetching assignment history", zap.Int("year", year))
	history, err := database.GetAssignmentHistory(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment history: %w", err)
	}
	logger.Debug("Found history rows", zap.Int("count", len(history)))

	entries := make([]crew.HistoryEntry, len(history))
	for i, h := range history {
		entries[i] = crew.HistoryEntry{
			MemberID:     h.MemberID,
			VehicleID:    h.VehicleID,
			PositionCode: h.PositionCode,
			DutyType:     h.DutyType,
			DutyDate:     h.DutyDate,
		}
	}

	return crew.ComputeFairnessScores(entries, year), nil
}

// RefreshFairness recomputes the year's scores and replaces the stored snapshot
func RefreshFairness(ctx context.Context, database RefreshFairnessStore, logger *zap.Logger, year int) ([]crew.FairnessScore, error) {
	scores, err := FairnessReport(ctx, database, logger, year)
	if err != nil {
		return nil, err
	}

	rows := make([]db.FairnessScore, len(scores))
	for i, s := range scores {
		rows[i] = db.FairnessScore{
			MemberID:        s.MemberID,
			Year:            year,
			TotalDuties:     s.TotalDuties,
			TotalByVehicle:  s.TotalByVehicle,
			TotalByPosition: s.TotalByPosition,
		}
		if !s.LastDutyDate.IsZero() {
			last := s.LastDutyDate
			rows[i].LastDutyDate = &last
		}
	}

	if err := database.ReplaceFairnessScores(ctx, year, rows); err != nil {
		return nil, fmt.Errorf("failed to store fairness scores: %w", err)
	}

	logger.Info("Fairness scores refreshed", zap.Int("year", year), zap.Int("members", len(rows)))
	return scores, nil
}
