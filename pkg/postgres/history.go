package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// CompleteDuty records the duty's history rows and marks the duty completed in one transaction.
// History rows already recorded for a (duty, seat) are kept; the returned count covers new rows only.
func (d *DB) CompleteDuty(ctx context.Context, dutyID string, history []db.AssignmentHistory) (int, error) {
	inserted := 0
	err := d.inDutyTx(ctx, dutyID, func(tx pgx.Tx) error {
		for _, h := range history {
			tag, err := tx.Exec(ctx, `
				INSERT INTO assignment_history (id, duty_id, seat_id, member_id, vehicle_id, position_code,
				                                duty_type, duty_date, year, month, qualification_valid)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (duty_id, seat_id) DO NOTHING
			`, h.ID, dutyID, h.SeatID, h.MemberID, h.VehicleID, h.PositionCode,
				h.DutyType, h.DutyDate, h.Year, h.Month, h.QualificationValid)
			if err != nil {
				return fmt.Errorf("failed to insert assignment history for seat %s: %w", h.SeatID, err)
			}
			inserted += int(tag.RowsAffected())
		}

		tag, err := tx.Exec(ctx, `UPDATE duty SET status = $2 WHERE id = $1`, dutyID, db.DutyStatusCompleted)
		if err != nil {
			return fmt.Errorf("failed to mark duty completed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("duty %s: %w", dutyID, db.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetAssignmentHistory retrieves the history rows of a year
func (d *DB) GetAssignmentHistory(ctx context.Context, year int) ([]db.AssignmentHistory, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, duty_id, seat_id, member_id, vehicle_id, position_code,
		       duty_type, duty_date, year, month, qualification_valid
		FROM assignment_history
		WHERE year = $1
		ORDER BY duty_date
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment history: %w", err)
	}

	history, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.AssignmentHistory])
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment history: %w", err)
	}
	return history, nil
}

// GetPositionCounts counts history rows per member and position for a year
func (d *DB) GetPositionCounts(ctx context.Context, year int) ([]db.PositionCount, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT member_id, position_code, COUNT(*)::int AS count
		FROM assignment_history
		WHERE year = $1
		GROUP BY member_id, position_code
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query position counts: %w", err)
	}

	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.PositionCount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan position counts: %w", err)
	}
	return counts, nil
}

// ReplaceFairnessScores replaces the snapshot of a year with the given scores
func (d *DB) ReplaceFairnessScores(ctx context.Context, year int, scores []db.FairnessScore) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fairness_score WHERE year = $1`, year); err != nil {
		return fmt.Errorf("failed to clear fairness scores: %w", err)
	}

	for _, s := range scores {
		_, err := tx.Exec(ctx, `
			INSERT INTO fairness_score (member_id, year, total_duties, total_by_vehicle, total_by_position, last_duty_date, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
		`, s.MemberID, year, s.TotalDuties, s.TotalByVehicle, s.TotalByPosition, s.LastDutyDate)
		if err != nil {
			return fmt.Errorf("failed to insert fairness score: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetFairnessScores retrieves the snapshot of a year
func (d *DB) GetFairnessScores(ctx context.Context, year int) ([]db.FairnessScore, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT member_id, year, total_duties, total_by_vehicle, total_by_position, last_duty_date, updated_at
		FROM fairness_score
		WHERE year = $1
		ORDER BY total_duties DESC, member_id
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query fairness scores: %w", err)
	}

	scores, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.FairnessScore])
	if err != nil {
		return nil, fmt.Errorf("failed to scan fairness scores: %w", err)
	}
	return scores, nil
}
