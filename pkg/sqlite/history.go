package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// CompleteDuty records the duty's history rows and marks the duty completed in one transaction.
// History rows already recorded for a (duty, seat) are kept; the returned count covers new rows only.
func (d *DB) CompleteDuty(ctx context.Context, dutyID string, history []db.AssignmentHistory) (int, error) {
	inserted := 0
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		for _, h := range history {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO assignment_history (id, duty_id, seat_id, member_id, vehicle_id, position_code,
				                                duty_type, duty_date, year, month, qualification_valid)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (duty_id, seat_id) DO NOTHING
			`, h.ID, dutyID, h.SeatID, h.MemberID, h.VehicleID, h.PositionCode,
				h.DutyType, formatDate(h.DutyDate), h.Year, h.Month, h.QualificationValid)
			if err != nil {
				return fmt.Errorf("failed to insert assignment history for seat %s: %w", h.SeatID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			inserted += int(n)
		}

		res, err := tx.ExecContext(ctx, `UPDATE duty SET status = ? WHERE id = ?`, db.DutyStatusCompleted, dutyID)
		if err != nil {
			return fmt.Errorf("failed to mark duty completed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
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
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, duty_id, seat_id, member_id, vehicle_id, position_code,
		       duty_type, duty_date, year, month, qualification_valid
		FROM assignment_history
		WHERE year = ?
		ORDER BY duty_date
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment history: %w", err)
	}
	defer rows.Close()

	var history []db.AssignmentHistory
	for rows.Next() {
		var h db.AssignmentHistory
		var dutyDate string
		if err := rows.Scan(&h.ID, &h.DutyID, &h.SeatID, &h.MemberID, &h.VehicleID, &h.PositionCode,
			&h.DutyType, &dutyDate, &h.Year, &h.Month, &h.QualificationValid); err != nil {
			return nil, fmt.Errorf("failed to scan assignment history: %w", err)
		}
		if h.DutyDate, err = parseDate(dutyDate); err != nil {
			return nil, fmt.Errorf("failed to parse duty_date: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment history: %w", err)
	}

	return history, nil
}

// GetPositionCounts counts history rows per member and position for a year
func (d *DB) GetPositionCounts(ctx context.Context, year int) ([]db.PositionCount, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT member_id, position_code, COUNT(*)
		FROM assignment_history
		WHERE year = ?
		GROUP BY member_id, position_code
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query position counts: %w", err)
	}
	defer rows.Close()

	var counts []db.PositionCount
	for rows.Next() {
		var c db.PositionCount
		if err := rows.Scan(&c.MemberID, &c.PositionCode, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan position count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position counts: %w", err)
	}

	return counts, nil
}

// ReplaceFairnessScores replaces the snapshot of a year with the given scores
func (d *DB) ReplaceFairnessScores(ctx context.Context, year int, scores []db.FairnessScore) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fairness_score WHERE year = ?`, year); err != nil {
			return fmt.Errorf("failed to clear fairness scores: %w", err)
		}

		for _, s := range scores {
			byVehicle, err := json.Marshal(nonNilCounts(s.TotalByVehicle))
			if err != nil {
				return fmt.Errorf("failed to encode vehicle totals: %w", err)
			}
			byPosition, err := json.Marshal(nonNilCounts(s.TotalByPosition))
			if err != nil {
				return fmt.Errorf("failed to encode position totals: %w", err)
			}

			var lastDutyDate sql.NullString
			if s.LastDutyDate != nil {
				lastDutyDate = sql.NullString{String: formatDate(*s.LastDutyDate), Valid: true}
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO fairness_score (member_id, year, total_duties, total_by_vehicle, total_by_position, last_duty_date, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, `+nowSQL+`)
			`, s.MemberID, year, s.TotalDuties, string(byVehicle), string(byPosition), lastDutyDate)
			if err != nil {
				return fmt.Errorf("failed to insert fairness score: %w", err)
			}
		}
		return nil
	})
}

// GetFairnessScores retrieves the snapshot of a year
func (d *DB) GetFairnessScores(ctx context.Context, year int) ([]db.FairnessScore, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT member_id, year, total_duties, total_by_vehicle, total_by_position, last_duty_date, updated_at
		FROM fairness_score
		WHERE year = ?
		ORDER BY total_duties DESC, member_id
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query fairness scores: %w", err)
	}
	defer rows.Close()

	var scores []db.FairnessScore
	for rows.Next() {
		var s db.FairnessScore
		var byVehicle, byPosition, updatedAt string
		var lastDutyDate sql.NullString
		if err := rows.Scan(&s.MemberID, &s.Year, &s.TotalDuties, &byVehicle, &byPosition, &lastDutyDate, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fairness score: %w", err)
		}
		if err := json.Unmarshal([]byte(byVehicle), &s.TotalByVehicle); err != nil {
			return nil, fmt.Errorf("failed to decode vehicle totals: %w", err)
		}
		if err := json.Unmarshal([]byte(byPosition), &s.TotalByPosition); err != nil {
			return nil, fmt.Errorf("failed to decode position totals: %w", err)
		}
		if s.LastDutyDate, err = parseNullDate(lastDutyDate); err != nil {
			return nil, fmt.Errorf("failed to parse last_duty_date: %w", err)
		}
		if s.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		scores = append(scores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fairness scores: %w", err)
	}

	return scores, nil
}

func nonNilCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
