package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

var _ db.Database = (*DB)(nil)

const assignmentColumns = `id, duty_id, seat_id, member_id, status, has_warning, warning_text,
		       override_reason, overridden_by, overridden_at, updated_at`

func scanAssignment(row pgx.Row) (db.Assignment, error) {
	var a db.Assignment
	var memberID *string
	err := row.Scan(&a.ID, &a.DutyID, &a.SeatID, &memberID, &a.Status, &a.HasWarning, &a.WarningText,
		&a.OverrideReason, &a.OverriddenBy, &a.OverriddenAt, &a.UpdatedAt)
	a.MemberID = deref(memberID)
	return a, err
}

// GetAssignments retrieves every assignment of a duty
func (d *DB) GetAssignments(ctx context.Context, dutyID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE duty_id = $1
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// GetAssignment retrieves the assignment of one seat for a duty
func (d *DB) GetAssignment(ctx context.Context, dutyID, seatID string) (*db.Assignment, error) {
	a, err := scanAssignment(d.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE duty_id = $1 AND seat_id = $2
	`, dutyID, seatID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}
	return &a, nil
}

// ApplyGeneratedAssignments writes a generation run's assignments in one transaction under the duty lock.
// Rows that are locked or confirmed in the database are left untouched; the returned count excludes them.
func (d *DB) ApplyGeneratedAssignments(ctx context.Context, dutyID string, assignments []db.Assignment) (int, error) {
	written := 0
	err := d.inDutyTx(ctx, dutyID, func(tx pgx.Tx) error {
		for _, a := range assignments {
			tag, err := tx.Exec(ctx, `
				INSERT INTO assignment (id, duty_id, seat_id, member_id, status, has_warning, warning_text, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
				ON CONFLICT (duty_id, seat_id) DO UPDATE
				SET member_id = EXCLUDED.member_id,
				    status = EXCLUDED.status,
				    has_warning = EXCLUDED.has_warning,
				    warning_text = EXCLUDED.warning_text,
				    override_reason = '',
				    overridden_by = '',
				    overridden_at = NULL,
				    updated_at = NOW()
				WHERE assignment.status NOT IN ('locked', 'confirmed')
			`, a.ID, dutyID, a.SeatID, nullable(a.MemberID), a.Status, a.HasWarning, a.WarningText)
			if err != nil {
				return fmt.Errorf("failed to upsert assignment for seat %s: %w", a.SeatID, err)
			}
			written += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertAssignment creates or replaces the assignment of one seat, whatever its current status
func (d *DB) UpsertAssignment(ctx context.Context, a *db.Assignment) error {
	return d.inDutyTx(ctx, a.DutyID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, duty_id, seat_id, member_id, status, has_warning, warning_text,
			                        override_reason, overridden_by, overridden_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (duty_id, seat_id) DO UPDATE
			SET member_id = EXCLUDED.member_id,
			    status = EXCLUDED.status,
			    has_warning = EXCLUDED.has_warning,
			    warning_text = EXCLUDED.warning_text,
			    override_reason = EXCLUDED.override_reason,
			    overridden_by = EXCLUDED.overridden_by,
			    overridden_at = EXCLUDED.overridden_at,
			    updated_at = NOW()
		`, a.ID, a.DutyID, a.SeatID, nullable(a.MemberID), a.Status, a.HasWarning, a.WarningText,
			a.OverrideReason, a.OverriddenBy, a.OverriddenAt)
		if err != nil {
			return fmt.Errorf("failed to upsert assignment: %w", err)
		}
		return nil
	})
}

// SetAssignmentStatus changes the status of an existing assignment
func (d *DB) SetAssignmentStatus(ctx context.Context, dutyID, seatID, status string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE assignment SET status = $3, updated_at = NOW()
		WHERE duty_id = $1 AND seat_id = $2
	`, dutyID, seatID, status)
	if err != nil {
		return fmt.Errorf("failed to set assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
	}
	return nil
}
