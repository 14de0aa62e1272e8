package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

const assignmentColumns = `id, duty_id, seat_id, member_id, status, has_warning, warning_text,
		       override_reason, overridden_by, overridden_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (db.Assignment, error) {
	var a db.Assignment
	var memberID, overriddenAt sql.NullString
	var updatedAt string
	if err := row.Scan(&a.ID, &a.DutyID, &a.SeatID, &memberID, &a.Status, &a.HasWarning, &a.WarningText,
		&a.OverrideReason, &a.OverriddenBy, &overriddenAt, &updatedAt); err != nil {
		return a, err
	}
	a.MemberID = memberID.String

	var err error
	if a.OverriddenAt, err = parseNullTimestamp(overriddenAt); err != nil {
		return a, err
	}
	if a.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return a, fmt.Errorf("invalid timestamp %q: %w", updatedAt, err)
	}
	return a, nil
}

// GetAssignments retrieves every assignment of a duty
func (d *DB) GetAssignments(ctx context.Context, dutyID string) ([]db.Assignment, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE duty_id = ?
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
	a, err := scanAssignment(d.conn.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE duty_id = ? AND seat_id = ?
	`, dutyID, seatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}
	return &a, nil
}

// ApplyGeneratedAssignments writes a generation run's assignments in one write transaction.
// Rows that are locked or confirmed in the database are left untouched; the returned count excludes them.
func (d *DB) ApplyGeneratedAssignments(ctx context.Context, dutyID string, assignments []db.Assignment) (int, error) {
	written := 0
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range assignments {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO assignment (id, duty_id, seat_id, member_id, status, has_warning, warning_text, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, `+nowSQL+`)
				ON CONFLICT (duty_id, seat_id) DO UPDATE
				SET member_id = excluded.member_id,
				    status = excluded.status,
				    has_warning = excluded.has_warning,
				    warning_text = excluded.warning_text,
				    override_reason = '',
				    overridden_by = '',
				    overridden_at = NULL,
				    updated_at = excluded.updated_at
				WHERE assignment.status NOT IN ('locked', 'confirmed')
			`, a.ID, dutyID, a.SeatID, nullString(a.MemberID), a.Status, a.HasWarning, a.WarningText)
			if err != nil {
				return fmt.Errorf("failed to upsert assignment for seat %s: %w", a.SeatID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			written += int(n)
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
	return d.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assignment (id, duty_id, seat_id, member_id, status, has_warning, warning_text,
			                        override_reason, overridden_by, overridden_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, `+nowSQL+`)
			ON CONFLICT (duty_id, seat_id) DO UPDATE
			SET member_id = excluded.member_id,
			    status = excluded.status,
			    has_warning = excluded.has_warning,
			    warning_text = excluded.warning_text,
			    override_reason = excluded.override_reason,
			    overridden_by = excluded.overridden_by,
			    overridden_at = excluded.overridden_at,
			    updated_at = excluded.updated_at
		`, a.ID, a.DutyID, a.SeatID, nullString(a.MemberID), a.Status, a.HasWarning, a.WarningText,
			a.OverrideReason, a.OverriddenBy, formatNullTimestamp(a.OverriddenAt))
		if err != nil {
			return fmt.Errorf("failed to upsert assignment: %w", err)
		}
		return nil
	})
}

// SetAssignmentStatus changes the status of an existing assignment
func (d *DB) SetAssignmentStatus(ctx context.Context, dutyID, seatID, status string) error {
	res, err := d.conn.ExecContext(ctx, `
		UPDATE assignment SET status = ?, updated_at = `+nowSQL+`
		WHERE duty_id = ? AND seat_id = ?
	`, status, dutyID, seatID)
	if err != nil {
		return fmt.Errorf("failed to set assignment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
	}
	return nil
}
