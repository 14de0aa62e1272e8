package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetAttendance retrieves the attendance records of a duty
func (d *DB) GetAttendance(ctx context.Context, dutyID string) ([]db.Attendance, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, duty_id, member_id, is_present, checked_in_at, checked_in_by
		FROM duty_attendance
		WHERE duty_id = ?
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []db.Attendance
	for rows.Next() {
		var a db.Attendance
		var checkedInAt sql.NullString
		if err := rows.Scan(&a.ID, &a.DutyID, &a.MemberID, &a.IsPresent, &checkedInAt, &a.CheckedInBy); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		if a.CheckedInAt, err = parseNullTimestamp(checkedInAt); err != nil {
			return nil, fmt.Errorf("failed to parse checked_in_at: %w", err)
		}
		records = append(records, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}

	return records, nil
}

// UpsertAttendance creates or updates the (duty, member) attendance record
func (d *DB) UpsertAttendance(ctx context.Context, attendance *db.Attendance) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO duty_attendance (id, duty_id, member_id, is_present, checked_in_at, checked_in_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (duty_id, member_id) DO UPDATE
		SET is_present = excluded.is_present,
		    checked_in_at = excluded.checked_in_at,
		    checked_in_by = excluded.checked_in_by
	`, attendance.ID, attendance.DutyID, attendance.MemberID, attendance.IsPresent,
		formatNullTimestamp(attendance.CheckedInAt), attendance.CheckedInBy)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}
