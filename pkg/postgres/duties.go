package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetDuty retrieves a duty by ID
func (d *DB) GetDuty(ctx context.Context, dutyID string) (*db.Duty, error) {
	var duty db.Duty
	err := d.pool.QueryRow(ctx, `
		SELECT id, title, duty_type, duty_date, status
		FROM duty
		WHERE id = $1
	`, dutyID).Scan(&duty.ID, &duty.Title, &duty.DutyType, &duty.DutyDate, &duty.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("duty %s: %w", dutyID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query duty: %w", err)
	}
	return &duty, nil
}

// GetDutyVehicles retrieves the vehicles linked to a duty, in staffing order
func (d *DB) GetDutyVehicles(ctx context.Context, dutyID string) ([]db.Vehicle, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT v.id, v.call_sign, v.priority
		FROM vehicle v
		JOIN duty_vehicle dv ON dv.vehicle_id = v.id
		WHERE dv.duty_id = $1
		ORDER BY v.priority, v.call_sign
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duty vehicles: %w", err)
	}

	vehicles, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Vehicle])
	if err != nil {
		return nil, fmt.Errorf("failed to scan duty vehicles: %w", err)
	}
	return vehicles, nil
}

// GetSeats retrieves the seats of the given vehicles
func (d *DB) GetSeats(ctx context.Context, vehicleIDs []string) ([]db.Seat, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, vehicle_id, position_code, seat_number, is_required, requires_breathing_apparatus
		FROM seat
		WHERE vehicle_id = ANY($1::uuid[])
		ORDER BY vehicle_id, seat_number
	`, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}

	seats, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Seat])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seats: %w", err)
	}
	return seats, nil
}

// GetSeat retrieves a single seat
func (d *DB) GetSeat(ctx context.Context, seatID string) (*db.Seat, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, vehicle_id, position_code, seat_number, is_required, requires_breathing_apparatus
		FROM seat
		WHERE id = $1
	`, seatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat: %w", err)
	}

	seat, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[db.Seat])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("seat %s: %w", seatID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan seat: %w", err)
	}
	return seat, nil
}

// GetSeatRules retrieves the rules of the given seats ordered by priority
func (d *DB) GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, seat_id, rule_type, qualification_codes, all_required, warning_text, priority
		FROM seat_rule
		WHERE seat_id = ANY($1::uuid[])
		ORDER BY seat_id, priority
	`, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.SeatRule])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seat rules: %w", err)
	}
	return rules, nil
}

// GetDutySeats retrieves every seat of the duty's vehicles with its current assignment
func (d *DB) GetDutySeats(ctx context.Context, dutyID string) ([]db.DutySeat, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT v.id, v.call_sign, v.priority, s.id, s.position_code, s.seat_number,
		       a.member_id, m.first_name || ' ' || m.last_name, a.status,
		       COALESCE(a.has_warning, FALSE), COALESCE(a.warning_text, '')
		FROM duty_vehicle dv
		JOIN vehicle v ON v.id = dv.vehicle_id
		JOIN seat s ON s.vehicle_id = v.id
		LEFT JOIN assignment a ON a.duty_id = dv.duty_id AND a.seat_id = s.id
		LEFT JOIN member m ON m.id = a.member_id
		WHERE dv.duty_id = $1
		ORDER BY v.priority, v.call_sign, s.seat_number
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duty seats: %w", err)
	}
	defer rows.Close()

	var seats []db.DutySeat
	for rows.Next() {
		var s db.DutySeat
		var memberID, memberName, status *string
		if err := rows.Scan(&s.VehicleID, &s.CallSign, &s.VehiclePriority, &s.SeatID, &s.PositionCode, &s.SeatNumber,
			&memberID, &memberName, &status, &s.HasWarning, &s.WarningText); err != nil {
			return nil, fmt.Errorf("failed to scan duty seat: %w", err)
		}
		s.MemberID = deref(memberID)
		s.MemberName = deref(memberName)
		s.AssignmentStatus = deref(status)
		seats = append(seats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duty seats: %w", err)
	}

	return seats, nil
}
