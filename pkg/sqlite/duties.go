package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetDuty retrieves a duty by ID
func (d *DB) GetDuty(ctx context.Context, dutyID string) (*db.Duty, error) {
	var duty db.Duty
	var dutyDate string
	err := d.conn.QueryRowContext(ctx, `
		SELECT id, title, duty_type, duty_date, status FROM duty WHERE id = ?
	`, dutyID).Scan(&duty.ID, &duty.Title, &duty.DutyType, &dutyDate, &duty.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("duty %s: %w", dutyID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query duty: %w", err)
	}

	if duty.DutyDate, err = parseDate(dutyDate); err != nil {
		return nil, fmt.Errorf("failed to parse duty date: %w", err)
	}
	return &duty, nil
}

// GetDutyVehicles retrieves the vehicles linked to a duty, in staffing order
func (d *DB) GetDutyVehicles(ctx context.Context, dutyID string) ([]db.Vehicle, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT v.id, v.call_sign, v.priority
		FROM vehicle v
		JOIN duty_vehicle dv ON dv.vehicle_id = v.id
		WHERE dv.duty_id = ?
		ORDER BY v.priority, v.call_sign
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duty vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(&v.ID, &v.CallSign, &v.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duty vehicles: %w", err)
	}

	return vehicles, nil
}

const seatColumns = `id, vehicle_id, position_code, seat_number, is_required, requires_breathing_apparatus`

func scanSeat(row interface{ Scan(...any) error }) (db.Seat, error) {
	var s db.Seat
	err := row.Scan(&s.ID, &s.VehicleID, &s.PositionCode, &s.SeatNumber, &s.IsRequired, &s.RequiresBreathingApparatus)
	return s, err
}

// GetSeats retrieves the seats of the given vehicles
func (d *DB) GetSeats(ctx context.Context, vehicleIDs []string) ([]db.Seat, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT `+seatColumns+`
		FROM seat
		WHERE vehicle_id IN (`+placeholders(len(vehicleIDs))+`)
		ORDER BY vehicle_id, seat_number
	`, stringArgs(vehicleIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	var seats []db.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seats: %w", err)
	}

	return seats, nil
}

// GetSeat retrieves a single seat
func (d *DB) GetSeat(ctx context.Context, seatID string) (*db.Seat, error) {
	s, err := scanSeat(d.conn.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seat WHERE id = ?`, seatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("seat %s: %w", seatID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query seat: %w", err)
	}
	return &s, nil
}

// GetDutySeats retrieves every seat of the duty's vehicles with its current assignment
func (d *DB) GetDutySeats(ctx context.Context, dutyID string) ([]db.DutySeat, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT v.id, v.call_sign, v.priority, s.id, s.position_code, s.seat_number,
		       a.member_id, m.first_name || ' ' || m.last_name, a.status,
		       COALESCE(a.has_warning, 0), COALESCE(a.warning_text, '')
		FROM duty_vehicle dv
		JOIN vehicle v ON v.id = dv.vehicle_id
		JOIN seat s ON s.vehicle_id = v.id
		LEFT JOIN assignment a ON a.duty_id = dv.duty_id AND a.seat_id = s.id
		LEFT JOIN member m ON m.id = a.member_id
		WHERE dv.duty_id = ?
		ORDER BY v.priority, v.call_sign, s.seat_number
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duty seats: %w", err)
	}
	defer rows.Close()

	var seats []db.DutySeat
	for rows.Next() {
		var s db.DutySeat
		var memberID, memberName, status sql.NullString
		if err := rows.Scan(&s.VehicleID, &s.CallSign, &s.VehiclePriority, &s.SeatID, &s.PositionCode, &s.SeatNumber,
			&memberID, &memberName, &status, &s.HasWarning, &s.WarningText); err != nil {
			return nil, fmt.Errorf("failed to scan duty seat: %w", err)
		}
		s.MemberID = memberID.String
		s.MemberName = memberName.String
		s.AssignmentStatus = status.String
		seats = append(seats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duty seats: %w", err)
	}

	return seats, nil
}
