package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetMember retrieves a member by ID
func (d *DB) GetMember(ctx context.Context, memberID string) (*db.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, status, is_active
		FROM member
		WHERE id = $1
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}

	member, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[db.Member])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return member, nil
}

// GetPresentMembers retrieves the members marked present for the duty who are available for service
func (d *DB) GetPresentMembers(ctx context.Context, dutyID string) ([]db.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT m.id, m.first_name, m.last_name, m.status, m.is_active
		FROM member m
		JOIN duty_attendance da ON da.member_id = m.id
		WHERE da.duty_id = $1
		  AND da.is_present
		  AND m.is_active
		  AND m.status = 'active'
		ORDER BY m.last_name, m.first_name
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query present members: %w", err)
	}

	members, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Member])
	if err != nil {
		return nil, fmt.Errorf("failed to scan present members: %w", err)
	}
	return members, nil
}

// GetQualificationGrants retrieves the qualifications held by the given members
func (d *DB) GetQualificationGrants(ctx context.Context, memberIDs []string) ([]db.QualificationGrant, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT member_id, qualification_code, acquired_on, notes
		FROM member_qualification
		WHERE member_id = ANY($1::uuid[])
	`, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualification grants: %w", err)
	}

	grants, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.QualificationGrant])
	if err != nil {
		return nil, fmt.Errorf("failed to scan qualification grants: %w", err)
	}
	return grants, nil
}

// GetMedicalExams retrieves the medical exams of the given members
func (d *DB) GetMedicalExams(ctx context.Context, memberIDs []string) ([]db.MedicalExam, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, member_id, exam_type_code, exam_date, valid_until, passed
		FROM medical_exam
		WHERE member_id = ANY($1::uuid[])
		ORDER BY exam_date DESC
	`, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical exams: %w", err)
	}

	exams, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.MedicalExam])
	if err != nil {
		return nil, fmt.Errorf("failed to scan medical exams: %w", err)
	}
	return exams, nil
}

// GetExerciseRecords retrieves the exercises of the given members dated on or after since
func (d *DB) GetExerciseRecords(ctx context.Context, memberIDs []string, since time.Time) ([]db.ExerciseRecord, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, member_id, qualification_code, exercise_date
		FROM exercise_record
		WHERE member_id = ANY($1::uuid[])
		  AND exercise_date >= $2
		ORDER BY exercise_date DESC
	`, memberIDs, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise records: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.ExerciseRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to scan exercise records: %w", err)
	}
	return records, nil
}
