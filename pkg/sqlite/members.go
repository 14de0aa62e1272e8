package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetMember retrieves a member by ID
func (d *DB) GetMember(ctx context.Context, memberID string) (*db.Member, error) {
	var m db.Member
	err := d.conn.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, status, is_active FROM member WHERE id = ?
	`, memberID).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Status, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}
	return &m, nil
}

// GetPresentMembers retrieves the members marked present for the duty who are available for service
func (d *DB) GetPresentMembers(ctx context.Context, dutyID string) ([]db.Member, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT m.id, m.first_name, m.last_name, m.status, m.is_active
		FROM member m
		JOIN duty_attendance da ON da.member_id = m.id
		WHERE da.duty_id = ?
		  AND da.is_present = 1
		  AND m.is_active = 1
		  AND m.status = 'active'
		ORDER BY m.last_name, m.first_name
	`, dutyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query present members: %w", err)
	}
	defer rows.Close()

	var members []db.Member
	for rows.Next() {
		var m db.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Status, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating present members: %w", err)
	}

	return members, nil
}

// GetQualificationGrants retrieves the qualifications held by the given members
func (d *DB) GetQualificationGrants(ctx context.Context, memberIDs []string) ([]db.QualificationGrant, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT member_id, qualification_code, acquired_on, notes
		FROM member_qualification
		WHERE member_id IN (`+placeholders(len(memberIDs))+`)
	`, stringArgs(memberIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualification grants: %w", err)
	}
	defer rows.Close()

	var grants []db.QualificationGrant
	for rows.Next() {
		var g db.QualificationGrant
		var acquiredOn sql.NullString
		if err := rows.Scan(&g.MemberID, &g.QualificationCode, &acquiredOn, &g.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan qualification grant: %w", err)
		}
		if g.AcquiredOn, err = parseNullDate(acquiredOn); err != nil {
			return nil, fmt.Errorf("failed to parse acquired_on: %w", err)
		}
		grants = append(grants, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qualification grants: %w", err)
	}

	return grants, nil
}

// GetMedicalExams retrieves the medical exams of the given members
func (d *DB) GetMedicalExams(ctx context.Context, memberIDs []string) ([]db.MedicalExam, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, member_id, exam_type_code, exam_date, valid_until, passed
		FROM medical_exam
		WHERE member_id IN (`+placeholders(len(memberIDs))+`)
		ORDER BY exam_date DESC
	`, stringArgs(memberIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical exams: %w", err)
	}
	defer rows.Close()

	var exams []db.MedicalExam
	for rows.Next() {
		var e db.MedicalExam
		var examDate string
		var validUntil sql.NullString
		if err := rows.Scan(&e.ID, &e.MemberID, &e.ExamTypeCode, &examDate, &validUntil, &e.Passed); err != nil {
			return nil, fmt.Errorf("failed to scan medical exam: %w", err)
		}
		if e.ExamDate, err = parseDate(examDate); err != nil {
			return nil, fmt.Errorf("failed to parse exam_date: %w", err)
		}
		if e.ValidUntil, err = parseNullDate(validUntil); err != nil {
			return nil, fmt.Errorf("failed to parse valid_until: %w", err)
		}
		exams = append(exams, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medical exams: %w", err)
	}

	return exams, nil
}

// GetExerciseRecords retrieves the exercises of the given members dated on or after since
func (d *DB) GetExerciseRecords(ctx context.Context, memberIDs []string, since time.Time) ([]db.ExerciseRecord, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	args := append(stringArgs(memberIDs), formatDate(since))
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, member_id, qualification_code, exercise_date
		FROM exercise_record
		WHERE member_id IN (`+placeholders(len(memberIDs))+`)
		  AND exercise_date >= ?
		ORDER BY exercise_date DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise records: %w", err)
	}
	defer rows.Close()

	var records []db.ExerciseRecord
	for rows.Next() {
		var r db.ExerciseRecord
		var exerciseDate string
		if err := rows.Scan(&r.ID, &r.MemberID, &r.QualificationCode, &exerciseDate); err != nil {
			return nil, fmt.Errorf("failed to scan exercise record: %w", err)
		}
		if r.ExerciseDate, err = parseDate(exerciseDate); err != nil {
			return nil, fmt.Errorf("failed to parse exercise_date: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercise records: %w", err)
	}

	return records, nil
}
