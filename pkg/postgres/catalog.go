package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetQualifications retrieves the qualification catalog
func (d *DB) GetQualifications(ctx context.Context) ([]db.Qualification, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT code, name, category
		FROM qualification
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifications: %w", err)
	}

	qualifications, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Qualification])
	if err != nil {
		return nil, fmt.Errorf("failed to scan qualifications: %w", err)
	}
	return qualifications, nil
}

// GetQualificationCovers retrieves every stored covers edge
func (d *DB) GetQualificationCovers(ctx context.Context) ([]db.QualificationCover, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT from_code, to_code
		FROM qualification_cover
		ORDER BY from_code, to_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualification covers: %w", err)
	}

	covers, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.QualificationCover])
	if err != nil {
		return nil, fmt.Errorf("failed to scan qualification covers: %w", err)
	}
	return covers, nil
}

// InsertQualificationCovers inserts covers edges, leaving existing edges untouched.
// Returns the number of edges actually inserted.
func (d *DB) InsertQualificationCovers(ctx context.Context, covers []db.QualificationCover) (int, error) {
	if len(covers) == 0 {
		return 0, nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, c := range covers {
		tag, err := tx.Exec(ctx, `
			INSERT INTO qualification_cover (from_code, to_code)
			SELECT $1, $2
			WHERE EXISTS (SELECT 1 FROM qualification WHERE code = $1)
			  AND EXISTS (SELECT 1 FROM qualification WHERE code = $2)
			ON CONFLICT DO NOTHING
		`, c.FromCode, c.ToCode)
		if err != nil {
			return 0, fmt.Errorf("failed to insert qualification cover %s->%s: %w", c.FromCode, c.ToCode, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// GetAllSeatRules retrieves the rules of every seat
func (d *DB) GetAllSeatRules(ctx context.Context) ([]db.SeatRule, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, seat_id, rule_type, qualification_codes, all_required, warning_text, priority
		FROM seat_rule
		ORDER BY seat_id, priority
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.SeatRule])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seat rules: %w", err)
	}
	return rules, nil
}
