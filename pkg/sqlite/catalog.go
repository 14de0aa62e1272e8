package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GetQualifications retrieves the qualification catalog
func (d *DB) GetQualifications(ctx context.Context) ([]db.Qualification, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT code, name, category FROM qualification ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifications: %w", err)
	}
	defer rows.Close()

	var qualifications []db.Qualification
	for rows.Next() {
		var q db.Qualification
		if err := rows.Scan(&q.Code, &q.Name, &q.Category); err != nil {
			return nil, fmt.Errorf("failed to scan qualification: %w", err)
		}
		qualifications = append(qualifications, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qualifications: %w", err)
	}

	return qualifications, nil
}

// GetQualificationCovers retrieves every stored covers edge
func (d *DB) GetQualificationCovers(ctx context.Context) ([]db.QualificationCover, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT from_code, to_code FROM qualification_cover ORDER BY from_code, to_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualification covers: %w", err)
	}
	defer rows.Close()

	var covers []db.QualificationCover
	for rows.Next() {
		var c db.QualificationCover
		if err := rows.Scan(&c.FromCode, &c.ToCode); err != nil {
			return nil, fmt.Errorf("failed to scan qualification cover: %w", err)
		}
		covers = append(covers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qualification covers: %w", err)
	}

	return covers, nil
}

// InsertQualificationCovers inserts covers edges between known codes, leaving existing edges untouched.
// Returns the number of edges actually inserted.
func (d *DB) InsertQualificationCovers(ctx context.Context, covers []db.QualificationCover) (int, error) {
	if len(covers) == 0 {
		return 0, nil
	}

	inserted := 0
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range covers {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO qualification_cover (from_code, to_code)
				SELECT ?1, ?2
				WHERE EXISTS (SELECT 1 FROM qualification WHERE code = ?1)
				  AND EXISTS (SELECT 1 FROM qualification WHERE code = ?2)
			`, c.FromCode, c.ToCode)
			if err != nil {
				return fmt.Errorf("failed to insert qualification cover %s->%s: %w", c.FromCode, c.ToCode, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

const seatRuleColumns = `id, seat_id, rule_type, qualification_codes, all_required, warning_text, priority`

func scanSeatRules(rows *sql.Rows) ([]db.SeatRule, error) {
	defer rows.Close()

	var rules []db.SeatRule
	for rows.Next() {
		var r db.SeatRule
		var codes string
		if err := rows.Scan(&r.ID, &r.SeatID, &r.RuleType, &codes, &r.AllRequired, &r.WarningText, &r.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan seat rule: %w", err)
		}
		r.QualificationCodes = splitCodes(codes)
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seat rules: %w", err)
	}

	return rules, nil
}

// GetAllSeatRules retrieves the rules of every seat
func (d *DB) GetAllSeatRules(ctx context.Context) ([]db.SeatRule, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT `+seatRuleColumns+` FROM seat_rule ORDER BY seat_id, priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat rules: %w", err)
	}
	return scanSeatRules(rows)
}

// GetSeatRules retrieves the rules of the given seats ordered by priority
func (d *DB) GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT `+seatRuleColumns+`
		FROM seat_rule
		WHERE seat_id IN (`+placeholders(len(seatIDs))+`)
		ORDER BY seat_id, priority
	`, stringArgs(seatIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat rules: %w", err)
	}
	return scanSeatRules(rows)
}

func splitCodes(s string) []string {
	var codes []string
	for _, code := range strings.Split(s, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// JoinCodes encodes rule qualification codes for the qualification_codes column
func JoinCodes(codes []string) string {
	return strings.Join(codes, ",")
}
