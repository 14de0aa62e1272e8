package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/fire-crew-roster/pkg/sqlite"
)

// setupTestDB opens an in-memory database with the embedded schema. Every test gets its own database.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	store, err := sqlite.NewDB(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(context.Background()))

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// fixture is the shared station layout: one engine with a leader seat and a BA seat, one duty.
type fixture struct {
	DutyID     string
	VehicleID  string
	LeaderSeat string
	BASeat     string
	Anna       string
	Ben        string
	Carl       string
}

func seedFixture(t *testing.T, store *sqlite.DB) fixture {
	t.Helper()

	f := fixture{
		DutyID:     "duty-1",
		VehicleID:  "hlf-20",
		LeaderSeat: "hlf-20-1",
		BASeat:     "hlf-20-2",
		Anna:       "m-anna",
		Ben:        "m-ben",
		Carl:       "m-carl",
	}

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO qualification (code, name) VALUES ('TM', 'Truppmann'), ('TF', 'Truppführer'), ('GF', 'Gruppenführer'), ('AGT', 'Atemschutz')`, nil},
		{`INSERT INTO qualification_cover (from_code, to_code) VALUES ('GF', 'TF'), ('TF', 'TM')`, nil},
		{`INSERT INTO exam_type (code, name, validity_months) VALUES ('G26.3', 'G26.3', 36)`, nil},
		{`INSERT INTO member (id, first_name, last_name) VALUES (?, 'Anna', 'Adler'), (?, 'Ben', 'Berg'), (?, 'Carl', 'Christ')`, []any{f.Anna, f.Ben, f.Carl}},
		{`INSERT INTO member (id, first_name, last_name, status) VALUES ('m-dora', 'Dora', 'Dach', 'youth')`, nil},
		{`INSERT INTO member_qualification (member_id, qualification_code, acquired_on) VALUES (?, 'GF', '2015-05-01'), (?, 'TM', NULL), (?, 'AGT', NULL)`, []any{f.Anna, f.Ben, f.Ben}},
		{`INSERT INTO vehicle (id, call_sign, priority) VALUES (?, 'HLF 20', 1), ('tlf-3000', 'TLF 3000', 2)`, []any{f.VehicleID}},
		{`INSERT INTO seat (id, vehicle_id, position_code, seat_number, requires_breathing_apparatus) VALUES (?, ?, 'GF', 1, 0), (?, ?, 'AGT', 2, 1)`, []any{f.LeaderSeat, f.VehicleID, f.BASeat, f.VehicleID}},
		{`INSERT INTO seat_rule (id, seat_id, rule_type, qualification_codes, priority) VALUES ('r-1', ?, 'required', 'GF', 1), ('r-2', ?, 'required', 'TM,AGT', 1), ('r-3', ?, 'preferred', 'TF', 2)`, []any{f.LeaderSeat, f.BASeat, f.BASeat}},
		{`INSERT INTO duty (id, title, duty_type, duty_date) VALUES (?, 'Übungsdienst', 'exercise', '2025-06-12')`, []any{f.DutyID}},
		{`INSERT INTO duty_vehicle (duty_id, vehicle_id) VALUES (?, ?)`, []any{f.DutyID, f.VehicleID}},
		{`INSERT INTO duty_attendance (id, duty_id, member_id, is_present) VALUES ('a-1', ?, ?, 1), ('a-2', ?, ?, 1), ('a-3', ?, ?, 0), ('a-4', ?, 'm-dora', 1)`, []any{f.DutyID, f.Anna, f.DutyID, f.Ben, f.DutyID, f.Carl, f.DutyID}},
	}

	for _, s := range statements {
		require.NoError(t, execRaw(store, s.query, s.args...), s.query)
	}

	return f
}

func execRaw(store *sqlite.DB, query string, args ...any) error {
	_, err := sqlite.Conn(store).Exec(query, args...)
	return err
}
