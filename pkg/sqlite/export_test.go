package sqlite

import "database/sql"

// Conn exposes the underlying connection to the external test package for seeding
func Conn(d *DB) *sql.DB {
	return d.conn
}
