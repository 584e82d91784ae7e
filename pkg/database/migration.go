package database

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
)

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vouchers (
			code TEXT PRIMARY KEY,
			start_date TEXT,
			duration INTEGER
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create vouchers table")
	}
	return nil
}
