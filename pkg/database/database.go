package database

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyTimeout = "?_pragma=busy_timeout(5000)"
	pingTimeout       = 5 * time.Second
)

// InitDB opens the SQL database selected by cfg.Driver and creates the
// vouchers table if it is missing. The SQLite file is created on first run.
func InitDB(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg)
	case config.DriverPostgres:
		db, err = openPostgres(cfg)
	default:
		return nil, errors.Newf("driver %q is not a SQL driver", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to ping database")
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to run migrations")
	}

	return db, nil
}

func openSQLite(cfg config.DBConfig) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.InstanceDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create instance directory %s", cfg.InstanceDir)
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath()+sqliteBusyTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite database")
	}
	// a single writer connection makes concurrent upserts queue
	// instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return db, nil
}

func openPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.PostgresURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open postgres database")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}
