package repository

import (
	"context"
	"database/sql"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	"github.com/medreza/honcho-voucher-service/pkg/models"
)

type dialect struct {
	upsert    string
	selectOne string
	selectAll string
}

var (
	sqliteDialect = dialect{
		upsert:    `INSERT OR REPLACE INTO vouchers (code, start_date, duration) VALUES (?, ?, ?)`,
		selectOne: `SELECT start_date, duration FROM vouchers WHERE code = ?`,
		selectAll: `SELECT code, start_date, duration FROM vouchers`,
	}
	postgresDialect = dialect{
		upsert: `INSERT INTO vouchers (code, start_date, duration) VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE SET start_date = EXCLUDED.start_date, duration = EXCLUDED.duration`,
		selectOne: `SELECT start_date, duration FROM vouchers WHERE code = $1`,
		selectAll: `SELECT code, start_date, duration FROM vouchers`,
	}
)

// SQLVoucherRepository stores vouchers in SQLite or PostgreSQL. Every call
// checks out its own connection and returns it before the call ends.
type SQLVoucherRepository struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLVoucherRepository(db *sql.DB, driver string) *SQLVoucherRepository {
	d := sqliteDialect
	if driver == config.DriverPostgres {
		d = postgresDialect
	}
	return &SQLVoucherRepository{db: db, dialect: d}
}

func (r *SQLVoucherRepository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to acquire connection")
	}
	defer conn.Close()
	return fn(conn)
}

func (r *SQLVoucherRepository) GetVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	var (
		startDate sql.NullString
		duration  sql.NullInt64
	)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, r.dialect.selectOne, code).Scan(&startDate, &duration)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoucherNotFound
		}
		return nil, errors.Wrapf(err, "failed to get voucher %q", code)
	}
	return scanned(code, startDate, duration), nil
}

func (r *SQLVoucherRepository) UpsertVoucher(ctx context.Context, v models.Voucher) error {
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.dialect.upsert, v.Code, startDateArg(v), v.Duration)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upsert voucher %q", v.Code)
	}
	return nil
}

// UpsertVouchers applies the whole sequence in one transaction, so either
// every yielded voucher is committed or none is.
func (r *SQLVoucherRepository) UpsertVouchers(ctx context.Context, vouchers iter.Seq2[models.Voucher, error]) (int, error) {
	var applied int
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, r.dialect.upsert)
		if err != nil {
			return errors.Wrap(err, "failed to prepare upsert")
		}
		defer stmt.Close()

		for v, err := range vouchers {
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, v.Code, startDateArg(v), v.Duration); err != nil {
				return errors.Wrapf(err, "failed to upsert voucher %q", v.Code)
			}
			applied++
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "failed to commit transaction")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func (r *SQLVoucherRepository) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	vouchers := make([]models.Voucher, 0)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.dialect.selectAll)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				code      string
				startDate sql.NullString
				duration  sql.NullInt64
			)
			if err := rows.Scan(&code, &startDate, &duration); err != nil {
				return errors.Wrap(err, "failed to scan voucher")
			}
			vouchers = append(vouchers, *scanned(code, startDate, duration))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vouchers")
	}
	return vouchers, nil
}

func (r *SQLVoucherRepository) Close(_ context.Context) error {
	return r.db.Close()
}

func startDateArg(v models.Voucher) sql.NullString {
	if v.StartDate == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v.StartDate, Valid: true}
}

// scanned builds a voucher from nullable columns. An empty start_date written
// by older clients counts as absent.
func scanned(code string, startDate sql.NullString, duration sql.NullInt64) *models.Voucher {
	v := &models.Voucher{Code: code, Duration: int(duration.Int64)}
	if startDate.Valid && startDate.String != "" {
		s := startDate.String
		v.StartDate = &s
	}
	return v
}
