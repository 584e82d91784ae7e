package repository

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	"github.com/medreza/honcho-voucher-service/pkg/database"
	"github.com/medreza/honcho-voucher-service/pkg/models"
)

var ErrVoucherNotFound = errors.New("voucher not found")

// VoucherRepository persists vouchers. Upserts replace the whole record.
type VoucherRepository interface {
	GetVoucher(ctx context.Context, code string) (*models.Voucher, error)
	UpsertVoucher(ctx context.Context, v models.Voucher) error
	// UpsertVouchers drains vouchers and upserts each one, stopping at the
	// first error yielded by the sequence or by the store. It returns the
	// number of vouchers durably written.
	UpsertVouchers(ctx context.Context, vouchers iter.Seq2[models.Voucher, error]) (int, error)
	ListVouchers(ctx context.Context) ([]models.Voucher, error)
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig) (VoucherRepository, error) {
	if cfg.Driver == config.DriverMongo {
		client, err := database.InitMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewMongoVoucherRepository(client, cfg.MongoDatabase), nil
	}

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewSQLVoucherRepository(db, cfg.Driver), nil
}
