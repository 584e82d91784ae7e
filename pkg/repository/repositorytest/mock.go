// Package repositorytest provides test doubles for the repository package.
package repositorytest

import (
	"context"
	"iter"

	"github.com/medreza/honcho-voucher-service/pkg/models"
	"github.com/medreza/honcho-voucher-service/pkg/repository"
	"github.com/stretchr/testify/mock"
)

var _ repository.VoucherRepository = (*MockVoucherRepository)(nil)

type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) GetVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(*models.Voucher)
	return v, args.Error(1)
}

func (m *MockVoucherRepository) UpsertVoucher(ctx context.Context, v models.Voucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// UpsertVouchers drains the sequence before consulting the expectation, so
// the caller's parsing runs exactly as it would against a real store.
func (m *MockVoucherRepository) UpsertVouchers(ctx context.Context, vouchers iter.Seq2[models.Voucher, error]) (int, error) {
	var drained []models.Voucher
	for v, err := range vouchers {
		if err != nil {
			return 0, err
		}
		drained = append(drained, v)
	}
	args := m.Called(ctx, drained)
	return args.Int(0), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	args := m.Called(ctx)
	vouchers, _ := args.Get(0).([]models.Voucher)
	return vouchers, args.Error(1)
}

func (m *MockVoucherRepository) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
