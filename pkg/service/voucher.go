package service

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/models"
	"github.com/medreza/honcho-voucher-service/pkg/repository"
	"github.com/medreza/honcho-voucher-service/pkg/voucher"
	"github.com/sirupsen/logrus"
)

// maxLineBytes bounds one upload line. Legitimate lines are a few dozen bytes.
const maxLineBytes = 64 * 1024

var (
	ErrMissingCode      = errors.New("code is required")
	ErrMissingDuration  = errors.New("duration is required")
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrInvalidStartDate = errors.New("start_date must be formatted as YYYY-MM-DD")
)

// IsInputError reports whether err was caused by the caller's input rather
// than by the store.
func IsInputError(err error) bool {
	return errors.IsAny(err, ErrMissingCode, ErrMissingDuration, ErrNegativeDuration, ErrInvalidStartDate)
}

type VoucherService struct {
	repo repository.VoucherRepository
	loc  *time.Location
	now  func() time.Time
}

type Option func(*VoucherService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *VoucherService) { s.now = now }
}

// WithLocation sets the time zone whose calendar days statuses are counted in.
func WithLocation(loc *time.Location) Option {
	return func(s *VoucherService) { s.loc = loc }
}

func NewVoucherService(repo repository.VoucherRepository, opts ...Option) *VoucherService {
	s := &VoucherService{repo: repo, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check derives the status of code. Unknown codes are reported as invalid,
// not as an error.
func (s *VoucherService) Check(ctx context.Context, code string) (models.CheckResult, error) {
	v, err := s.repo.GetVoucher(ctx, code)
	if err != nil && !errors.Is(err, repository.ErrVoucherNotFound) {
		return models.CheckResult{}, err
	}
	return voucher.Evaluate(v, s.now().In(s.loc))
}

// AddOrReplace validates req and upserts it. An empty start_date is treated
// as absent.
func (s *VoucherService) AddOrReplace(ctx context.Context, req models.AddVoucherRequest) error {
	if req.Code == "" {
		return ErrMissingCode
	}
	if req.Duration == nil {
		return ErrMissingDuration
	}
	if *req.Duration < 0 {
		return ErrNegativeDuration
	}

	v := models.Voucher{Code: req.Code, Duration: *req.Duration}
	if req.StartDate != nil && *req.StartDate != "" {
		startDate, err := voucher.NormalizeDate(*req.StartDate)
		if err != nil {
			return errors.Mark(err, ErrInvalidStartDate)
		}
		v.StartDate = &startDate
	}

	return s.repo.UpsertVoucher(ctx, v)
}

// BulkReplace reads "code,start_date,duration" lines from r and upserts every
// line that parses. Lines that do not, including lines longer than
// maxLineBytes, are counted as skipped and otherwise ignored. A read error
// aborts the upload.
func (s *VoucherService) BulkReplace(ctx context.Context, r io.Reader) (models.UploadSummary, error) {
	var summary models.UploadSummary

	reader := bufio.NewReaderSize(r, maxLineBytes)
	lines := func(yield func(models.Voucher, error) bool) {
		lineNo := 0
		for {
			line, isPrefix, err := reader.ReadLine()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(models.Voucher{}, errors.Wrapf(err, "failed to read upload after line %d", lineNo))
				return
			}
			lineNo++

			if isPrefix {
				if err := discardLine(reader); err != nil && !errors.Is(err, io.EOF) {
					yield(models.Voucher{}, errors.Wrapf(err, "failed to read upload at line %d", lineNo))
					return
				}
				summary.Skipped++
				logrus.WithField("line", lineNo).Debug("BulkReplace: Skipping oversized line")
				continue
			}

			v, ok := voucher.ParseLine(string(line))
			if !ok {
				summary.Skipped++
				logrus.WithField("line", lineNo).Debug("BulkReplace: Skipping malformed line")
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}

	applied, err := s.repo.UpsertVouchers(ctx, lines)
	summary.Applied = applied
	if err != nil {
		return summary, err
	}
	return summary, nil
}

// discardLine consumes the remainder of a line that did not fit the buffer.
func discardLine(r *bufio.Reader) error {
	for {
		_, isPrefix, err := r.ReadLine()
		if err != nil {
			return err
		}
		if !isPrefix {
			return nil
		}
	}
}

// ListAll returns every stored voucher in storage order.
func (s *VoucherService) ListAll(ctx context.Context) ([]models.Voucher, error) {
	return s.repo.ListVouchers(ctx)
}
