// Package voucher holds the storage-independent voucher rules: deriving a
// status from a stored record and parsing bulk-upload lines.
package voucher

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/models"
)

const (
	day = 24 * time.Hour

	// inputLayout accepts months and days with or without a leading zero.
	inputLayout = "2006-1-2"
)

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// ParseDate parses a YYYY-MM-DD date as a wall-clock midnight in UTC.
// Unpadded months and days such as 2024-1-5 are accepted.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(inputLayout, s)
	if err != nil {
		return time.Time{}, errors.Mark(errors.Wrapf(err, "parse date %q", s), ErrInvalidDate)
	}
	return t, nil
}

// NormalizeDate parses s and renders it in the zero-padded storage layout.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}

// Evaluate derives the status of v at instant now. A nil v is an unknown code.
//
// Remaining days are floor((expiry - now) / 24h) using now's wall clock in its
// own location, so the result depends on the time of day: at 10:00 on the
// expiry date the voucher is already expired.
func Evaluate(v *models.Voucher, now time.Time) (models.CheckResult, error) {
	if v == nil {
		return models.CheckResult{Status: models.StatusInvalid}, nil
	}
	if v.StartDate == nil {
		return models.CheckResult{Status: models.StatusNotStarted}, nil
	}

	start, err := ParseDate(*v.StartDate)
	if err != nil {
		return models.CheckResult{}, errors.Wrapf(err, "voucher %q has a corrupt start date", v.Code)
	}
	expiry := start.AddDate(0, 0, v.Duration)

	remaining := floorDays(expiry.Sub(wallClock(now)))
	if remaining < 0 {
		remaining = 0
		return models.CheckResult{
			Status:    models.StatusExpired,
			Expiry:    expiry.Format(models.DateLayout),
			Remaining: &remaining,
		}, nil
	}
	return models.CheckResult{
		Status:    models.StatusValid,
		Expiry:    expiry.Format(models.DateLayout),
		Remaining: &remaining,
	}, nil
}

// wallClock reinterprets t's local wall time as UTC so day arithmetic is not
// skewed by DST transitions.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func floorDays(d time.Duration) int {
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}
