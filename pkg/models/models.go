package models

// DateLayout is how start and expiry dates are stored and exchanged.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusInvalid    Status = "invalid"
	StatusNotStarted Status = "not_started"
	StatusValid      Status = "valid"
	StatusExpired    Status = "expired"
)

// Voucher is a stored voucher record. A nil StartDate means the voucher
// exists but has not been activated.
type Voucher struct {
	Code      string  `json:"code" bson:"_id"`
	StartDate *string `json:"start_date" bson:"start_date"`
	Duration  int     `json:"duration" bson:"duration"`
}

// Tuple renders the voucher the way the listing endpoint exposes it.
func (v Voucher) Tuple() []any {
	var startDate any
	if v.StartDate != nil {
		startDate = *v.StartDate
	}
	return []any{v.Code, startDate, v.Duration}
}

type AddVoucherRequest struct {
	Code      string  `json:"code" binding:"required"`
	StartDate *string `json:"start_date"`
	Duration  *int    `json:"duration" binding:"required"`
}

type CheckResult struct {
	Status    Status `json:"status"`
	Expiry    string `json:"expiry,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

type UploadSummary struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type UploadResponse struct {
	Status string `json:"status"`
	UploadSummary
}
