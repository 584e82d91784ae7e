package voucher

import (
	"strconv"
	"strings"

	"github.com/medreza/honcho-voucher-service/pkg/models"
)

const fieldsPerLine = 3

// ParseLine reads one "code,start_date,duration" upload line. It reports
// false for anything that cannot become a voucher: a field count other than
// three, an empty code, a malformed start date, or a duration that is not a
// non-negative integer. An empty start date field leaves the voucher
// unactivated.
func ParseLine(line string) (models.Voucher, bool) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != fieldsPerLine {
		return models.Voucher{}, false
	}

	code := strings.TrimSpace(parts[0])
	if code == "" {
		return models.Voucher{}, false
	}

	v := models.Voucher{Code: code}

	if start := strings.TrimSpace(parts[1]); start != "" {
		normalized, err := NormalizeDate(start)
		if err != nil {
			return models.Voucher{}, false
		}
		v.StartDate = &normalized
	}

	duration, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || duration < 0 {
		return models.Voucher{}, false
	}
	v.Duration = duration

	return v, true
}
