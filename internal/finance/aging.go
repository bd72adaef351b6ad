package finance

import (
	"errors"
	"fmt"
	"time"

	"pride-finance-backend/internal/models"
)

// ErrInvalidFrequency: a record carries a payment frequency the aging
// calculation does not know. This is a configuration error, never a
// silent zero.
var ErrInvalidFrequency = errors.New("unrecognized payment frequency")

// ExtendedDays reports how many calendar days a lending record has run
// past its expected term. The second return is false when aging does not
// apply (closed record).
//
// Whole calendar months elapsed since the start date (day-of-month
// ignored) are scaled by the frequency factor, the scaled months are
// advanced from the first of the start month, and any days past that
// expected end date are the overrun.
func ExtendedDays(isClosed bool, start time.Time, freq models.PaymentFrequency, today time.Time) (int, bool, error) {
	if isClosed {
		return 0, false, nil
	}

	var factor int
	switch freq {
	case models.FrequencyMonthly:
		factor = 1
	case models.FrequencyBimonthly:
		factor = 2
	case models.FrequencyQuarterly:
		factor = 3
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
	}

	monthsDiff := (today.Year()-start.Year())*12 + int(today.Month()) - int(start.Month())
	if monthsDiff < 0 {
		// Start date in the future: nothing has elapsed yet.
		monthsDiff = 0
	}

	expectedEnd := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, monthsDiff*factor, 0)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	if day.After(expectedEnd) {
		return int(day.Sub(expectedEnd).Hours() / 24), true, nil
	}
	return 0, true, nil
}
