package leave

import (
	"context"
	"time"
)

// HolidayStore returns company holiday dates for one calendar year, keyed
// by YYYY-MM-DD.
type HolidayStore interface {
	HolidayDates(ctx context.Context, tenantID string, year int) (map[string]struct{}, error)
}

// Calculator counts chargeable leave days: every day in the inclusive
// range that is neither a weekend nor a company holiday.
type Calculator struct {
	Holidays HolidayStore
}

func NewCalculator(holidays HolidayStore) *Calculator {
	return &Calculator{Holidays: holidays}
}

const dateKeyLayout = "2006-01-02"

// ChargeableDays returns the number of days in [start, end] charged
// against the employee's entitlement. Holidays are looked up for the
// start date's year only, so holidays falling in a later year of a
// cross-year range are not excluded. A zero result is a valid output;
// the submission flow rejects it.
func (c *Calculator) ChargeableDays(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if start.After(end) {
		return 0, Invalid("start date must be on or before end date")
	}

	holidays, err := c.Holidays.HolidayDates(ctx, tenantID, start.Year())
	if err != nil {
		return 0, dependency("holiday lookup", err)
	}

	days := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if _, holiday := holidays[day.Format(dateKeyLayout)]; holiday {
			continue
		}
		days++
	}
	return days, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
