package finance

import (
	"errors"
	"time"
)

const monthLayout = "2006-01"

var ErrInvalidYearMonth = errors.New("year_month must be YYYY-MM")

// ParseMonth parses a YYYY-MM string into the first day of that month (UTC).
func ParseMonth(ym string) (time.Time, error) {
	t, err := time.Parse(monthLayout, ym)
	if err != nil {
		return time.Time{}, ErrInvalidYearMonth
	}
	return t, nil
}

// AddMonths shifts a YYYY-MM string by n calendar months.
func AddMonths(ym string, n int) (string, error) {
	t, err := ParseMonth(ym)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, n, 0).Format(monthLayout), nil
}

// PreviousMonth returns the YYYY-MM preceding the month containing now in loc.
func PreviousMonth(now time.Time, loc *time.Location) string {
	t := now.In(loc)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return first.AddDate(0, -1, 0).Format(monthLayout)
}
