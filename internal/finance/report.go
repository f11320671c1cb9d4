package finance

import (
	"errors"
	"strconv"

	"dentalboard-backend/internal/models"
)

var ErrInvalidReportPeriod = errors.New("period must be YYYY-MM for monthly or YYYY for annual reports")

// ReportRange resolves a report kind and period to the months of data it
// needs. from is one year earlier than the window so that year-over-year
// deltas can be computed; months is the dashboard window.
func ReportRange(kind, period string) (from, to string, months int, err error) {
	switch kind {
	case models.ReportMonthly:
		if _, err := ParseMonth(period); err != nil {
			return "", "", 0, ErrInvalidReportPeriod
		}
		from, _ = AddMonths(period, -12)
		return from, period, 1, nil
	case models.ReportAnnual:
		year, err := strconv.Atoi(period)
		if err != nil || len(period) != 4 || year < 1900 {
			return "", "", 0, ErrInvalidReportPeriod
		}
		to = period + "-12"
		from, _ = AddMonths(period+"-01", -12)
		return from, to, 12, nil
	default:
		return "", "", 0, ErrInvalidReportPeriod
	}
}
