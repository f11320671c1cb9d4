package finance

import (
	"sort"

	"dentalboard-backend/internal/models"
)

// DefaultDashboardMonths is the window used when the caller asks for none.
const DefaultDashboardMonths = 12

type SeriesPoint struct {
	YearMonth       string `json:"year_month"`
	TotalRevenue    int64  `json:"total_revenue"`
	TotalCost       int64  `json:"total_cost"`
	OperatingProfit int64  `json:"operating_profit"`
	TotalPatients   int    `json:"total_patients"`
}

type PeriodSummary struct {
	Months               int     `json:"months"`
	TotalRevenue         int64   `json:"total_revenue"`
	TotalCost            int64   `json:"total_cost"`
	OperatingProfit      int64   `json:"operating_profit"`
	TotalPatients        int     `json:"total_patients"`
	TreatmentDays        int     `json:"treatment_days"`
	RevenuePerPatient    float64 `json:"revenue_per_patient"`
	RevenuePerDay        float64 `json:"revenue_per_day"`
	PatientsPerDay       float64 `json:"patients_per_day"`
	SelfPayRatio         float64 `json:"self_pay_ratio"`
	ProfitMargin         float64 `json:"profit_margin"`
	TotalRevenueLabel    string  `json:"total_revenue_formatted"`
	OperatingProfitLabel string  `json:"operating_profit_formatted"`
}

// Delta compares the latest month against an earlier one. Rate is nil when
// the earlier value is zero.
type Delta struct {
	From   string   `json:"from"`
	Amount int64    `json:"amount"`
	Rate   *float64 `json:"rate,omitempty"`
}

type Dashboard struct {
	Latest     *models.MonthlyDataView `json:"latest"`
	Series     []SeriesPoint           `json:"series"`
	Period     PeriodSummary           `json:"period"`
	RevenueMoM *Delta                  `json:"revenue_mom,omitempty"`
	RevenueYoY *Delta                  `json:"revenue_yoy,omitempty"`
}

// BuildDashboard summarises the most recent months of rows. Rows may come in
// any order; months <= 0 selects DefaultDashboardMonths.
func BuildDashboard(rows []models.MonthlyData, months int) Dashboard {
	if months <= 0 {
		months = DefaultDashboardMonths
	}
	sorted := make([]models.MonthlyData, len(rows))
	for i, r := range rows {
		Apply(&r)
		sorted[i] = r
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].YearMonth < sorted[j].YearMonth })

	d := Dashboard{Series: []SeriesPoint{}}
	if len(sorted) == 0 {
		return d
	}

	window := sorted
	if len(window) > months {
		window = window[len(window)-months:]
	}
	var selfPay int64
	for _, r := range window {
		d.Series = append(d.Series, SeriesPoint{
			YearMonth:       r.YearMonth,
			TotalRevenue:    r.TotalRevenue,
			TotalCost:       r.TotalCost,
			OperatingProfit: r.OperatingProfit,
			TotalPatients:   r.TotalPatients,
		})
		d.Period.TotalRevenue += r.TotalRevenue
		d.Period.TotalCost += r.TotalCost
		d.Period.OperatingProfit += r.OperatingProfit
		d.Period.TotalPatients += r.TotalPatients
		d.Period.TreatmentDays += r.TreatmentDays
		selfPay += r.SelfPayRevenue
	}
	p := &d.Period
	p.Months = len(window)
	p.RevenuePerPatient = ratio(p.TotalRevenue, int64(p.TotalPatients))
	p.RevenuePerDay = ratio(p.TotalRevenue, int64(p.TreatmentDays))
	p.PatientsPerDay = ratio(int64(p.TotalPatients), int64(p.TreatmentDays))
	p.SelfPayRatio = ratio(selfPay, p.TotalRevenue)
	p.ProfitMargin = ratio(p.OperatingProfit, p.TotalRevenue)
	p.TotalRevenueLabel = FormatYen(p.TotalRevenue)
	p.OperatingProfitLabel = FormatYen(p.OperatingProfit)

	latest := sorted[len(sorted)-1]
	view := View(latest)
	d.Latest = &view

	byMonth := make(map[string]models.MonthlyData, len(sorted))
	for _, r := range sorted {
		byMonth[r.YearMonth] = r
	}
	d.RevenueMoM = compare(latest, byMonth, -1)
	d.RevenueYoY = compare(latest, byMonth, -12)
	return d
}

func compare(latest models.MonthlyData, byMonth map[string]models.MonthlyData, offset int) *Delta {
	ym, err := AddMonths(latest.YearMonth, offset)
	if err != nil {
		return nil
	}
	prev, ok := byMonth[ym]
	if !ok {
		return nil
	}
	delta := &Delta{From: ym, Amount: latest.TotalRevenue - prev.TotalRevenue}
	if prev.TotalRevenue != 0 {
		rate := float64(delta.Amount) / float64(prev.TotalRevenue)
		delta.Rate = &rate
	}
	return delta
}

func ratio(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
