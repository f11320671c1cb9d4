// Package finance derives totals, dashboard figures and projections from
// monthly clinic data. Everything here is pure and works in whole yen.
package finance

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dentalboard-backend/internal/models"
)

var yen = message.NewPrinter(language.Japanese)

// FormatYen groups digits by thousands, e.g. 5000000 -> "5,000,000".
func FormatYen(v int64) string {
	return yen.Sprintf("%d", v)
}

func Revenue(m models.MonthlyData) int64 {
	return m.InsuranceRevenue + m.SelfPayRevenue + m.RetailRevenue
}

func Cost(m models.MonthlyData) int64 {
	return m.PersonnelCost + m.MaterialCost + m.LabCost + m.RentCost +
		m.EquipmentCost + m.AdvertisingCost + m.OtherCost
}

// Apply fills the derived fields of m. TotalPatients is only derived when
// it was not supplied.
func Apply(m *models.MonthlyData) {
	m.TotalRevenue = Revenue(*m)
	m.TotalCost = Cost(*m)
	m.OperatingProfit = m.TotalRevenue - m.TotalCost
	if m.TotalPatients == 0 {
		m.TotalPatients = m.NewPatients + m.ReturningPatients
	}
}

// View applies the totals and attaches display strings.
func View(m models.MonthlyData) models.MonthlyDataView {
	Apply(&m)
	return models.MonthlyDataView{
		MonthlyData:              m,
		TotalRevenueFormatted:    FormatYen(m.TotalRevenue),
		TotalCostFormatted:       FormatYen(m.TotalCost),
		OperatingProfitFormatted: FormatYen(m.OperatingProfit),
	}
}
