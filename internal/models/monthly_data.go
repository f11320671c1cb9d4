package models

import "time"

// MonthlyData is one clinic's financial and patient figures for a calendar month.
// Amounts are whole yen.
type MonthlyData struct {
	ID       string `db:"id" json:"id"`
	ClinicID string `db:"clinic_id" json:"clinic_id"`
	// YearMonth is formatted YYYY-MM.
	YearMonth string `db:"year_month" json:"year_month"`

	InsuranceRevenue int64 `db:"insurance_revenue" json:"insurance_revenue"`
	SelfPayRevenue   int64 `db:"self_pay_revenue" json:"self_pay_revenue"`
	RetailRevenue    int64 `db:"retail_revenue" json:"retail_revenue"`
	TotalRevenue     int64 `db:"total_revenue" json:"total_revenue"`

	PersonnelCost   int64 `db:"personnel_cost" json:"personnel_cost"`
	MaterialCost    int64 `db:"material_cost" json:"material_cost"`
	LabCost         int64 `db:"lab_cost" json:"lab_cost"`
	RentCost        int64 `db:"rent_cost" json:"rent_cost"`
	EquipmentCost   int64 `db:"equipment_cost" json:"equipment_cost"`
	AdvertisingCost int64 `db:"advertising_cost" json:"advertising_cost"`
	OtherCost       int64 `db:"other_cost" json:"other_cost"`
	TotalCost       int64 `db:"total_cost" json:"total_cost"`

	OperatingProfit int64 `db:"operating_profit" json:"operating_profit"`

	NewPatients       int `db:"new_patients" json:"new_patients"`
	ReturningPatients int `db:"returning_patients" json:"returning_patients"`
	TotalPatients     int `db:"total_patients" json:"total_patients"`
	TreatmentDays     int `db:"treatment_days" json:"treatment_days"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MonthlyDataView decorates a row with display strings for the SPA.
type MonthlyDataView struct {
	MonthlyData
	TotalRevenueFormatted    string `json:"total_revenue_formatted"`
	TotalCostFormatted       string `json:"total_cost_formatted"`
	OperatingProfitFormatted string `json:"operating_profit_formatted"`
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
