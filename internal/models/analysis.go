package models

import (
	"encoding/json"
	"time"
)

type Competitor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Chairs    int       `db:"chairs" json:"chairs"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CompetitorInput struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Chairs    int      `json:"chairs"`
	Source    string   `json:"source"`
}

// NearbyCompetitor is a competitor annotated with its distance from the analysis center.
type NearbyCompetitor struct {
	Competitor
	DistanceKM float64 `json:"distance_km"`
}

type MarketAnalysis struct {
	ID              string             `db:"id" json:"id"`
	ClinicID        string             `db:"clinic_id" json:"clinic_id"`
	Address         string             `db:"address" json:"address"`
	Latitude        float64            `db:"latitude" json:"latitude"`
	Longitude       float64            `db:"longitude" json:"longitude"`
	RadiusKM        float64            `db:"radius_km" json:"radius_km"`
	CompetitorCount int                `db:"competitor_count" json:"competitor_count"`
	DensityPerKM2   float64            `db:"density_per_km2" json:"density_per_km2"`
	NearestKM       *float64           `db:"nearest_km" json:"nearest_km,omitempty"`
	TotalChairs     int                `db:"total_chairs" json:"total_chairs"`
	Competitors     []NearbyCompetitor `db:"-" json:"competitors"`
	CompetitorsJSON []byte             `db:"competitors" json:"-"`
	CreatedBy       string             `db:"created_by" json:"created_by"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}

type MarketAnalysisInput struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKM  float64  `json:"radius_km"`
}

type SimulationParams struct {
	BaseYearMonth       string  `json:"base_year_month"`
	Months              int     `json:"months"`
	PatientGrowthRate   float64 `json:"patient_growth_rate"`
	UnitPriceChangeRate float64 `json:"unit_price_change_rate"`
	SelfPayGrowthRate   float64 `json:"self_pay_growth_rate"`
	CostGrowthRate      float64 `json:"cost_growth_rate"`
	AdditionalFixedCost int64   `json:"additional_fixed_cost"`
	AdditionalStaffCost int64   `json:"additional_staff_cost"`
	InitialInvestment   int64   `json:"initial_investment"`
}

type SimulationMonth struct {
	YearMonth string `json:"year_month"`
	Patients  int    `json:"patients"`
	Revenue   int64  `json:"revenue"`
	Cost      int64  `json:"cost"`
	Profit    int64  `json:"profit"`
	// ProfitDelta is the change against the unchanged base month.
	ProfitDelta      int64 `json:"profit_delta"`
	CumulativeProfit int64 `json:"cumulative_profit"`
}

type SimulationResult struct {
	BaseYearMonth     string            `json:"base_year_month"`
	Months            []SimulationMonth `json:"months"`
	TotalRevenue      int64             `json:"total_revenue"`
	TotalCost         int64             `json:"total_cost"`
	TotalProfit       int64             `json:"total_profit"`
	TotalProfitDelta  int64             `json:"total_profit_delta"`
	PaybackMonth      *int              `json:"payback_month,omitempty"`
	TotalRevenueLabel string            `json:"total_revenue_formatted"`
	TotalProfitLabel  string            `json:"total_profit_formatted"`
}

type Simulation struct {
	ID         string            `db:"id" json:"id"`
	ClinicID   string            `db:"clinic_id" json:"clinic_id"`
	Name       string            `db:"name" json:"name"`
	Params     SimulationParams  `db:"-" json:"params"`
	Result     *SimulationResult `db:"-" json:"result,omitempty"`
	ParamsJSON json.RawMessage   `db:"params" json:"-"`
	ResultJSON json.RawMessage   `db:"result" json:"-"`
	CreatedBy  string            `db:"created_by" json:"created_by"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

type CreateSimulationInput struct {
	Name   string           `json:"name"`
	Params SimulationParams `json:"params"`
}

const (
	ReportMonthly = "monthly"
	ReportAnnual  = "annual"

	ReportPending    = "pending"
	ReportGenerating = "generating"
	ReportReady      = "ready"
	ReportFailed     = "failed"
)

type Report struct {
	ID        string    `db:"id" json:"id"`
	ClinicID  string    `db:"clinic_id" json:"clinic_id"`
	Kind      string    `db:"kind" json:"kind"`
	Period    string    `db:"period" json:"period"`
	Status    string    `db:"status" json:"status"`
	ObjectKey string    `db:"object_key" json:"-"`
	URL       string    `db:"url" json:"url,omitempty"`
	Error     string    `db:"error" json:"error,omitempty"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateReportInput struct {
	Kind   string `json:"kind"`
	Period string `json:"period"`
}
