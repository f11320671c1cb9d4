package finance

import (
	"errors"
	"math"

	"dentalboard-backend/internal/models"
)

const (
	MinSimulationMonths = 1
	MaxSimulationMonths = 60
	// MaxSimulationRate is the largest monthly change, in percent.
	MaxSimulationRate = 100
	// MaxAmount keeps every projected yen figure exact in a float64.
	MaxAmount = 1 << 53
)

var (
	ErrSimulationMonths = errors.New("months must be between 1 and 60")
	ErrSimulationRate   = errors.New("growth rates must be greater than -100 and at most 100")
	ErrNegativeCost     = errors.New("additional costs and investment must not be negative")
	ErrAmountTooLarge   = errors.New("projected amounts are too large")
)

// ValidateParams checks the projection inputs. Rates are percent per month.
func ValidateParams(p models.SimulationParams) error {
	if p.Months < MinSimulationMonths || p.Months > MaxSimulationMonths {
		return ErrSimulationMonths
	}
	for _, r := range []float64{p.PatientGrowthRate, p.UnitPriceChangeRate, p.SelfPayGrowthRate, p.CostGrowthRate} {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= -100 || r > MaxSimulationRate {
			return ErrSimulationRate
		}
	}
	if p.AdditionalFixedCost < 0 || p.AdditionalStaffCost < 0 || p.InitialInvestment < 0 {
		return ErrNegativeCost
	}
	if p.AdditionalFixedCost > MaxAmount || p.AdditionalStaffCost > MaxAmount || p.InitialInvestment > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// Simulate projects base forward month by month.
//
// Patient growth scales every revenue line and the variable costs (material
// and lab). Unit price change applies to insurance and retail revenue, self-pay
// growth to self-pay revenue. Cost growth compounds on every cost line. The
// additional fixed and staff costs are added flat from the first projected
// month. Payback is the first month whose cumulative profit delta covers the
// initial investment. A projection whose figures leave the MaxAmount range
// fails with ErrAmountTooLarge.
func Simulate(base models.MonthlyData, p models.SimulationParams) (models.SimulationResult, error) {
	if err := ValidateParams(p); err != nil {
		return models.SimulationResult{}, err
	}
	if _, err := ParseMonth(base.YearMonth); err != nil {
		return models.SimulationResult{}, err
	}
	for _, v := range []int64{
		base.InsuranceRevenue, base.SelfPayRevenue, base.RetailRevenue,
		base.PersonnelCost, base.MaterialCost, base.LabCost, base.RentCost,
		base.EquipmentCost, base.AdvertisingCost, base.OtherCost, int64(base.TotalPatients),
	} {
		if v < -MaxAmount || v > MaxAmount {
			return models.SimulationResult{}, ErrAmountTooLarge
		}
	}
	Apply(&base)

	res := models.SimulationResult{
		BaseYearMonth: base.YearMonth,
		Months:        make([]models.SimulationMonth, 0, p.Months),
	}
	fixed := base.PersonnelCost + base.RentCost + base.EquipmentCost + base.AdvertisingCost + base.OtherCost
	variable := base.MaterialCost + base.LabCost

	var overflow bool
	scale := func(v int64, factor float64) int64 {
		f := math.Round(float64(v) * factor)
		if math.IsNaN(f) || math.Abs(f) > MaxAmount {
			overflow = true
			return 0
		}
		return int64(f)
	}

	var cumulative int64
	for i := 1; i <= p.Months; i++ {
		n := float64(i)
		patients := compound(p.PatientGrowthRate, n)
		price := compound(p.UnitPriceChangeRate, n)
		selfPay := compound(p.SelfPayGrowthRate, n)
		costs := compound(p.CostGrowthRate, n)

		revenue := scale(base.InsuranceRevenue, patients*price) +
			scale(base.SelfPayRevenue, patients*selfPay) +
			scale(base.RetailRevenue, patients*price)
		cost := scale(fixed, costs) +
			scale(variable, patients*costs) +
			p.AdditionalFixedCost + p.AdditionalStaffCost
		visits := scale(int64(base.TotalPatients), patients)
		if overflow {
			return models.SimulationResult{}, ErrAmountTooLarge
		}
		profit := revenue - cost
		delta := profit - base.OperatingProfit
		cumulative += delta

		ym, _ := AddMonths(base.YearMonth, i)
		res.Months = append(res.Months, models.SimulationMonth{
			YearMonth:        ym,
			Patients:         int(visits),
			Revenue:          revenue,
			Cost:             cost,
			Profit:           profit,
			ProfitDelta:      delta,
			CumulativeProfit: cumulative,
		})
		res.TotalRevenue += revenue
		res.TotalCost += cost
		res.TotalProfit += profit

		if p.InitialInvestment > 0 && res.PaybackMonth == nil && cumulative >= p.InitialInvestment {
			month := i
			res.PaybackMonth = &month
		}
	}
	res.TotalProfitDelta = cumulative
	res.TotalRevenueLabel = FormatYen(res.TotalRevenue)
	res.TotalProfitLabel = FormatYen(res.TotalProfit)
	return res, nil
}

func compound(ratePercent, months float64) float64 {
	return math.Pow(1+ratePercent/100, months)
}
