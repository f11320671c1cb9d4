package csvimport

import "dentalboard-backend/internal/models"

// MonthlyData is the clinic monthly figures import.
var MonthlyData = Schema{
	Name: "monthly_data",
	Fields: []Field{
		{Name: "year_month", Label: "年月", Aliases: []string{"年月", "対象月"}, Kind: YearMonth, Required: true},
		{Name: "insurance_revenue", Label: "保険診療収入", Aliases: []string{"保険診療収入", "保険収入"}, Kind: Number, Required: true},
		{Name: "self_pay_revenue", Label: "自費診療収入", Aliases: []string{"自費診療収入", "自費収入"}, Kind: Number, Required: true},
		{Name: "retail_revenue", Label: "物販収入", Aliases: []string{"物販収入"}, Kind: Number},
		{Name: "personnel_cost", Label: "人件費", Aliases: []string{"人件費"}, Kind: Number},
		{Name: "material_cost", Label: "材料費", Aliases: []string{"材料費"}, Kind: Number},
		{Name: "lab_cost", Label: "技工料", Aliases: []string{"技工料", "技工費"}, Kind: Number},
		{Name: "rent_cost", Label: "家賃", Aliases: []string{"家賃", "地代家賃"}, Kind: Number},
		{Name: "equipment_cost", Label: "設備費", Aliases: []string{"設備費", "リース料"}, Kind: Number},
		{Name: "advertising_cost", Label: "広告宣伝費", Aliases: []string{"広告宣伝費", "広告費"}, Kind: Number},
		{Name: "other_cost", Label: "その他経費", Aliases: []string{"その他経費"}, Kind: Number},
		{Name: "new_patients", Label: "新患数", Aliases: []string{"新患数", "新規患者数"}, Kind: Number},
		{Name: "returning_patients", Label: "再診患者数", Aliases: []string{"再診患者数", "再来患者数"}, Kind: Number},
		{Name: "total_patients", Label: "総患者数", Aliases: []string{"総患者数", "延べ患者数"}, Kind: Number},
		{Name: "treatment_days", Label: "診療日数", Aliases: []string{"診療日数"}, Kind: Number},
	},
}

// MonthlyRecords converts validated monthly rows. Derived totals are left
// for the caller to compute.
func MonthlyRecords(rows []Row) []models.MonthlyData {
	out := make([]models.MonthlyData, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MonthlyData{
			YearMonth:         r.Text("year_month"),
			InsuranceRevenue:  r.Int64("insurance_revenue"),
			SelfPayRevenue:    r.Int64("self_pay_revenue"),
			RetailRevenue:     r.Int64("retail_revenue"),
			PersonnelCost:     r.Int64("personnel_cost"),
			MaterialCost:      r.Int64("material_cost"),
			LabCost:           r.Int64("lab_cost"),
			RentCost:          r.Int64("rent_cost"),
			EquipmentCost:     r.Int64("equipment_cost"),
			AdvertisingCost:   r.Int64("advertising_cost"),
			OtherCost:         r.Int64("other_cost"),
			NewPatients:       r.Int("new_patients"),
			ReturningPatients: r.Int("returning_patients"),
			TotalPatients:     r.Int("total_patients"),
			TreatmentDays:     r.Int("treatment_days"),
		})
	}
	return out
}
