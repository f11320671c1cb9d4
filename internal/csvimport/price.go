package csvimport

import "dentalboard-backend/internal/models"

// PriceTable is the admin print price table import.
var PriceTable = Schema{
	Name: "price_table",
	Fields: []Field{
		{Name: "product_type", Label: "商品種類", Aliases: []string{"商品種類", "商品"}, Kind: Text, Required: true},
		{Name: "quantity", Label: "数量", Aliases: []string{"数量"}, Kind: Number, Required: true},
		{Name: "price", Label: "価格", Aliases: []string{"価格", "金額"}, Kind: Number, Required: true},
		{Name: "design_fee", Label: "デザイン料", Aliases: []string{"デザイン料"}, Kind: Number, Required: true},
		{Name: "design_fee_included", Label: "デザイン料込み", Aliases: []string{"デザイン料込み", "デザイン料込"}, Kind: Bool, Required: true},
		{Name: "specifications", Label: "仕様", Aliases: []string{"仕様"}, Kind: JSON},
		{Name: "delivery_days", Label: "納期日数", Aliases: []string{"納期日数", "納期"}, Kind: Number, Required: true},
	},
}

// PriceItems converts validated price table rows.
func PriceItems(rows []Row) []models.PriceItemInput {
	out := make([]models.PriceItemInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.PriceItemInput{
			ProductType:       r.Text("product_type"),
			Quantity:          r.Int("quantity"),
			Price:             r.Int64("price"),
			DesignFee:         r.Int64("design_fee"),
			DesignFeeIncluded: r.Bool("design_fee_included"),
			Specifications:    r.JSON("specifications"),
			DeliveryDays:      r.Int("delivery_days"),
		})
	}
	return out
}
