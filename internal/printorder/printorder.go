// Package printorder prices print orders and guards their status workflow.
package printorder

import (
	"errors"
	"time"

	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
)

var (
	ErrInactiveItem      = errors.New("price item is not available")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// Estimate quotes one price item. The design fee is charged only when design
// is requested and not already included in the price.
func Estimate(item models.PriceItem, designRequested bool, today time.Time) models.Estimate {
	var designFee int64
	if designRequested && !item.DesignFeeIncluded {
		designFee = item.DesignFee
	}
	total := item.Price + designFee
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return models.Estimate{
		PriceItemID:       item.ID,
		ProductType:       item.ProductType,
		Quantity:          item.Quantity,
		Subtotal:          item.Price,
		DesignFee:         designFee,
		Total:             total,
		TotalFormatted:    finance.FormatYen(total),
		EstimatedDelivery: day.AddDate(0, 0, item.DeliveryDays),
	}
}

// NewOrder builds a pending order for clinicID from an active price item.
func NewOrder(item models.PriceItem, in models.CreatePrintOrderInput, clinicID, userID string, today time.Time) (models.PrintOrder, error) {
	if !item.Active {
		return models.PrintOrder{}, ErrInactiveItem
	}
	est := Estimate(item, in.DesignRequested, today)
	return models.PrintOrder{
		ClinicID:          clinicID,
		PriceItemID:       item.ID,
		ProductType:       item.ProductType,
		Quantity:          item.Quantity,
		UnitPrice:         item.Price,
		DesignRequested:   in.DesignRequested,
		DesignFee:         est.DesignFee,
		Total:             est.Total,
		Notes:             in.Notes,
		Status:            models.OrderPending,
		EstimatedDelivery: est.EstimatedDelivery,
		CreatedBy:         userID,
	}, nil
}

var transitions = map[string][]string{
	models.OrderPending:      {models.OrderAccepted, models.OrderCancelled},
	models.OrderAccepted:     {models.OrderInProduction, models.OrderCancelled},
	models.OrderInProduction: {models.OrderShipped},
	models.OrderShipped:      {models.OrderDelivered},
	models.OrderDelivered:    nil,
	models.OrderCancelled:    nil,
}

func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// CanTransition reports whether an order may move from one status to the next.
func CanTransition(from, to string) error {
	next, ok := transitions[from]
	if !ok || !ValidStatus(to) {
		return ErrUnknownStatus
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// CanClinicCancel reports whether a clinic user may cancel the order: only
// their own clinic's orders, and only while pending.
func CanClinicCancel(order models.PrintOrder, clinicID string) error {
	if order.ClinicID != clinicID {
		return ErrInvalidTransition
	}
	if order.Status != models.OrderPending {
		return ErrInvalidTransition
	}
	return nil
}
