package printorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentalboard-backend/internal/models"
)

var jst = time.FixedZone("JST", 9*3600)

func businessCards() models.PriceItem {
	return models.PriceItem{
		ID: "p1", ProductType: "名刺", Quantity: 100, Price: 2500,
		DesignFee: 4500, DeliveryDays: 10, Active: true,
	}
}

func TestEstimate(t *testing.T) {
	today := time.Date(2024, 4, 25, 15, 30, 0, 0, jst)

	est := Estimate(businessCards(), true, today)
	assert.Equal(t, int64(2500), est.Subtotal)
	assert.Equal(t, int64(4500), est.DesignFee)
	assert.Equal(t, int64(7000), est.Total)
	assert.Equal(t, "7,000", est.TotalFormatted)
	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, jst), est.EstimatedDelivery)

	est = Estimate(businessCards(), false, today)
	assert.Zero(t, est.DesignFee)
	assert.Equal(t, int64(2500), est.Total)

	included := businessCards()
	included.DesignFeeIncluded = true
	est = Estimate(included, true, today)
	assert.Zero(t, est.DesignFee)
	assert.Equal(t, int64(2500), est.Total)
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder(businessCards(), models.CreatePrintOrderInput{PriceItemID: "p1", DesignRequested: true, Notes: "ロゴ入り"}, "c1", "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(7000), order.Total)
	assert.Equal(t, "名刺", order.ProductType)
	assert.Equal(t, "c1", order.ClinicID)

	inactive := businessCards()
	inactive.Active = false
	_, err = NewOrder(inactive, models.CreatePrintOrderInput{}, "c1", "u1", time.Now())
	assert.ErrorIs(t, err, ErrInactiveItem)
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{"pending", "accepted"},
		{"accepted", "in_production"},
		{"in_production", "shipped"},
		{"shipped", "delivered"},
		{"pending", "cancelled"},
		{"accepted", "cancelled"},
	}
	for _, tr := range allowed {
		assert.NoError(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{"pending", "shipped"},
		{"in_production", "cancelled"},
		{"delivered", "pending"},
		{"cancelled", "accepted"},
		{"shipped", "accepted"},
	}
	for _, tr := range denied {
		assert.ErrorIs(t, CanTransition(tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}

	assert.ErrorIs(t, CanTransition("pending", "lost"), ErrUnknownStatus)
	assert.ErrorIs(t, CanTransition("draft", "pending"), ErrUnknownStatus)
}

func TestCanClinicCancel(t *testing.T) {
	order := models.PrintOrder{ClinicID: "c1", Status: models.OrderPending}
	assert.NoError(t, CanClinicCancel(order, "c1"))
	assert.Error(t, CanClinicCancel(order, "c2"))

	order.Status = models.OrderAccepted
	assert.Error(t, CanClinicCancel(order, "c1"))
}
