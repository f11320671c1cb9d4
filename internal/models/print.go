package models

import (
	"encoding/json"
	"time"
)

type PriceItem struct {
	ID                string          `db:"id" json:"id"`
	ProductType       string          `db:"product_type" json:"product_type"`
	Quantity          int             `db:"quantity" json:"quantity"`
	Price             int64           `db:"price" json:"price"`
	DesignFee         int64           `db:"design_fee" json:"design_fee"`
	DesignFeeIncluded bool            `db:"design_fee_included" json:"design_fee_included"`
	Specifications    json.RawMessage `db:"specifications" json:"specifications"`
	DeliveryDays      int             `db:"delivery_days" json:"delivery_days"`
	Active            bool            `db:"active" json:"active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type PriceItemInput struct {
	ProductType       string          `json:"product_type"`
	Quantity          int             `json:"quantity"`
	Price             int64           `json:"price"`
	DesignFee         int64           `json:"design_fee"`
	DesignFeeIncluded bool            `json:"design_fee_included"`
	Specifications    json.RawMessage `json:"specifications"`
	DeliveryDays      int             `json:"delivery_days"`
	Active            *bool           `json:"active"`
}

const (
	OrderPending      = "pending"
	OrderAccepted     = "accepted"
	OrderInProduction = "in_production"
	OrderShipped      = "shipped"
	OrderDelivered    = "delivered"
	OrderCancelled    = "cancelled"
)

type PrintOrder struct {
	ID                string    `db:"id" json:"id"`
	ClinicID          string    `db:"clinic_id" json:"clinic_id"`
	PriceItemID       string    `db:"price_item_id" json:"price_item_id"`
	ProductType       string    `db:"product_type" json:"product_type"`
	Quantity          int       `db:"quantity" json:"quantity"`
	UnitPrice         int64     `db:"unit_price" json:"unit_price"`
	DesignRequested   bool      `db:"design_requested" json:"design_requested"`
	DesignFee         int64     `db:"design_fee" json:"design_fee"`
	Total             int64     `db:"total" json:"total"`
	Notes             string    `db:"notes" json:"notes"`
	Status            string    `db:"status" json:"status"`
	EstimatedDelivery time.Time `db:"estimated_delivery" json:"estimated_delivery"`
	CreatedBy         string    `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type CreatePrintOrderInput struct {
	PriceItemID     string `json:"price_item_id"`
	DesignRequested bool   `json:"design_requested"`
	Notes           string `json:"notes"`
}

// Estimate is the quoted cost of ordering one price item.
type Estimate struct {
	PriceItemID       string    `json:"price_item_id"`
	ProductType       string    `json:"product_type"`
	Quantity          int       `json:"quantity"`
	Subtotal          int64     `json:"subtotal"`
	DesignFee         int64     `json:"design_fee"`
	Total             int64     `json:"total"`
	TotalFormatted    string    `json:"total_formatted"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}
