package storage

import (
	"context"
	"database/sql"
	"errors"

	"dentalboard-backend/internal/models"
)

const printOrderColumns = `id, clinic_id, price_item_id, product_type, quantity, unit_price, design_requested,
	design_fee, total, notes, status, estimated_delivery, created_by, created_at, updated_at`

func (s *Storage) CreatePrintOrder(ctx context.Context, order *models.PrintOrder) error {
	if order.ID == "" {
		order.ID = newID()
	}
	query := `
		INSERT INTO print_orders (id, clinic_id, price_item_id, product_type, quantity, unit_price,
			design_requested, design_fee, total, notes, status, estimated_delivery, created_by)
		VALUES (:id, :clinic_id, :price_item_id, :product_type, :quantity, :unit_price,
			:design_requested, :design_fee, :total, :notes, :status, :estimated_delivery, :created_by)
		RETURNING created_at, updated_at
	`
	rows, err := s.db.NamedQueryContext(ctx, query, order)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&order.CreatedAt, &order.UpdatedAt)
	}
	return rows.Err()
}

func (s *Storage) GetPrintOrder(ctx context.Context, id string) (*models.PrintOrder, error) {
	var order models.PrintOrder
	err := s.db.GetContext(ctx, &order, `SELECT `+printOrderColumns+` FROM print_orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListPrintOrders filters by clinic and status; empty filters match all.
func (s *Storage) ListPrintOrders(ctx context.Context, clinicID, status string) ([]models.PrintOrder, error) {
	orders := []models.PrintOrder{}
	query := `
		SELECT ` + printOrderColumns + `
		FROM print_orders
		WHERE ($1::uuid IS NULL OR clinic_id = $1::uuid)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT 500
	`
	if err := s.db.SelectContext(ctx, &orders, query, nullIfEmpty(clinicID), status); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdatePrintOrderStatus moves an order from one status to another. It fails
// with ErrStatusConflict when the order is no longer in status from.
func (s *Storage) UpdatePrintOrderStatus(ctx context.Context, id, from, to string) (*models.PrintOrder, error) {
	var order models.PrintOrder
	query := `
		UPDATE print_orders SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING ` + printOrderColumns
	err := s.db.GetContext(ctx, &order, query, to, id, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
