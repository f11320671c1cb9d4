package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"dentalboard-backend/internal/models"
)

const priceItemColumns = `id, product_type, quantity, price, design_fee, design_fee_included, specifications, delivery_days, active, created_at, updated_at`

const priceItemInsert = `
	INSERT INTO price_items (id, product_type, quantity, price, design_fee, design_fee_included, specifications, delivery_days, active)
	VALUES (:id, :product_type, :quantity, :price, :design_fee, :design_fee_included, :specifications, :delivery_days, :active)`

func (s *Storage) ListPriceItems(ctx context.Context, activeOnly bool) ([]models.PriceItem, error) {
	items := []models.PriceItem{}
	query := `SELECT ` + priceItemColumns + ` FROM price_items WHERE (NOT $1 OR active) ORDER BY product_type, quantity`
	if err := s.db.SelectContext(ctx, &items, query, activeOnly); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Storage) GetPriceItem(ctx context.Context, id string) (*models.PriceItem, error) {
	var item models.PriceItem
	err := s.db.GetContext(ctx, &item, `SELECT `+priceItemColumns+` FROM price_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Storage) CreatePriceItem(ctx context.Context, item *models.PriceItem) error {
	if item.ID == "" {
		item.ID = newID()
	}
	item.Specifications = specOrEmpty(item.Specifications)
	rows, err := s.db.NamedQueryContext(ctx, priceItemInsert+` RETURNING created_at, updated_at`, item)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&item.CreatedAt, &item.UpdatedAt)
	}
	return rows.Err()
}

func (s *Storage) UpdatePriceItem(ctx context.Context, item *models.PriceItem) error {
	item.Specifications = specOrEmpty(item.Specifications)
	query := `
		UPDATE price_items SET
			product_type = :product_type, quantity = :quantity, price = :price,
			design_fee = :design_fee, design_fee_included = :design_fee_included,
			specifications = :specifications, delivery_days = :delivery_days,
			active = :active, updated_at = now()
		WHERE id = :id
	`
	return affectedOne(s.db.NamedExecContext(ctx, query, item))
}

// DeletePriceItem deactivates items that orders still reference and removes
// the rest.
func (s *Storage) DeletePriceItem(ctx context.Context, id string) error {
	err := affectedOne(s.db.ExecContext(ctx, `DELETE FROM price_items WHERE id = $1`, id))
	if isForeignKeyViolation(err) {
		return affectedOne(s.db.ExecContext(ctx, `UPDATE price_items SET active = FALSE, updated_at = now() WHERE id = $1`, id))
	}
	return err
}

// BulkInsertPriceItems inserts all items in one transaction.
func (s *Storage) BulkInsertPriceItems(ctx context.Context, inputs []models.PriceItemInput) error {
	if len(inputs) == 0 {
		return nil
	}
	items := make([]models.PriceItem, 0, len(inputs))
	for _, in := range inputs {
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		items = append(items, models.PriceItem{
			ID:                newID(),
			ProductType:       in.ProductType,
			Quantity:          in.Quantity,
			Price:             in.Price,
			DesignFee:         in.DesignFee,
			DesignFeeIncluded: in.DesignFeeIncluded,
			Specifications:    specOrEmpty(in.Specifications),
			DeliveryDays:      in.DeliveryDays,
			Active:            active,
		})
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(items); start += bulkBatchSize {
			end := min(start+bulkBatchSize, len(items))
			if _, err := tx.NamedExecContext(ctx, priceItemInsert, items[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func specOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("{}")
	}
	return raw
}
