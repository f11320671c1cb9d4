package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"dentalboard-backend/internal/models"
)

const monthlyColumns = `id, clinic_id, year_month,
	insurance_revenue, self_pay_revenue, retail_revenue, total_revenue,
	personnel_cost, material_cost, lab_cost, rent_cost, equipment_cost, advertising_cost, other_cost, total_cost,
	operating_profit, new_patients, returning_patients, total_patients, treatment_days,
	created_at, updated_at`

const monthlyInsert = `
	INSERT INTO monthly_data (
		id, clinic_id, year_month,
		insurance_revenue, self_pay_revenue, retail_revenue, total_revenue,
		personnel_cost, material_cost, lab_cost, rent_cost, equipment_cost, advertising_cost, other_cost, total_cost,
		operating_profit, new_patients, returning_patients, total_patients, treatment_days
	) VALUES (
		:id, :clinic_id, :year_month,
		:insurance_revenue, :self_pay_revenue, :retail_revenue, :total_revenue,
		:personnel_cost, :material_cost, :lab_cost, :rent_cost, :equipment_cost, :advertising_cost, :other_cost, :total_cost,
		:operating_profit, :new_patients, :returning_patients, :total_patients, :treatment_days
	)`

const monthlyUpsertSuffix = `
	ON CONFLICT (clinic_id, year_month) DO UPDATE SET
		insurance_revenue = EXCLUDED.insurance_revenue,
		self_pay_revenue = EXCLUDED.self_pay_revenue,
		retail_revenue = EXCLUDED.retail_revenue,
		total_revenue = EXCLUDED.total_revenue,
		personnel_cost = EXCLUDED.personnel_cost,
		material_cost = EXCLUDED.material_cost,
		lab_cost = EXCLUDED.lab_cost,
		rent_cost = EXCLUDED.rent_cost,
		equipment_cost = EXCLUDED.equipment_cost,
		advertising_cost = EXCLUDED.advertising_cost,
		other_cost = EXCLUDED.other_cost,
		total_cost = EXCLUDED.total_cost,
		operating_profit = EXCLUDED.operating_profit,
		new_patients = EXCLUDED.new_patients,
		returning_patients = EXCLUDED.returning_patients,
		total_patients = EXCLUDED.total_patients,
		treatment_days = EXCLUDED.treatment_days,
		updated_at = now()`

// ListMonthlyData returns a clinic's rows in month order. Empty bounds are open.
func (s *Storage) ListMonthlyData(ctx context.Context, clinicID, from, to string) ([]models.MonthlyData, error) {
	rows := []models.MonthlyData{}
	query := `
		SELECT ` + monthlyColumns + `
		FROM monthly_data
		WHERE clinic_id = $1
		  AND ($2 = '' OR year_month >= $2)
		  AND ($3 = '' OR year_month <= $3)
		ORDER BY year_month
	`
	if err := s.db.SelectContext(ctx, &rows, query, clinicID, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Storage) GetMonthlyData(ctx context.Context, clinicID, yearMonth string) (*models.MonthlyData, error) {
	var row models.MonthlyData
	query := `SELECT ` + monthlyColumns + ` FROM monthly_data WHERE clinic_id = $1 AND year_month = $2`
	err := s.db.GetContext(ctx, &row, query, clinicID, yearMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateMonthlyData inserts one month; derived totals must already be applied.
func (s *Storage) CreateMonthlyData(ctx context.Context, row *models.MonthlyData) error {
	if row.ID == "" {
		row.ID = newID()
	}
	rows, err := s.db.NamedQueryContext(ctx, monthlyInsert+` RETURNING created_at, updated_at`, row)
	if isUniqueViolation(err) {
		return ErrDuplicateMonth
	}
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&row.CreatedAt, &row.UpdatedAt)
	}
	if err := rows.Err(); isUniqueViolation(err) {
		return ErrDuplicateMonth
	} else if err != nil {
		return err
	}
	return nil
}

func (s *Storage) UpdateMonthlyData(ctx context.Context, row *models.MonthlyData) error {
	query := `
		UPDATE monthly_data SET
			insurance_revenue = :insurance_revenue, self_pay_revenue = :self_pay_revenue,
			retail_revenue = :retail_revenue, total_revenue = :total_revenue,
			personnel_cost = :personnel_cost, material_cost = :material_cost, lab_cost = :lab_cost,
			rent_cost = :rent_cost, equipment_cost = :equipment_cost, advertising_cost = :advertising_cost,
			other_cost = :other_cost, total_cost = :total_cost, operating_profit = :operating_profit,
			new_patients = :new_patients, returning_patients = :returning_patients,
			total_patients = :total_patients, treatment_days = :treatment_days,
			updated_at = now()
		WHERE clinic_id = :clinic_id AND year_month = :year_month
	`
	return affectedOne(s.db.NamedExecContext(ctx, query, row))
}

func (s *Storage) DeleteMonthlyData(ctx context.Context, clinicID, yearMonth string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM monthly_data WHERE clinic_id = $1 AND year_month = $2`, clinicID, yearMonth))
}

// BulkUpsertMonthlyData writes every row for the clinic in one transaction.
// Existing months are overwritten and a month repeated in rows keeps its last
// occurrence. Any failure rolls back the whole batch.
func (s *Storage) BulkUpsertMonthlyData(ctx context.Context, clinicID string, rows []models.MonthlyData) error {
	if len(rows) == 0 {
		return nil
	}
	position := make(map[string]int, len(rows))
	batch := make([]models.MonthlyData, 0, len(rows))
	for _, r := range rows {
		r.ClinicID = clinicID
		if r.ID == "" {
			r.ID = newID()
		}
		if i, ok := position[r.YearMonth]; ok {
			batch[i] = r
			continue
		}
		position[r.YearMonth] = len(batch)
		batch = append(batch, r)
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(batch); start += bulkBatchSize {
			end := min(start+bulkBatchSize, len(batch))
			if _, err := tx.NamedExecContext(ctx, monthlyInsert+monthlyUpsertSuffix, batch[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}
