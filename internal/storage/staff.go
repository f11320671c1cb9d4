package storage

import (
	"context"
	"database/sql"
	"errors"

	"dentalboard-backend/internal/models"
)

const staffColumns = `id, clinic_id, name, position, employment_type, monthly_cost, hired_on, notes, active, created_at, updated_at`

func (s *Storage) ListStaff(ctx context.Context, clinicID string) ([]models.Staff, error) {
	staff := []models.Staff{}
	query := `SELECT ` + staffColumns + ` FROM staff WHERE clinic_id = $1 ORDER BY active DESC, name`
	if err := s.db.SelectContext(ctx, &staff, query, clinicID); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Storage) GetStaff(ctx context.Context, clinicID, id string) (*models.Staff, error) {
	var member models.Staff
	err := s.db.GetContext(ctx, &member, `SELECT `+staffColumns+` FROM staff WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *Storage) CreateStaff(ctx context.Context, member *models.Staff) error {
	if member.ID == "" {
		member.ID = newID()
	}
	query := `
		INSERT INTO staff (id, clinic_id, name, position, employment_type, monthly_cost, hired_on, notes, active)
		VALUES (:id, :clinic_id, :name, :position, :employment_type, :monthly_cost, :hired_on, :notes, :active)
		RETURNING created_at, updated_at
	`
	rows, err := s.db.NamedQueryContext(ctx, query, member)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&member.CreatedAt, &member.UpdatedAt)
	}
	return rows.Err()
}

func (s *Storage) UpdateStaff(ctx context.Context, member *models.Staff) error {
	query := `
		UPDATE staff SET
			name = :name, position = :position, employment_type = :employment_type,
			monthly_cost = :monthly_cost, hired_on = :hired_on, notes = :notes,
			active = :active, updated_at = now()
		WHERE clinic_id = :clinic_id AND id = :id
	`
	return affectedOne(s.db.NamedExecContext(ctx, query, member))
}

func (s *Storage) DeleteStaff(ctx context.Context, clinicID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM staff WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

// StaffMonthlyCost sums the monthly cost of active staff.
func (s *Storage) StaffMonthlyCost(ctx context.Context, clinicID string) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(monthly_cost), 0) FROM staff WHERE clinic_id = $1 AND active`, clinicID)
	return total, err
}
