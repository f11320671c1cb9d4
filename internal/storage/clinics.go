package storage

import (
	"context"
	"database/sql"
	"errors"

	"dentalboard-backend/internal/models"
)

const clinicColumns = `id, name, postal_code, address, phone, email, latitude, longitude, active, created_at, updated_at`

func (s *Storage) ListClinics(ctx context.Context, activeOnly bool) ([]models.Clinic, error) {
	clinics := []models.Clinic{}
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE (NOT $1 OR active) ORDER BY name`
	if err := s.db.SelectContext(ctx, &clinics, query, activeOnly); err != nil {
		return nil, err
	}
	return clinics, nil
}

func (s *Storage) GetClinic(ctx context.Context, id string) (*models.Clinic, error) {
	var clinic models.Clinic
	err := s.db.GetContext(ctx, &clinic, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

func (s *Storage) CreateClinic(ctx context.Context, clinic *models.Clinic) error {
	if clinic.ID == "" {
		clinic.ID = newID()
	}
	query := `
		INSERT INTO clinics (id, name, postal_code, address, phone, email, latitude, longitude, active)
		VALUES (:id, :name, :postal_code, :address, :phone, :email, :latitude, :longitude, :active)
		RETURNING created_at, updated_at
	`
	rows, err := s.db.NamedQueryContext(ctx, query, clinic)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&clinic.CreatedAt, &clinic.UpdatedAt)
	}
	return rows.Err()
}

func (s *Storage) UpdateClinic(ctx context.Context, clinic *models.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, postal_code = $2, address = $3, phone = $4, email = $5,
		    latitude = $6, longitude = $7, updated_at = now()
		WHERE id = $8
		RETURNING active, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query, clinic.Name, clinic.PostalCode, clinic.Address, clinic.Phone,
		clinic.Email, clinic.Latitude, clinic.Longitude, clinic.ID).
		Scan(&clinic.Active, &clinic.CreatedAt, &clinic.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Storage) SetClinicActive(ctx context.Context, id string, active bool) error {
	return affectedOne(s.db.ExecContext(ctx, `UPDATE clinics SET active = $1, updated_at = now() WHERE id = $2`, active, id))
}

// ClinicsMissingMonth lists active clinics with no monthly data for yearMonth.
func (s *Storage) ClinicsMissingMonth(ctx context.Context, yearMonth string) ([]models.Clinic, error) {
	clinics := []models.Clinic{}
	query := `
		SELECT ` + clinicColumns + `
		FROM clinics c
		WHERE c.active
		  AND NOT EXISTS (SELECT 1 FROM monthly_data m WHERE m.clinic_id = c.id AND m.year_month = $1)
		ORDER BY c.name
	`
	if err := s.db.SelectContext(ctx, &clinics, query, yearMonth); err != nil {
		return nil, err
	}
	return clinics, nil
}
