package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dentalboard-backend/internal/models"
)

const userColumns = `id, clinic_id, email, name, role, password_hash, active, created_at, last_login_at`

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user, or only one clinic's users when clinicID is set.
func (s *Storage) ListUsers(ctx context.Context, clinicID string) ([]models.User, error) {
	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1::uuid IS NULL OR clinic_id = $1::uuid) ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &users, query, nullIfEmpty(clinicID)); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	query := `
		INSERT INTO users (id, clinic_id, email, name, role, password_hash, active)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
		RETURNING email, created_at
	`
	err := s.db.QueryRowxContext(ctx, query, user.ID, user.ClinicID, user.Email, user.Name, user.Role, user.PasswordHash, user.Active).
		Scan(&user.Email, &user.CreatedAt)
	switch {
	case isUniqueViolation(err):
		return ErrEmailTaken
	case isForeignKeyViolation(err):
		return ErrInvalidClinicID
	}
	return err
}

// UpdateUser saves name, role, clinic, active flag and password hash.
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, role = $2, clinic_id = $3, active = $4, password_hash = $5
		WHERE id = $6
	`
	err := affectedOne(s.db.ExecContext(ctx, query, user.Name, user.Role, user.ClinicID, user.Active, user.PasswordHash, user.ID))
	if isForeignKeyViolation(err) {
		return ErrInvalidClinicID
	}
	return err
}

func (s *Storage) SetUserActive(ctx context.Context, id string, active bool) error {
	return affectedOne(s.db.ExecContext(ctx, `UPDATE users SET active = $1 WHERE id = $2`, active, id))
}

func (s *Storage) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	return err
}
