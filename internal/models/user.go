package models

import "time"

type User struct {
	ID           string     `json:"id" db:"id"`
	ClinicID     *string    `json:"clinic_id,omitempty" db:"clinic_id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

type CreateUserInput struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	ClinicID *string `json:"clinic_id"`
}

type UpdateUserInput struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	ClinicID *string `json:"clinic_id"`
	Active   *bool   `json:"active"`
	Password string  `json:"password,omitempty"`
}
