package models

import "time"

type Clinic struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	Address    string    `db:"address" json:"address"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	Latitude   *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64  `db:"longitude" json:"longitude,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type ClinicInput struct {
	Name       string   `json:"name"`
	PostalCode string   `json:"postal_code"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Email      string   `json:"email"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// HasLocation reports whether both coordinates are set.
func (c *Clinic) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

type Staff struct {
	ID             string     `db:"id" json:"id"`
	ClinicID       string     `db:"clinic_id" json:"clinic_id"`
	Name           string     `db:"name" json:"name"`
	Position       string     `db:"position" json:"position"`
	EmploymentType string     `db:"employment_type" json:"employment_type"`
	MonthlyCost    int64      `db:"monthly_cost" json:"monthly_cost"`
	HiredOn        *time.Time `db:"hired_on" json:"hired_on,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type StaffInput struct {
	Name           string     `json:"name"`
	Position       string     `json:"position"`
	EmploymentType string     `json:"employment_type"`
	MonthlyCost    int64      `json:"monthly_cost"`
	HiredOn        *time.Time `json:"hired_on"`
	Notes          string     `json:"notes"`
	Active         *bool      `json:"active"`
}

var StaffPositions = map[string]bool{
	"dentist":      true,
	"hygienist":    true,
	"assistant":    true,
	"receptionist": true,
	"technician":   true,
	"other":        true,
}

var EmploymentTypes = map[string]bool{
	"full_time": true,
	"part_time": true,
}
