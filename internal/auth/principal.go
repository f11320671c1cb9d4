package auth

import (
	"context"
	"time"

	"dentalboard-backend/internal/access"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Role     access.Role
	ClinicID string
	// ActingClinicID is the clinic a system admin is currently working on.
	ActingClinicID string
	TokenID        string
	ExpiresAt      time.Time
}

func (p Principal) IsAdmin() bool {
	return p.Role == access.SystemAdmin
}

// Clinic is the clinic whose data the caller operates on, or "" when a
// system admin has not selected one.
func (p Principal) Clinic() string {
	if p.IsAdmin() {
		return p.ActingClinicID
	}
	return p.ClinicID
}

type contextKey string

const principalKey contextKey = "dentalboard_principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
