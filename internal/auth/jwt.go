package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dentalboard-backend/internal/access"
)

var (
	errMissingSecret = errors.New("JWT_SECRET is not set")
	errUnknownRole   = errors.New("token carries an unknown role")
)

type Claims struct {
	Role           string `json:"role"`
	ClinicID       string `json:"clinic_id,omitempty"`
	ActingClinicID string `json:"acting_clinic_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the request identity.
func (c *Claims) Principal() (Principal, error) {
	role, ok := access.ParseRole(c.Role)
	if !ok {
		return Principal{}, errUnknownRole
	}
	p := Principal{
		UserID:         c.Subject,
		Role:           role,
		ClinicID:       c.ClinicID,
		ActingClinicID: c.ActingClinicID,
		TokenID:        c.ID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errMissingSecret
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a fresh token for p. A new token id is always generated.
func (t *Tokens) Issue(p Principal) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		Role:           p.Role.String(),
		ClinicID:       p.ClinicID,
		ActingClinicID: p.ActingClinicID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
