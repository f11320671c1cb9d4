package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/storage"
)

// UserStore is the storage the auth endpoints need.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
}

// Revoker denylists token ids on logout.
type Revoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

type Handler struct {
	users   UserStore
	tokens  *Tokens
	revoker Revoker
}

func NewHandler(users UserStore, tokens *Tokens, revoker Revoker) *Handler {
	return &Handler{users: users, tokens: tokens, revoker: revoker}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user"`
	ActingClinic string       `json:"acting_clinic_id,omitempty"`
	DefaultRoute string       `json:"default_route"`
}

// Login authenticates a user and returns a JWT token
// @Summary User login
// @Description Authenticates user with email and password, returns JWT token and landing route
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} sessionResponse
// @Failure 400 {object} map[string]interface{} "Invalid request body or missing credentials"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Failure 429 {object} map[string]interface{} "Too many attempts"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("login lookup failed", "error", err)
		}
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil || !user.Active {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	role, ok := access.ParseRole(user.Role)
	if !ok {
		slog.Error("user has unknown role", "user_id", user.ID, "role", user.Role)
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	p := Principal{UserID: user.ID, Role: role}
	if user.ClinicID != nil {
		p.ClinicID = *user.ClinicID
	}
	token, claims, err := h.tokens.Issue(p)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	respond.OK(w, sessionResponse{
		Token:        token,
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         user,
		DefaultRoute: access.DefaultRoute(role),
	})
}

// Logout revokes the presented token
// @Summary User logout
// @Description Revokes the bearer token until it expires
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool "Success response"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.revoker.RevokeToken(r.Context(), p.TokenID, time.Until(p.ExpiresAt)); err != nil {
		slog.Error("token revocation failed", "user_id", p.UserID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	respond.OK(w, map[string]any{"ok": true})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Returns the current user with role, clinic scope and landing route
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "User data"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), p.UserID)
	if err != nil || !user.Active {
		unauthorized(w)
		return
	}

	respond.OK(w, map[string]any{
		"user":             user,
		"role":             p.Role,
		"clinic_id":        p.Clinic(),
		"acting_clinic_id": p.ActingClinicID,
		"default_route":    access.DefaultRoute(p.Role),
	})
}

type selectClinicRequest struct {
	ClinicID string `json:"clinic_id"`
}

// SelectClinic switches the clinic a system admin is acting on
// @Summary Select acting clinic
// @Description Re-issues the admin token with a new acting clinic; an empty id clears it
// @Tags auth
// @Accept json
// @Produce json
// @Param body body selectClinicRequest true "Clinic"
// @Success 200 {object} sessionResponse
// @Failure 403 {object} map[string]interface{} "Not a system admin"
// @Failure 404 {object} map[string]interface{} "Clinic not found"
// @Security BearerAuth
// @Router /auth/select-clinic [post]
func (h *Handler) SelectClinic(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	if !p.IsAdmin() {
		respond.ErrorWith(w, http.StatusForbidden, "forbidden", map[string]any{"redirect": access.DefaultRoute(p.Role)})
		return
	}

	var req selectClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClinicID != "" {
		clinic, err := h.users.GetClinic(r.Context(), req.ClinicID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && !clinic.Active) {
			respond.Error(w, http.StatusNotFound, "clinic not found")
			return
		}
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to load clinic")
			return
		}
	}

	next := p
	next.ActingClinicID = req.ClinicID
	token, claims, err := h.tokens.Issue(next)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	if err := h.revoker.RevokeToken(r.Context(), p.TokenID, time.Until(p.ExpiresAt)); err != nil {
		slog.Warn("failed to revoke replaced token", "user_id", p.UserID, "error", err)
	}

	respond.OK(w, sessionResponse{
		Token:        token,
		ExpiresAt:    claims.ExpiresAt.Time,
		ActingClinic: req.ClinicID,
		DefaultRoute: access.DefaultRoute(p.Role),
	})
}
