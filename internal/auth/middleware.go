package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/respond"
)

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Authenticator struct {
	tokens  *Tokens
	revoked RevocationChecker
}

func NewAuthenticator(tokens *Tokens, revoked RevocationChecker) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

// Middleware rejects requests without a valid bearer token and stores the
// Principal in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := a.authenticate(r)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// Optional stores the Principal when a valid token is presented and lets
// anonymous requests through untouched.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := a.authenticate(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (Principal, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return Principal{}, false
	}

	claims, err := a.tokens.Parse(token)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return Principal{}, false
	}
	principal, err := claims.Principal()
	if err != nil {
		return Principal{}, false
	}

	if a.revoked != nil {
		revoked, err := a.revoked.IsTokenRevoked(r.Context(), claims.ID)
		if err != nil {
			slog.Warn("token revocation check failed", "error", err, "user_id", claims.Subject)
		} else if revoked {
			return Principal{}, false
		}
	}
	return principal, true
}

// Require admits principals whose role is in roles; no roles admits any
// authenticated caller. Role failures answer 403 with the caller's landing
// route so the SPA can redirect.
func Require(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if !access.Allowed(p.Role, roles) {
				slog.Warn("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", p.UserID,
					"user_role", p.Role,
				)
				respond.ErrorWith(w, http.StatusForbidden, "forbidden", map[string]any{
					"redirect": access.DefaultRoute(p.Role),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// QueryToken copies ?access_token= into the Authorization header when the
// header is absent. Browser WebSockets cannot set headers.
func QueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("access_token"); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	respond.ErrorWith(w, http.StatusUnauthorized, "unauthorized", map[string]any{
		"redirect": access.LoginRoute,
	})
}
