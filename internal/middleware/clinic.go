package middleware

import (
	"net/http"
	"strings"

	"dentalboard-backend/internal/auth"
	"dentalboard-backend/internal/respond"
)

// ClinicHeader lets a system admin target a clinic for a single request.
const ClinicHeader = "X-Clinic-ID"

// RequireClinic makes sure the request operates on a concrete clinic. Clinic
// roles always use their own clinic; a system admin uses ClinicHeader when
// present and otherwise the clinic selected in the token.
func RequireClinic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if p.IsAdmin() {
			if id := strings.TrimSpace(r.Header.Get(ClinicHeader)); id != "" {
				p.ActingClinicID = id
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
		}

		if p.Clinic() == "" {
			respond.Error(w, http.StatusBadRequest, "clinic not selected")
			return
		}
		next.ServeHTTP(w, r)
	})
}
