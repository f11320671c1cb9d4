package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"dentalboard-backend/internal/respond"
)

// allowOrigin admits requests without an Origin header and browsers from
// the listed origins. "*" admits any origin.
func allowOrigin(origins []string) func(*http.Request) bool {
	wildcard := slices.Contains(origins, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || wildcard || slices.Contains(origins, origin)
	}
}

// LiveEvents godoc
// @Summary Live clinic events
// @Description Upgrades to a WebSocket that streams print order and data events of the caller's clinic. Browsers pass the token as access_token. A system admin receives the clinic in clinic_id, the selected clinic, or every clinic.
// @Tags events
// @Param access_token query string false "Bearer token"
// @Param clinic_id query string false "Clinic (system admin only)"
// @Success 101 {string} string "Switching protocols"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 403 {object} map[string]interface{} "No clinic assigned"
// @Failure 503 {object} map[string]interface{} "Live events disabled"
// @Router /events/live [get]
func (h *Handler) LiveEvents(w http.ResponseWriter, r *http.Request) {
	if h.live == nil {
		respond.Error(w, http.StatusServiceUnavailable, "live events are disabled")
		return
	}

	p := principal(r)
	clinicID := p.Clinic()
	if p.IsAdmin() {
		if id := strings.TrimSpace(r.URL.Query().Get("clinic_id")); id != "" {
			clinicID = id
		}
	} else if clinicID == "" {
		// An empty clinic means every clinic in the hub.
		respond.Error(w, http.StatusForbidden, "no clinic assigned")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.Debug("live upgrade failed", "error", err)
		return
	}
	h.live.Serve(conn, clinicID)
}
