package handlers

import (
	"net/http"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/auth"
	"dentalboard-backend/internal/respond"
)

// Menu returns the navigation entries visible to the caller's role
// @Summary Navigation menu
// @Description Menu items filtered by the caller's role, in display order
// @Tags navigation
// @Produce json
// @Success 200 {object} map[string][]access.MenuItem
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /menu [get]
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	respond.Items(w, access.FilterMenu(access.Menu, p.Role))
}

// ResolveNavigation decides whether the caller may open a screen
// @Summary Resolve a screen path
// @Description Returns render, wait or a redirect for the given client path. Works without a token.
// @Tags navigation
// @Produce json
// @Param path query string true "Client path, e.g. /clinic/staff"
// @Success 200 {object} access.Decision
// @Router /navigation/resolve [get]
func (h *Handler) ResolveNavigation(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respond.Error(w, http.StatusBadRequest, "path required")
		return
	}

	session := access.Session{}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		session.Authenticated = true
		session.Role = p.Role
	}
	respond.OK(w, h.policy.Decide(session, path))
}
