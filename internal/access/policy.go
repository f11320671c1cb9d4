package access

import (
	"sort"
	"strings"
)

// Route is one entry of the screen policy table.
type Route struct {
	Path string
	// AllowedRoles nil means every authenticated role.
	AllowedRoles []Role
	// Public routes render without a session.
	Public bool
}

// State is where a visitor stands relative to a route.
type State string

const (
	StateLoading                 State = "loading"
	StateUnauthenticated         State = "unauthenticated"
	StateAuthenticatedAuthorized State = "authenticated_authorized"
	StateAuthenticatedForbidden  State = "authenticated_unauthorized"
)

type Action string

const (
	ActionWait            Action = "wait"
	ActionRender          Action = "render"
	ActionRedirectLogin   Action = "redirect_login"
	ActionRedirectDefault Action = "redirect_default"
)

// Decision is the outcome of evaluating a session against a route.
type Decision struct {
	State    State  `json:"state"`
	Action   Action `json:"action"`
	Location string `json:"location,omitempty"`
}

// Session is the minimal view of the caller needed for a decision.
type Session struct {
	Loading       bool
	Authenticated bool
	Role          Role
}

// Policy matches paths against a route table by longest prefix.
type Policy struct {
	routes []Route
}

// NewPolicy copies routes and orders them so the most specific path wins.
func NewPolicy(routes []Route) *Policy {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	for i := range sorted {
		sorted[i].Path = normalizePath(sorted[i].Path)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Path) > len(sorted[j].Path)
	})
	return &Policy{routes: sorted}
}

// Routes returns the table in match order.
func (p *Policy) Routes() []Route {
	out := make([]Route, len(p.routes))
	copy(out, p.routes)
	return out
}

// Match finds the most specific route covering path.
func (p *Policy) Match(path string) (Route, bool) {
	path = normalizePath(path)
	for _, r := range p.routes {
		if r.Path == "/" || path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return Route{}, false
}

// Decide maps a session and a path to render or redirect.
//
// Authentication is settled before roles: an anonymous visitor is sent to the
// login page no matter which roles the route lists. A signed-in visitor on a
// path outside the table is sent to their landing route.
func (p *Policy) Decide(s Session, path string) Decision {
	if s.Loading {
		return Decision{State: StateLoading, Action: ActionWait}
	}

	route, ok := p.Match(path)
	if ok && route.Public {
		if s.Authenticated {
			return Decision{State: StateAuthenticatedAuthorized, Action: ActionRender}
		}
		return Decision{State: StateUnauthenticated, Action: ActionRender}
	}

	if !s.Authenticated {
		return Decision{State: StateUnauthenticated, Action: ActionRedirectLogin, Location: LoginRoute}
	}
	if _, known := ParseRole(string(s.Role)); !known {
		return Decision{State: StateUnauthenticated, Action: ActionRedirectLogin, Location: LoginRoute}
	}

	if !ok {
		return Decision{State: StateAuthenticatedForbidden, Action: ActionRedirectDefault, Location: DefaultRoute(s.Role)}
	}
	if !Allowed(s.Role, route.AllowedRoles) {
		return Decision{State: StateAuthenticatedForbidden, Action: ActionRedirectDefault, Location: DefaultRoute(s.Role)}
	}
	return Decision{State: StateAuthenticatedAuthorized, Action: ActionRender}
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// AppRoutes is the screen table of the web client.
var AppRoutes = []Route{
	{Path: LoginRoute, Public: true},

	{Path: "/admin", AllowedRoles: AdminOnly},
	{Path: AdminHomeRoute, AllowedRoles: AdminOnly},
	{Path: "/admin/clinics", AllowedRoles: AdminOnly},
	{Path: "/admin/users", AllowedRoles: AdminOnly},
	{Path: "/admin/price-table", AllowedRoles: AdminOnly},
	{Path: "/admin/print-orders", AllowedRoles: AdminOnly},
	{Path: "/admin/competitors", AllowedRoles: AdminOnly},

	{Path: "/clinic"},
	{Path: ClinicHomeRoute},
	{Path: "/clinic/monthly-data"},
	{Path: "/clinic/monthly-data/import", AllowedRoles: Editors},
	{Path: "/clinic/market-analysis"},
	{Path: "/clinic/simulation", AllowedRoles: Editors},
	{Path: "/clinic/reports"},
	{Path: "/clinic/print-orders", AllowedRoles: Editors},
	{Path: "/clinic/staff", AllowedRoles: Owners},
	{Path: "/clinic/settings", AllowedRoles: Owners},
}

// DefaultPolicy is the policy built from AppRoutes.
func DefaultPolicy() *Policy {
	return NewPolicy(AppRoutes)
}
