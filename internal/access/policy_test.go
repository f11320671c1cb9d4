package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed_NoListAdmitsEveryRole(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, Allowed(role, nil), role)
		assert.True(t, Allowed(role, []Role{}), role)
	}
}

func TestAllowed_ListRequiresMembership(t *testing.T) {
	lists := [][]Role{AdminOnly, Owners, Editors, {ClinicViewer}}
	for _, list := range lists {
		for _, role := range AllRoles {
			member := false
			for _, r := range list {
				if r == role {
					member = true
				}
			}
			assert.Equal(t, member, Allowed(role, list), "role=%s list=%v", role, list)
		}
	}
}

func TestDecide_OpenRoutesRenderForEveryRole(t *testing.T) {
	p := DefaultPolicy()
	for _, route := range p.Routes() {
		if route.Public || len(route.AllowedRoles) > 0 {
			continue
		}
		for _, role := range AllRoles {
			d := p.Decide(Session{Authenticated: true, Role: role}, route.Path)
			assert.Equal(t, ActionRender, d.Action, "role=%s path=%s", role, route.Path)
		}
	}
}

func TestDecide_RestrictedRoutesRedirectToRoleDefault(t *testing.T) {
	p := DefaultPolicy()
	for _, route := range p.Routes() {
		if len(route.AllowedRoles) == 0 {
			continue
		}
		for _, role := range AllRoles {
			d := p.Decide(Session{Authenticated: true, Role: role}, route.Path)
			if Allowed(role, route.AllowedRoles) {
				assert.Equal(t, ActionRender, d.Action, "role=%s path=%s", role, route.Path)
				assert.Equal(t, StateAuthenticatedAuthorized, d.State)
				continue
			}
			assert.Equal(t, ActionRedirectDefault, d.Action, "role=%s path=%s", role, route.Path)
			assert.Equal(t, DefaultRoute(role), d.Location)
			assert.Equal(t, StateAuthenticatedForbidden, d.State)
		}
	}
}

func TestDecide_UnauthenticatedGoesToLogin(t *testing.T) {
	p := DefaultPolicy()
	paths := []string{
		"/clinic/dashboard",
		"/clinic/staff",
		"/clinic/some/unknown/page",
		"/admin",
		"/admin/clinics/42/edit",
		"/admin/users?page=2",
	}
	for _, path := range paths {
		d := p.Decide(Session{}, path)
		assert.Equal(t, ActionRedirectLogin, d.Action, path)
		assert.Equal(t, LoginRoute, d.Location, path)
		assert.Equal(t, StateUnauthenticated, d.State, path)
	}
}

func TestDecide_LoadingWaits(t *testing.T) {
	d := DefaultPolicy().Decide(Session{Loading: true}, "/admin/clinics")
	assert.Equal(t, ActionWait, d.Action)
	assert.Equal(t, StateLoading, d.State)
	assert.Empty(t, d.Location)
}

func TestDecide_LoginIsPublic(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, ActionRender, p.Decide(Session{}, "/login").Action)
	assert.Equal(t, ActionRender, p.Decide(Session{Authenticated: true, Role: ClinicViewer}, "/login").Action)
}

func TestDecide_UnknownRoleIsTreatedAsSignedOut(t *testing.T) {
	d := DefaultPolicy().Decide(Session{Authenticated: true, Role: "intern"}, "/clinic/dashboard")
	assert.Equal(t, ActionRedirectLogin, d.Action)
}

func TestDecide_Examples(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name     string
		role     Role
		path     string
		action   Action
		location string
	}{
		{"viewer on staff", ClinicViewer, "/clinic/staff", ActionRedirectDefault, ClinicHomeRoute},
		{"editor on staff", ClinicEditor, "/clinic/staff", ActionRedirectDefault, ClinicHomeRoute},
		{"owner on staff", ClinicOwner, "/clinic/staff", ActionRender, ""},
		{"owner on admin", ClinicOwner, "/admin/clinics", ActionRedirectDefault, ClinicHomeRoute},
		{"admin on clinic page", SystemAdmin, "/clinic/monthly-data", ActionRender, ""},
		{"viewer on import", ClinicViewer, "/clinic/monthly-data/import", ActionRedirectDefault, ClinicHomeRoute},
		{"viewer on monthly list", ClinicViewer, "/clinic/monthly-data", ActionRender, ""},
		{"admin on unknown top level", SystemAdmin, "/nowhere", ActionRedirectDefault, AdminHomeRoute},
		{"nested admin path", SystemAdmin, "/admin/clinics/1/", ActionRender, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Decide(Session{Authenticated: true, Role: tt.role}, tt.path)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.location, d.Location)
		})
	}
}

func TestMatch_LongestPrefixWins(t *testing.T) {
	p := DefaultPolicy()
	r, ok := p.Match("/clinic/monthly-data/import")
	require.True(t, ok)
	assert.Equal(t, "/clinic/monthly-data/import", r.Path)

	r, ok = p.Match("/clinic/monthly-data/2024-04")
	require.True(t, ok)
	assert.Equal(t, "/clinic/monthly-data", r.Path)

	_, ok = p.Match("/clinical")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Clinic_Owner ")
	assert.True(t, ok)
	assert.Equal(t, ClinicOwner, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestDefaultRoute(t *testing.T) {
	assert.Equal(t, AdminHomeRoute, DefaultRoute(SystemAdmin))
	for _, r := range []Role{ClinicOwner, ClinicEditor, ClinicViewer} {
		assert.Equal(t, ClinicHomeRoute, DefaultRoute(r))
	}
}
