// Package access decides who may see which screen or call which endpoint.
//
// Every gate in the service is a declarative allow-list of roles. A missing
// list means the entry is open to every role; a present list grants access
// only to its members. Authentication is always checked first.
package access

import "strings"

type Role string

const (
	SystemAdmin  Role = "system_admin"
	ClinicOwner  Role = "clinic_owner"
	ClinicEditor Role = "clinic_editor"
	ClinicViewer Role = "clinic_viewer"
)

// AllRoles lists every role in privilege order.
var AllRoles = []Role{SystemAdmin, ClinicOwner, ClinicEditor, ClinicViewer}

const (
	LoginRoute      = "/login"
	AdminHomeRoute  = "/admin/dashboard"
	ClinicHomeRoute = "/clinic/dashboard"
)

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// IsClinicRole reports whether the role is bound to a single clinic.
func (r Role) IsClinicRole() bool {
	return r == ClinicOwner || r == ClinicEditor || r == ClinicViewer
}

func (r Role) String() string {
	return string(r)
}

// DefaultRoute is where a role lands after login or after being refused a page.
func DefaultRoute(r Role) string {
	if r == SystemAdmin {
		return AdminHomeRoute
	}
	return ClinicHomeRoute
}

// Allowed reports whether role may pass a gate with the given allow-list.
// A nil or empty list admits every role.
func Allowed(role Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Editors is the allow-list for anything that writes clinic data.
var Editors = []Role{SystemAdmin, ClinicOwner, ClinicEditor}

// Owners is the allow-list for clinic administration.
var Owners = []Role{SystemAdmin, ClinicOwner}

// AdminOnly is the allow-list for system administration.
var AdminOnly = []Role{SystemAdmin}
