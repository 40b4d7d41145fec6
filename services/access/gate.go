package access

import (
	"strings"
	"time"

	"barangayportal/models"
)

// Decision is the outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	DenyAdminArea
	DenyMaintenance
)

// AdminRoutePrefix marks back-office routes.
const AdminRoutePrefix = "/api/admin"

// BypassRoute is the designated route that sets the maintenance bypass flag
// for the visitor.
const BypassRoute = "/api/maintenance/bypass"

// Banner uploads live outside the /api/admin prefix but belong to the
// back office all the same.
var adminRoutePrefixes = []string{AdminRoutePrefix, "/api/banners"}

// IsAdminRoute reports whether a request path belongs to the admin area.
func IsAdminRoute(path string) bool {
	for _, prefix := range adminRoutePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CheckRoute applies the role-area gate: a resident-class viewer on an admin
// route is denied. The caller is responsible for the forced-logout side
// effect; the check itself is pure.
func CheckRoute(role, path string) Decision {
	if IsAdminRoute(path) && !models.IsAdminRole(role) {
		return DenyAdminArea
	}
	return Allow
}

// MaintenanceState is the input to the maintenance gate.
type MaintenanceState struct {
	Active  bool
	Message string
	EndsAt  time.Time
}

// CheckMaintenance applies the maintenance gate. When the maintenance flag is
// active every viewer is blocked unless the role is admin-class, the visitor
// holds a bypass flag, or the flag is off in the first place.
func CheckMaintenance(state MaintenanceState, role string, bypass bool) Decision {
	if !state.Active {
		return Allow
	}
	if models.IsAdminRole(role) {
		return Allow
	}
	if bypass {
		return Allow
	}
	return DenyMaintenance
}

// MatchBypassKeyword reports whether the supplied keyword earns the visitor a
// maintenance bypass. An empty configured keyword disables keyword bypass.
func MatchBypassKeyword(configured, supplied string) bool {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return false
	}
	return configured == strings.TrimSpace(supplied)
}
