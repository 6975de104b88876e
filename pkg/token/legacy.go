package token

import (
	"slices"
	"strings"
)

// legacyRolePermissions is the coarse role-name → permission-string table
// some backward-compatibility paths still consult. New code goes through
// the permission model instead.
var legacyRolePermissions = map[string][]string{
	"administrator": {
		"sales:manage", "inventory:manage", "staff:manage",
		"reports:view", "settings:manage", "financial:manage",
		"customers:manage", "suppliers:manage",
	},
	"manager": {
		"sales:manage", "inventory:manage", "staff:view",
		"reports:view", "customers:manage", "suppliers:view",
	},
	"cashier": {
		"sales:create", "sales:view", "customers:view",
	},
	"inventory manager": {
		"inventory:manage", "suppliers:manage", "reports:view",
	},
	"staff manager": {
		"staff:manage", "reports:view",
	},
}

// LegacyPermissions returns the static permission list for a role name,
// or nil for unknown roles.
func LegacyPermissions(role string) []string {
	return legacyRolePermissions[strings.ToLower(role)]
}

// HasLegacyPermission reports whether the static table grants the
// permission string to the role.
func HasLegacyPermission(role, permission string) bool {
	return slices.Contains(LegacyPermissions(role), permission)
}
