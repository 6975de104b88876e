// Package permission defines the module × action × access-level schema
// stored on every role and evaluated by the authorization middleware.
package permission

// AccessLevel is the scope attached to CRUD-style permission keys.
// The order is strict: All ⊇ Department ⊇ Self ⊇ None.
type AccessLevel string

const (
	AccessNone       AccessLevel = "none"
	AccessSelf       AccessLevel = "self"
	AccessDepartment AccessLevel = "department"
	AccessAll        AccessLevel = "all"
)

var accessRank = map[AccessLevel]int{
	AccessNone:       0,
	AccessSelf:       1,
	AccessDepartment: 2,
	AccessAll:        3,
}

// AtLeast reports whether the level grants at least the given scope.
// Note the route gate currently only tests against AccessNone; the
// ordering exists for callers that need the full comparison.
func (a AccessLevel) AtLeast(min AccessLevel) bool {
	return accessRank[a] >= accessRank[min]
}

// Valid reports whether the value is one of the four defined levels.
func (a AccessLevel) Valid() bool {
	_, ok := accessRank[a]
	return ok
}

// Module maps a permission key to either a bool (feature flag) or an
// AccessLevel (scope of a CRUD-ish action).
type Module map[string]interface{}

// Set is the Permission Object: module name → permission keys. It is the
// unit of authorization persisted on every role. The exact key names are
// a wire contract with the frontend and the legacy converters.
type Set map[string]Module

// Access returns the access level stored under module/key. A missing
// module or key means no access. Values decoded from BSON/JSON arrive as
// plain strings, so both representations are handled.
func (s Set) Access(module, key string) AccessLevel {
	m, ok := s[module]
	if !ok {
		return AccessNone
	}
	switch v := m[key].(type) {
	case AccessLevel:
		if v.Valid() {
			return v
		}
	case string:
		if lvl := AccessLevel(v); lvl.Valid() {
			return lvl
		}
	}
	return AccessNone
}

// Flag returns the boolean stored under module/key; missing means false.
func (s Set) Flag(module, key string) bool {
	m, ok := s[module]
	if !ok {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

// Clone deep-copies the set so templates can be mutated safely.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for name, mod := range s {
		cp := make(Module, len(mod))
		for k, v := range mod {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

// moduleSchema fixes which keys a module carries and of which kind.
type moduleSchema struct {
	access []string // AccessLevel-valued keys
	flags  []string // bool-valued keys
}

// schema is the canonical shape of every Permission Object. Every module
// listed here must exist in every role's permission set; absence is
// treated as no access by the accessors above.
var schema = map[string]moduleSchema{
	"sales": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"processRefunds", "voidTransactions", "applyDiscounts", "processPayments"},
	},
	"inventory": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"adjustStock", "transferStock"},
	},
	"staff": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"manageRoles", "manageSchedules"},
	},
	"reports": {
		access: []string{"view", "salesReports", "inventoryReports", "staffReports", "financialReports"},
	},
	"settings": {
		access: []string{"view", "edit", "delete"},
		flags:  []string{"manageTaxes", "manageIntegrations"},
	},
	"financial": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"viewProfitMargins"},
	},
	"customers": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"manageLoyalty"},
	},
	"suppliers": {
		access: []string{"view", "create", "edit", "delete"},
		flags:  []string{"managePurchaseOrders"},
	},
}

// Modules returns the canonical module names.
func Modules() []string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	return names
}

// Default returns a fully populated all-none/all-false Permission Object.
// This is the canonical shape every role's permission set must match.
func Default() Set {
	out := make(Set, len(schema))
	for name, ms := range schema {
		mod := make(Module, len(ms.access)+len(ms.flags))
		for _, k := range ms.access {
			mod[k] = AccessNone
		}
		for _, k := range ms.flags {
			mod[k] = false
		}
		out[name] = mod
	}
	return out
}

// isAccessKey reports whether module/key is AccessLevel-valued per schema.
func isAccessKey(module, key string) bool {
	ms, ok := schema[module]
	if !ok {
		return false
	}
	for _, k := range ms.access {
		if k == key {
			return true
		}
	}
	return false
}

// isFlagKey reports whether module/key is bool-valued per schema.
func isFlagKey(module, key string) bool {
	ms, ok := schema[module]
	if !ok {
		return false
	}
	for _, k := range ms.flags {
		if k == key {
			return true
		}
	}
	return false
}
