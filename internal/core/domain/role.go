package domain

import "strings"

// Role is the single authorization role attached to a user.
type Role string

const (
	RoleUser                Role = "USER"
	RoleCustomer            Role = "CUSTOMER"
	RoleAdmin               Role = "ADMIN"
	RoleWarehouseSupervisor Role = "WAREHOUSE_SUPERVISOR"
	RoleSalesClerk          Role = "SALES_CLERK"
)

var knownRoles = map[Role]struct{}{
	RoleUser:                {},
	RoleCustomer:            {},
	RoleAdmin:               {},
	RoleWarehouseSupervisor: {},
	RoleSalesClerk:          {},
}

// ParseRole converts a role name to a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownRoles[r]; !ok {
		return "", false
	}
	return r, true
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ContainsRole reports whether roles includes target.
func ContainsRole(roles []Role, target Role) bool {
	for _, r := range roles {
		if r == target {
			return true
		}
	}
	return false
}
