package auth

import "strings"

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether role is one of the known account roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role name. Unknown names return "" and false.
func ParseRole(role string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(role)))
	if !candidate.Valid() {
		return "", false
	}
	return candidate, true
}

// HasRole reports whether role is in allowed. An empty allow-list admits any
// known role.
func HasRole(role Role, allowed ...Role) bool {
	if !role.Valid() {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role Role) bool {
	return role == RoleAdmin
}
