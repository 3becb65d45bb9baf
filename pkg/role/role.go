package role

import "strings"

// Role represents one privilege level from a closed set.
type Role string

const (
	// RoleStudent is the lowest-privilege role and the resolution default.
	RoleStudent Role = "student"

	// RoleLecturer is the instructor-equivalent mid-privilege role.
	RoleLecturer Role = "lecturer"

	// RoleAdmin is the highest-privilege role.
	RoleAdmin Role = "admin"
)

// Default is the role assigned when no source yields a valid role.
// An unresolved role never silently escalates.
const Default = RoleStudent

// All returns every valid role, lowest privilege first.
func All() []Role {
	return []Role{RoleStudent, RoleLecturer, RoleAdmin}
}

// Parse converts a raw string into a Role. Matching is case-insensitive so
// values like "Admin" from token claims map onto the canonical constants.
// The second return value reports whether the input named a valid role.
func Parse(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleLecturer:
		return RoleLecturer, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// IsValid reports whether r is one of the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
