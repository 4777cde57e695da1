package rbac

import "fmt"

// Role is the closed set of user classifications.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// ParseRole returns the Role named by s. Anything other than the two known
// roles is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleClient:
		return RoleClient, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// Allows reports whether a user holding r may perform an operation that
// requires the given role. Admins may do everything a client may.
func (r Role) Allows(required Role) bool {
	switch required {
	case RoleClient:
		return r.Valid()
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

// CheckRole returns a *RoleDeniedError when have does not satisfy want.
func CheckRole(have, want Role) error {
	if !have.Allows(want) {
		return &RoleDeniedError{Have: have, Want: want}
	}
	return nil
}

// RoleDeniedError means the resolved user lacks the required role.
type RoleDeniedError struct {
	Have Role
	Want Role
}

func (e *RoleDeniedError) Error() string {
	return fmt.Sprintf("role %q does not grant %q access", e.Have, e.Want)
}
