package access

import "fmt"

// Role is the closed set of dashboard roles. Everything role-related goes
// through this type instead of comparing raw strings at call sites.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a wire role string onto the closed enum. Unknown strings
// resolve to RoleUser so a malformed account can never gain privileges, and
// the error tells callers the input was bad.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsAdminLike reports whether the role sees every sensor and the moderation
// surfaces of the dashboard.
func (r Role) IsAdminLike() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Actor is the minimal identity the access checks need.
type Actor struct {
	Username string
	Role     Role
}

// CanAccessSensor decides whether the actor may open a sensor's detail and
// data views. Admins and moderators always may; everyone else must appear on
// the sensor's allow-list. A nil or empty allow-list denies. Pure and total.
func CanAccessSensor(actor Actor, accessUsers []string) bool {
	if actor.Role.IsAdminLike() {
		return true
	}
	for _, username := range accessUsers {
		if username == actor.Username {
			return true
		}
	}
	return false
}
