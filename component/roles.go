package component

import "fmt"

// Role identifies a scene collaborator the simulation binds to.
type Role uint8

const (
	RoleCharacter Role = iota
	RoleBall
	RoleBasket
	RoleStadium
)

// Roles lists every role in binding order.
var Roles = []Role{RoleCharacter, RoleBall, RoleBasket, RoleStadium}

func (r Role) String() string {
	switch r {
	case RoleCharacter:
		return "character"
	case RoleBall:
		return "ball"
	case RoleBasket:
		return "basket"
	case RoleStadium:
		return "stadium"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Required reports whether a level cannot start without this role.
func (r Role) Required() bool {
	return r != RoleStadium
}
