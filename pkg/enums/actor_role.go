package enums

import "fmt"

// ActorRole identifies what kind of authenticated principal is acting.
type ActorRole string

const (
	ActorRoleAdmin      ActorRole = "admin"
	ActorRoleRepartidor ActorRole = "repartidor"
	ActorRoleContador   ActorRole = "contador"
	ActorRoleBodeguero  ActorRole = "bodeguero"
	ActorRoleCliente    ActorRole = "cliente"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleRepartidor,
	ActorRoleContador,
	ActorRoleBodeguero,
	ActorRoleCliente,
}

func (r ActorRole) String() string {
	return string(r)
}

// IsStaff reports whether the role belongs to an employee rather than a customer.
func (r ActorRole) IsStaff() bool {
	return r != ActorRoleCliente && r.IsValid()
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
