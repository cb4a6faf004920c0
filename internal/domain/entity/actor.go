package entity

// Roles de usuario que entrega el proveedor de identidad.
const (
	UserRoleAdmin      = "admin"
	UserRoleSupervisor = "supervisor"
	UserRoleDiver      = "buzo"
	UserRoleOperator   = "operador"
)

// Actor es el contexto de identidad de la llamada (solo lectura).
type Actor struct {
	ID          string
	Role        string
	CompanyID   string
	CompanyType string
}

// CanOverride indica si el actor puede anular firmas.
func (a Actor) CanOverride() bool {
	return a.Role == UserRoleAdmin
}
