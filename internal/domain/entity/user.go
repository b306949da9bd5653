package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmpleado = "empleado"
)

// User representa una cuenta de acceso a la API.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash
	Role         string // admin, empleado
	CreatedAt    time.Time
}

// IsValidRole reporta si role es uno de los roles soportados.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmpleado
}
