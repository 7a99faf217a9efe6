package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSales   = "sales"
	RoleStaff   = "staff"
)

// ManagerRoles roles que reciben resúmenes y alertas de empresa.
var ManagerRoles = []string{RoleAdmin, RoleManager}

// User representa un usuario del sistema (pertenece a una Company).
// CompanyName se llena por join al listar usuarios.
type User struct {
	ID          string
	CompanyID   string
	CompanyName string
	Email       string
	Name        string
	Role        string
	Status      string // active, inactive, suspended
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
