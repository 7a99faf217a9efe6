package repository

import (
	"context"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
// Los listados devuelven CompanyName resuelto por join.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// ListByRoles usuarios activos de la empresa con alguno de los roles.
	ListByRoles(ctx context.Context, companyID string, roles []string) ([]*entity.User, error)
	// ListAllByRoles usuarios activos de todas las empresas con alguno de los roles.
	ListAllByRoles(ctx context.Context, roles []string) ([]*entity.User, error)
}
