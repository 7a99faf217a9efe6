package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	// ListLicenseExpiringBetween empresas con from <= LicenseExpiry <= to.
	ListLicenseExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.Company, error)
}
