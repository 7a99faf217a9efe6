package repository

import (
	"context"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de stock para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// ListLowStock productos activos con Quantity <= ReorderLevel, de todas las empresas,
	// ordenados por empresa y mayor déficit.
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
