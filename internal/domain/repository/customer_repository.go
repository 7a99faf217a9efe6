package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)

	// ListActiveWithoutOrderSince clientes Active con LastOrderDate < before o sin pedidos.
	ListActiveWithoutOrderSince(ctx context.Context, before time.Time) ([]*entity.Customer, error)
	// ListActiveWithoutContactSince clientes Active con LastContactDate < before.
	ListActiveWithoutContactSince(ctx context.Context, before time.Time) ([]*entity.Customer, error)
	// CountActiveWithoutContactSince versión agregada por empresa para los resúmenes.
	CountActiveWithoutContactSince(ctx context.Context, companyID string, before time.Time) (int, error)

	// ApplyOrderRollup suma un pedido entregado a las métricas del cliente en una sola
	// sentencia y recalcula el promedio.
	ApplyOrderRollup(ctx context.Context, customerID string, orderTotal decimal.Decimal, orderDate, now time.Time) error
}
