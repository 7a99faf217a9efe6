package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// SalesOrderRepository define el puerto de persistencia para SalesOrder.
type SalesOrderRepository interface {
	// Create persiste el pedido. Devuelve domain.ErrDuplicate si el número de pedido
	// o la cotización de origen ya están usados.
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	ExistsForQuote(ctx context.Context, quoteID string) (bool, error)
	CountByCompany(ctx context.Context, companyID string) (int, error)

	// ListDispatchedBefore pedidos Dispatched con DispatchedAt < before.
	ListDispatchedBefore(ctx context.Context, before time.Time) ([]*entity.SalesOrder, error)
	// MarkDelivered pasa el pedido a Delivered solo si seguía Dispatched.
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)

	// ListDeliveredSince pedidos Delivered con DeliveredAt >= since.
	ListDeliveredSince(ctx context.Context, since time.Time) ([]*entity.SalesOrder, error)
	// ListPendingRollup pedidos Delivered con cliente y StatsRolledUp = false.
	ListPendingRollup(ctx context.Context) ([]*entity.SalesOrder, error)
	// MarkStatsRolledUp marca el pedido como acumulado solo si no lo estaba.
	MarkStatsRolledUp(ctx context.Context, id string) (bool, error)
}
