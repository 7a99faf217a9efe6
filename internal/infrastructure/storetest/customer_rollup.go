// Package storetest contiene los contratos compartidos que deben cumplir
// todas las implementaciones del Record Store (memoria y PostgreSQL).
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

// Stores repositorios bajo prueba. CompanyID debe existir en el backend.
type Stores struct {
	CompanyID string
	Customers repository.CustomerRepository
	Orders    repository.SalesOrderRepository
}

// RunContract ejecuta todos los contratos contra el backend que devuelve newStores.
// newStores se llama una vez por subtest para no compartir estado.
func RunContract(t *testing.T, newStores func(t *testing.T) Stores) {
	t.Run("rollup de cliente", func(t *testing.T) { CustomerRollup(t, newStores(t)) })
	t.Run("rollup redondea montos", func(t *testing.T) { CustomerRollupRounding(t, newStores(t)) })
	t.Run("marca de rollup de pedido", func(t *testing.T) { OrderRollupMark(t, newStores(t)) })
}

var rollupAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newCustomer(t *testing.T, s Stores) *entity.Customer {
	t.Helper()
	c := &entity.Customer{
		CompanyID: s.CompanyID,
		Name:      "Cliente contrato",
		Status:    entity.CustomerStatusActive,
		CreatedAt: rollupAt,
		UpdatedAt: rollupAt,
	}
	require.NoError(t, s.Customers.Create(context.Background(), c))
	return c
}

// CustomerRollup suma pedidos y deja el promedio y las fechas del último pedido.
func CustomerRollup(t *testing.T, s Stores) {
	ctx := context.Background()
	c := newCustomer(t, s)

	orderDate := rollupAt.Add(-time.Hour)
	require.NoError(t, s.Customers.ApplyOrderRollup(ctx, c.ID, decimal.NewFromInt(100), orderDate, rollupAt))
	require.NoError(t, s.Customers.ApplyOrderRollup(ctx, c.ID, decimal.NewFromInt(50), orderDate, rollupAt))

	got, err := s.Customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, "150.00", got.TotalValue.StringFixed(2))
	assert.Equal(t, "75.00", got.AverageOrderValue.StringFixed(2))
	require.NotNil(t, got.LastOrderDate)
	assert.True(t, got.LastOrderDate.Equal(orderDate))
	require.NotNil(t, got.LastActivityDate)
	assert.True(t, got.LastActivityDate.Equal(rollupAt))

	err = s.Customers.ApplyOrderRollup(ctx, "00000000-0000-0000-0000-0000000000ff", decimal.NewFromInt(1), orderDate, rollupAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// CustomerRollupRounding total y promedio quedan con 2 decimales, redondeando
// la mitad hacia arriba, en ambos backends.
func CustomerRollupRounding(t *testing.T, s Stores) {
	ctx := context.Background()
	c := newCustomer(t, s)

	cases := []struct {
		total   string
		wantSum string
		wantAvg string
	}{
		{"10.00", "10.00", "10.00"},
		{"10.01", "20.01", "10.01"}, // 10.005
		{"10.01", "30.02", "10.01"}, // 10.00666…
		{"0.005", "30.03", "7.51"},  // 7.5075
		{"9.994", "40.02", "8.00"},  // 8.004
	}
	for _, tc := range cases {
		require.NoError(t, s.Customers.ApplyOrderRollup(ctx, c.ID, decimal.RequireFromString(tc.total), rollupAt, rollupAt))
		got, err := s.Customers.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.wantSum, got.TotalValue.StringFixed(2), "total tras sumar %s", tc.total)
		assert.Equal(t, tc.wantAvg, got.AverageOrderValue.StringFixed(2), "promedio tras sumar %s", tc.total)
	}
}

// OrderRollupMark un pedido entregado se acumula una sola vez.
func OrderRollupMark(t *testing.T, s Stores) {
	ctx := context.Background()
	c := newCustomer(t, s)
	delivered := rollupAt.Add(-time.Hour)
	o := &entity.SalesOrder{
		CompanyID:   s.CompanyID,
		OrderNumber: "SO-2026-9001",
		CustomerID:  c.ID,
		Status:      entity.OrderStatusDelivered,
		Total:       decimal.NewFromInt(120),
		DeliveredAt: &delivered,
		CreatedAt:   rollupAt,
		UpdatedAt:   rollupAt,
	}
	require.NoError(t, s.Orders.Create(ctx, o))

	dup := *o
	dup.ID = ""
	assert.ErrorIs(t, s.Orders.Create(ctx, &dup), domain.ErrDuplicate)

	pending, err := s.Orders.ListPendingRollup(ctx)
	require.NoError(t, err)
	assert.Contains(t, orderIDs(pending), o.ID)

	first, err := s.Orders.MarkStatsRolledUp(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, first)
	second, err := s.Orders.MarkStatsRolledUp(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, second, "el segundo marcado no debe cambiar nada")

	pending, err = s.Orders.ListPendingRollup(ctx)
	require.NoError(t, err)
	assert.NotContains(t, orderIDs(pending), o.ID)
}

func orderIDs(list []*entity.SalesOrder) []string {
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	return ids
}
