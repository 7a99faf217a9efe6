package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cliente.
const (
	CustomerStatusActive    = "Active"
	CustomerStatusInactive  = "Inactive"
	CustomerStatusSuspended = "Suspended"
	CustomerStatusProspect  = "Prospect"
)

// Customer representa un cliente de la empresa con sus métricas de compra.
// Invariante: AverageOrderValue == round(TotalValue / TotalOrders, 2) cuando TotalOrders > 0.
// Los montos se guardan con 2 decimales, igual que NUMERIC(18,2) en PostgreSQL.
type Customer struct {
	ID                string
	CompanyID         string
	Name              string
	Email             string
	Status            string
	AssignedTo        string
	LastOrderDate     *time.Time
	LastContactDate   *time.Time
	LastActivityDate  *time.Time
	TotalOrders       int
	TotalValue        decimal.Decimal
	AverageOrderValue decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyOrder acumula un pedido entregado en las métricas del cliente.
func (c *Customer) ApplyOrder(total decimal.Decimal, orderDate, now time.Time) {
	c.TotalOrders++
	c.TotalValue = c.TotalValue.Add(total).Round(2)
	c.AverageOrderValue = c.TotalValue.DivRound(decimal.NewFromInt(int64(c.TotalOrders)), 2)
	od := orderDate
	c.LastOrderDate = &od
	n := now
	c.LastActivityDate = &n
	c.UpdatedAt = now
}
