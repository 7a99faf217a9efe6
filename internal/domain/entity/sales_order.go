package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pedido de venta.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusDispatched = "Dispatched"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// SalesOrder pedido de venta, opcionalmente originado en una cotización.
// StatsRolledUp marca que el pedido ya se acumuló en las métricas del cliente.
type SalesOrder struct {
	ID            string
	CompanyID     string
	OrderNumber   string
	QuoteID       string
	CustomerID    string
	CreatedBy     string
	Status        string
	Items         []LineItem
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	DispatchedAt  *time.Time
	DeliveredAt   *time.Time
	StatsRolledUp bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
