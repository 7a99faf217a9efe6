package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product ítem de inventario con su stock agregado y punto de reorden.
// Critical marca productos cuyo quiebre de stock requiere atención inmediata.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string
	Name         string
	Unit         string
	Quantity     decimal.Decimal
	ReorderLevel decimal.Decimal
	IsActive     bool
	Critical     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock cantidad <= punto de reorden.
func (p *Product) IsLowStock() bool {
	return p.Quantity.LessThanOrEqual(p.ReorderLevel)
}

// IsOutOfStock cantidad en cero (o negativa por ajustes).
func (p *Product) IsOutOfStock() bool {
	return !p.Quantity.IsPositive()
}
