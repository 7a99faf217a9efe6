package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice cabecera de factura. El paso sent → overdue es solo hacia adelante.
// CustomerName se llena por join en las consultas de lectura.
type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber string
	CustomerID    string
	CustomerName  string
	CreatedBy     string
	Status        string
	DueDate       time.Time
	Total         decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
