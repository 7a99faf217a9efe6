package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// ListOverdue facturas sent/overdue con DueDate < today, con el nombre del cliente.
	ListOverdue(ctx context.Context, today time.Time) ([]*entity.Invoice, error)
	// MarkOverdue pasa a overdue las facturas indicadas que sigan en sent.
	MarkOverdue(ctx context.Context, ids []string, now time.Time) (int64, error)
}
