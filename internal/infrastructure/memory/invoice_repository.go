package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementa repository.InvoiceRepository sobre el Store.
type InvoiceRepo struct{ s *Store }

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.s.with(func(d *dataset) error {
		if inv.ID == "" {
			inv.ID = uuid.New().String()
		}
		if _, ok := d.invoices[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, o := range d.invoices {
			if o.CompanyID == inv.CompanyID && o.InvoiceNumber == inv.InvoiceNumber {
				return domain.ErrDuplicate
			}
		}
		d.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.s.with(func(d *dataset) error {
		if inv, ok := d.invoices[id]; ok {
			inv.CustomerName = d.customers[inv.CustomerID].Name
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) ListOverdue(ctx context.Context, today time.Time) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	err := r.s.with(func(d *dataset) error {
		for _, inv := range d.invoices {
			inv := inv
			if inv.Status != entity.InvoiceStatusSent && inv.Status != entity.InvoiceStatusOverdue {
				continue
			}
			if !inv.DueDate.Before(today) {
				continue
			}
			inv.CustomerName = d.customers[inv.CustomerID].Name
			out = append(out, &inv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].DueDate.UnixNano(), out[j].DueDate.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}

func (r *InvoiceRepo) MarkOverdue(ctx context.Context, ids []string, now time.Time) (int64, error) {
	var n int64
	err := r.s.with(func(d *dataset) error {
		for _, id := range ids {
			inv, ok := d.invoices[id]
			if !ok || inv.Status != entity.InvoiceStatusSent {
				continue
			}
			inv.Status = entity.InvoiceStatusOverdue
			inv.UpdatedAt = now
			d.invoices[id] = inv
			n++
		}
		return nil
	})
	return n, err
}
