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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementa repository.SalesOrderRepository sobre el Store.
type SalesOrderRepo struct{ s *Store }

func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	return r.s.with(func(d *dataset) error {
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		if _, ok := d.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.orders {
			if other.CompanyID == o.CompanyID && other.OrderNumber == o.OrderNumber {
				return domain.ErrDuplicate
			}
			if o.QuoteID != "" && other.QuoteID == o.QuoteID {
				return domain.ErrDuplicate
			}
		}
		cp := *o
		cp.Items = append([]entity.LineItem(nil), o.Items...)
		d.orders[o.ID] = cp
		return nil
	})
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := r.s.with(func(d *dataset) error {
		if o, ok := d.orders[id]; ok {
			o.Items = append([]entity.LineItem(nil), o.Items...)
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *SalesOrderRepo) ExistsForQuote(ctx context.Context, quoteID string) (bool, error) {
	list, err := r.filter(func(o *entity.SalesOrder) bool { return o.QuoteID == quoteID })
	return len(list) > 0, err
}

func (r *SalesOrderRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	list, err := r.filter(func(o *entity.SalesOrder) bool { return o.CompanyID == companyID })
	return len(list), err
}

func (r *SalesOrderRepo) ListDispatchedBefore(ctx context.Context, before time.Time) ([]*entity.SalesOrder, error) {
	return r.filter(func(o *entity.SalesOrder) bool {
		return o.Status == entity.OrderStatusDispatched && o.DispatchedAt != nil && o.DispatchedAt.Before(before)
	})
}

func (r *SalesOrderRepo) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	changed := false
	err := r.s.with(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok || o.Status != entity.OrderStatusDispatched {
			return nil
		}
		o.Status = entity.OrderStatusDelivered
		delivered := at
		o.DeliveredAt = &delivered
		o.UpdatedAt = at
		d.orders[id] = o
		changed = true
		return nil
	})
	return changed, err
}

func (r *SalesOrderRepo) ListDeliveredSince(ctx context.Context, since time.Time) ([]*entity.SalesOrder, error) {
	return r.filter(func(o *entity.SalesOrder) bool {
		return o.Status == entity.OrderStatusDelivered && o.DeliveredAt != nil && !o.DeliveredAt.Before(since)
	})
}

func (r *SalesOrderRepo) ListPendingRollup(ctx context.Context) ([]*entity.SalesOrder, error) {
	return r.filter(func(o *entity.SalesOrder) bool {
		return o.Status == entity.OrderStatusDelivered && o.CustomerID != "" && !o.StatsRolledUp
	})
}

func (r *SalesOrderRepo) MarkStatsRolledUp(ctx context.Context, id string) (bool, error) {
	changed := false
	err := r.s.with(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok || o.StatsRolledUp {
			return nil
		}
		o.StatsRolledUp = true
		d.orders[id] = o
		changed = true
		return nil
	})
	return changed, err
}

func (r *SalesOrderRepo) filter(match func(o *entity.SalesOrder) bool) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	err := r.s.with(func(d *dataset) error {
		for _, o := range d.orders {
			o := o
			if match(&o) {
				o.Items = append([]entity.LineItem(nil), o.Items...)
				out = append(out, &o)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}
