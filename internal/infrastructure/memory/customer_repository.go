package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementa repository.CustomerRepository sobre el Store.
type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	return r.s.with(func(d *dataset) error {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if _, ok := d.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		d.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.s.with(func(d *dataset) error {
		if c, ok := d.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) ListActiveWithoutOrderSince(ctx context.Context, before time.Time) ([]*entity.Customer, error) {
	return r.filter(func(c *entity.Customer) bool {
		return c.Status == entity.CustomerStatusActive && (c.LastOrderDate == nil || c.LastOrderDate.Before(before))
	})
}

func (r *CustomerRepo) ListActiveWithoutContactSince(ctx context.Context, before time.Time) ([]*entity.Customer, error) {
	return r.filter(func(c *entity.Customer) bool {
		return c.Status == entity.CustomerStatusActive && c.LastContactDate != nil && c.LastContactDate.Before(before)
	})
}

func (r *CustomerRepo) CountActiveWithoutContactSince(ctx context.Context, companyID string, before time.Time) (int, error) {
	list, err := r.filter(func(c *entity.Customer) bool {
		return c.CompanyID == companyID && c.Status == entity.CustomerStatusActive &&
			c.LastContactDate != nil && c.LastContactDate.Before(before)
	})
	return len(list), err
}

func (r *CustomerRepo) ApplyOrderRollup(ctx context.Context, customerID string, orderTotal decimal.Decimal, orderDate, now time.Time) error {
	return r.s.with(func(d *dataset) error {
		c, ok := d.customers[customerID]
		if !ok {
			return domain.ErrNotFound
		}
		c.ApplyOrder(orderTotal, orderDate, now)
		d.customers[customerID] = c
		return nil
	})
}

func (r *CustomerRepo) filter(match func(c *entity.Customer) bool) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.s.with(func(d *dataset) error {
		for _, c := range d.customers {
			c := c
			if match(&c) {
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyID != out[j].CompanyID {
			return out[i].CompanyID < out[j].CompanyID
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}
