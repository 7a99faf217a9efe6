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

var (
	_ repository.ProductRepository      = (*ProductRepo)(nil)
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.NotificationRepository = (*NotificationRepo)(nil)
)

// ProductRepo implementa repository.ProductRepository sobre el Store.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.s.with(func(d *dataset) error {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.with(func(d *dataset) error {
		for _, p := range d.products {
			p := p
			if p.IsActive && p.IsLowStock() {
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyID != out[j].CompanyID {
			return out[i].CompanyID < out[j].CompanyID
		}
		di := out[i].ReorderLevel.Sub(out[i].Quantity)
		dj := out[j].ReorderLevel.Sub(out[j].Quantity)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// CompanyRepo implementa repository.CompanyRepository sobre el Store.
type CompanyRepo struct{ s *Store }

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	return r.s.with(func(d *dataset) error {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if _, ok := d.companies[c.ID]; ok {
			return domain.ErrDuplicate
		}
		d.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.s.with(func(d *dataset) error {
		if c, ok := d.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) ListLicenseExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.Company, error) {
	var out []*entity.Company
	err := r.s.with(func(d *dataset) error {
		for _, c := range d.companies {
			c := c
			if c.LicenseExpiry == nil || c.LicenseExpiry.Before(from) || c.LicenseExpiry.After(to) {
				continue
			}
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].LicenseExpiry.UnixNano(), out[j].LicenseExpiry.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}

// UserRepo implementa repository.UserRepository sobre el Store.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.s.with(func(d *dataset) error {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if _, ok := d.users[u.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, o := range d.users {
			if o.Email == u.Email {
				return domain.ErrDuplicate
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.with(func(d *dataset) error {
		if u, ok := d.users[id]; ok {
			u.CompanyName = d.companies[u.CompanyID].Name
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) ListByRoles(ctx context.Context, companyID string, roles []string) ([]*entity.User, error) {
	return r.list(func(u *entity.User) bool { return u.CompanyID == companyID && containsString(roles, u.Role) })
}

func (r *UserRepo) ListAllByRoles(ctx context.Context, roles []string) ([]*entity.User, error) {
	return r.list(func(u *entity.User) bool { return containsString(roles, u.Role) })
}

func (r *UserRepo) list(match func(u *entity.User) bool) ([]*entity.User, error) {
	var out []*entity.User
	err := r.s.with(func(d *dataset) error {
		for _, u := range d.users {
			u := u
			if u.Status != "active" || !match(&u) {
				continue
			}
			u.CompanyName = d.companies[u.CompanyID].Name
			out = append(out, &u)
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

// NotificationRepo implementa repository.NotificationRepository sobre el Store.
type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return r.s.with(func(d *dataset) error {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if _, ok := d.notifications[n.ID]; ok {
			return domain.ErrDuplicate
		}
		d.notifications[n.ID] = *n
		return nil
	})
}

func (r *NotificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.s.with(func(d *dataset) error {
		for id, notif := range d.notifications {
			if notif.ExpiresAt != nil && notif.ExpiresAt.Before(now) {
				delete(d.notifications, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
