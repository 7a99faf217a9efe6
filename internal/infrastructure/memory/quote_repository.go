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

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementa repository.QuoteRepository sobre el Store.
type QuoteRepo struct{ s *Store }

func (r *QuoteRepo) Create(ctx context.Context, q *entity.Quote) error {
	return r.s.with(func(d *dataset) error {
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if _, ok := d.quotes[q.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *q
		cp.Items = append([]entity.LineItem(nil), q.Items...)
		d.quotes[q.ID] = cp
		return nil
	})
}

func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	var out *entity.Quote
	err := r.s.with(func(d *dataset) error {
		if q, ok := d.quotes[id]; ok {
			q.Items = append([]entity.LineItem(nil), q.Items...)
			out = &q
		}
		return nil
	})
	return out, err
}

func (r *QuoteRepo) ListExpirable(ctx context.Context, now time.Time) ([]*entity.Quote, error) {
	return r.filter(func(q *entity.Quote) bool {
		return (q.Status == entity.QuoteStatusDraft || q.Status == entity.QuoteStatusSent) && q.ValidUntil.Before(now)
	})
}

func (r *QuoteRepo) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	changed := false
	err := r.s.with(func(d *dataset) error {
		q, ok := d.quotes[id]
		if !ok || (q.Status != entity.QuoteStatusDraft && q.Status != entity.QuoteStatusSent) {
			return nil
		}
		q.Status = entity.QuoteStatusExpired
		q.UpdatedAt = now
		d.quotes[id] = q
		changed = true
		return nil
	})
	return changed, err
}

func (r *QuoteRepo) ListAccepted(ctx context.Context) ([]*entity.Quote, error) {
	return r.filter(func(q *entity.Quote) bool { return q.Status == entity.QuoteStatusAccepted })
}

func (r *QuoteRepo) filter(match func(q *entity.Quote) bool) ([]*entity.Quote, error) {
	var out []*entity.Quote
	err := r.s.with(func(d *dataset) error {
		for _, q := range d.quotes {
			q := q
			if match(&q) {
				q.Items = append([]entity.LineItem(nil), q.Items...)
				out = append(out, &q)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}
