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

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo implementa repository.ActivityRepository sobre el Store.
type ActivityRepo struct{ s *Store }

func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	return r.s.with(func(d *dataset) error {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if _, ok := d.activities[a.ID]; ok {
			return domain.ErrDuplicate
		}
		d.activities[a.ID] = *a
		return nil
	})
}

func (r *ActivityRepo) GetByID(ctx context.Context, id string) (*entity.Activity, error) {
	var out *entity.Activity
	err := r.s.with(func(d *dataset) error {
		if a, ok := d.activities[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *ActivityRepo) ListFollowUpsDue(ctx context.Context, until time.Time) ([]*entity.Activity, error) {
	return r.filter(func(a *entity.Activity) bool {
		return a.Status == entity.ActivityStatusCompleted &&
			a.Outcome == entity.OutcomeFollowUpRequired &&
			a.NextFollowUpDate != nil && !a.NextFollowUpDate.After(until)
	})
}

func (r *ActivityRepo) CompleteForOrder(ctx context.Context, orderID string, now time.Time) (int64, error) {
	var n int64
	err := r.s.with(func(d *dataset) error {
		for id, a := range d.activities {
			if a.RelatedOrderID != orderID {
				continue
			}
			if a.Status != entity.ActivityStatusScheduled && a.Status != entity.ActivityStatusInProgress {
				continue
			}
			a.Status = entity.ActivityStatusCompleted
			done := now
			a.CompletedDate = &done
			a.UpdatedAt = now
			d.activities[id] = a
			n++
		}
		return nil
	})
	return n, err
}

func (r *ActivityRepo) filter(match func(a *entity.Activity) bool) ([]*entity.Activity, error) {
	var out []*entity.Activity
	err := r.s.with(func(d *dataset) error {
		for _, a := range d.activities {
			a := a
			if match(&a) {
				out = append(out, &a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}
