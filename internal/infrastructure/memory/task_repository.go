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

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementa repository.TaskRepository sobre el Store.
type TaskRepo struct{ s *Store }

func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	return r.s.with(func(d *dataset) error {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if _, ok := d.tasks[t.ID]; ok {
			return domain.ErrDuplicate
		}
		// misma regla que el índice único parcial de tasks
		if t.AutomationKind != entity.KindNone && t.IsActive() {
			for _, o := range d.tasks {
				if o.IsActive() && o.AutomationKind == t.AutomationKind &&
					o.RelatedTo == t.RelatedTo && o.RelatedID == t.RelatedID {
					return domain.ErrDuplicate
				}
			}
		}
		d.tasks[t.ID] = *t
		return nil
	})
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	var out *entity.Task
	err := r.s.with(func(d *dataset) error {
		if t, ok := d.tasks[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *TaskRepo) ExistsActive(ctx context.Context, relatedTo, relatedID string, kind entity.AutomationKind) (bool, error) {
	found := false
	err := r.s.with(func(d *dataset) error {
		for _, t := range d.tasks {
			if t.IsActive() && t.AutomationKind == kind && t.RelatedTo == relatedTo && t.RelatedID == relatedID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *TaskRepo) ListDueReminders(ctx context.Context, until time.Time) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool {
		return t.IsActive() && !t.ReminderSent && t.ReminderDate != nil && !t.ReminderDate.After(until)
	})
}

func (r *TaskRepo) ClaimReminder(ctx context.Context, id string, now time.Time) (bool, error) {
	claimed := false
	err := r.s.with(func(d *dataset) error {
		t, ok := d.tasks[id]
		if !ok || t.ReminderSent {
			return nil
		}
		t.ReminderSent = true
		t.UpdatedAt = now
		d.tasks[id] = t
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *TaskRepo) ListPastDue(ctx context.Context, now time.Time) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool {
		return t.IsActive() && t.DueDate.Before(now)
	})
}

func (r *TaskRepo) MarkOverdue(ctx context.Context, id string, now time.Time) (bool, error) {
	changed := false
	err := r.s.with(func(d *dataset) error {
		t, ok := d.tasks[id]
		if !ok || !t.IsActive() {
			return nil
		}
		t.Status = entity.TaskStatusOverdue
		t.UpdatedAt = now
		d.tasks[id] = t
		changed = true
		return nil
	})
	return changed, err
}

func (r *TaskRepo) CountByStatus(ctx context.Context, companyID, status string) (int, error) {
	n := 0
	err := r.s.with(func(d *dataset) error {
		for _, t := range d.tasks {
			if t.CompanyID == companyID && t.Status == status {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TaskRepo) filter(match func(t *entity.Task) bool) ([]*entity.Task, error) {
	var out []*entity.Task
	err := r.s.with(func(d *dataset) error {
		for _, t := range d.tasks {
			t := t
			if match(&t) {
				out = append(out, &t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].DueDate.UnixNano(), out[j].DueDate.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, err
}
