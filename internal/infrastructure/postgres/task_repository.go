package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementación de TaskRepository (usable con pool o tx).
// La unicidad de tareas automáticas activas la garantiza ux_tasks_active_automation.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `
	id, company_id, title, description, type, related_to, related_id, automation_kind,
	COALESCE(assigned_to::text, ''), COALESCE(created_by::text, ''), due_date, priority, status,
	reminder_date, reminder_sent, is_recurring, next_due_date, completed_at, created_at, updated_at`

// Create persiste una tarea nueva.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO tasks (id, company_id, title, description, type, related_to, related_id, automation_kind,
			assigned_to, created_by, due_date, priority, status, reminder_date, reminder_sent,
			is_recurring, next_due_date, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.Title, t.Description, t.Type, t.RelatedTo, t.RelatedID, string(t.AutomationKind),
		nullIfEmpty(t.AssignedTo), nullIfEmpty(t.CreatedBy), t.DueDate, t.Priority, t.Status,
		t.ReminderDate, t.ReminderSent, t.IsRecurring, t.NextDueDate, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea por ID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ExistsActive consulta la llave del índice parcial.
func (r *TaskRepo) ExistsActive(ctx context.Context, relatedTo, relatedID string, kind entity.AutomationKind) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE related_to = $1 AND related_id = $2 AND automation_kind = $3
			  AND status IN ('Pending', 'InProgress'))`
	var exists bool
	if err := r.q.QueryRow(ctx, query, relatedTo, relatedID, string(kind)).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists active task: %w", err)
	}
	return exists, nil
}

// ListDueReminders tareas activas con recordatorio vencido y sin enviar.
func (r *TaskRepo) ListDueReminders(ctx context.Context, until time.Time) ([]*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE reminder_date <= $1 AND reminder_sent = false AND status IN ('Pending', 'InProgress')
		ORDER BY reminder_date, id`
	return r.list(ctx, "list due reminders", query, until)
}

// ClaimReminder compare-and-set sobre reminder_sent.
func (r *TaskRepo) ClaimReminder(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE tasks SET reminder_sent = true, updated_at = $2 WHERE id = $1 AND reminder_sent = false`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListPastDue tareas activas con DueDate < now.
func (r *TaskRepo) ListPastDue(ctx context.Context, now time.Time) ([]*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date < $1 AND status IN ('Pending', 'InProgress')
		ORDER BY due_date, id`
	return r.list(ctx, "list past due tasks", query, now)
}

// MarkOverdue pasa la tarea a Overdue solo si sigue activa.
func (r *TaskRepo) MarkOverdue(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE tasks SET status = 'Overdue', updated_at = $2 WHERE id = $1 AND status IN ('Pending', 'InProgress')`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("mark task overdue: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountByStatus cuenta tareas de la empresa en un estado.
func (r *TaskRepo) CountByStatus(ctx context.Context, companyID, status string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE company_id = $1 AND status = $2`, companyID, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	var kind string
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Title, &t.Description, &t.Type, &t.RelatedTo, &t.RelatedID, &kind,
		&t.AssignedTo, &t.CreatedBy, &t.DueDate, &t.Priority, &t.Status,
		&t.ReminderDate, &t.ReminderSent, &t.IsRecurring, &t.NextDueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AutomationKind = entity.AutomationKind(kind)
	return &t, nil
}
