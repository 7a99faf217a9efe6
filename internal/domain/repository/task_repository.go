package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// TaskRepository define el puerto de persistencia para Task.
type TaskRepository interface {
	// Create persiste una tarea nueva. Si la tarea es automática (AutomationKind != "")
	// y ya existe otra activa con la misma llave (RelatedTo, RelatedID, AutomationKind)
	// devuelve domain.ErrDuplicate.
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)

	// ExistsActive indica si hay una tarea Pending/InProgress con esa llave de automatización.
	ExistsActive(ctx context.Context, relatedTo, relatedID string, kind entity.AutomationKind) (bool, error)

	// ListDueReminders tareas activas con ReminderDate <= until y ReminderSent = false.
	ListDueReminders(ctx context.Context, until time.Time) ([]*entity.Task, error)
	// ClaimReminder marca ReminderSent = true solo si seguía en false.
	// Devuelve false si otra ejecución ya lo había reclamado.
	ClaimReminder(ctx context.Context, id string, now time.Time) (bool, error)

	// ListPastDue tareas activas con DueDate < now.
	ListPastDue(ctx context.Context, now time.Time) ([]*entity.Task, error)
	// MarkOverdue pasa la tarea a Overdue solo si sigue activa.
	MarkOverdue(ctx context.Context, id string, now time.Time) (bool, error)

	// CountByStatus cuenta las tareas de la empresa en el estado indicado.
	CountByStatus(ctx context.Context, companyID, status string) (int, error)
}
