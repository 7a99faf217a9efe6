// Package automation contiene los evaluadores de reglas periódicas (recordatorios,
// clientes inactivos, stock bajo, facturas vencidas, licencias) y el guard de
// idempotencia que evita duplicar tareas entre ejecuciones.
package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

// Guard guard de idempotencia para tareas automáticas.
// La llave es (RelatedTo, RelatedID, AutomationKind) sobre tareas Pending/InProgress.
type Guard struct {
	tasks repository.TaskRepository
}

// NewGuard construye el guard sobre el repositorio de tareas.
func NewGuard(tasks repository.TaskRepository) *Guard {
	return &Guard{tasks: tasks}
}

// AlreadyHandled indica si ya existe una tarea activa con esa llave.
func (g *Guard) AlreadyHandled(ctx context.Context, relatedTo, relatedID string, kind entity.AutomationKind) (bool, error) {
	return g.tasks.ExistsActive(ctx, relatedTo, relatedID, kind)
}

// CreateOnce crea la tarea si no hay otra activa con la misma llave.
// Devuelve false sin error cuando la tarea ya existía, incluida la carrera
// resuelta por el índice único del store.
func (g *Guard) CreateOnce(ctx context.Context, task *entity.Task) (bool, error) {
	if task.AutomationKind == entity.KindNone {
		return false, fmt.Errorf("tarea automática sin AutomationKind: %w", domain.ErrInvalidInput)
	}
	handled, err := g.AlreadyHandled(ctx, task.RelatedTo, task.RelatedID, task.AutomationKind)
	if err != nil {
		return false, err
	}
	if handled {
		return false, nil
	}
	if err := g.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
