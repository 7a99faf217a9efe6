package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// ActivityRepository define el puerto de persistencia para Activity.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	GetByID(ctx context.Context, id string) (*entity.Activity, error)

	// ListFollowUpsDue actividades Completed con Outcome "Follow-up Required"
	// y NextFollowUpDate <= until.
	ListFollowUpsDue(ctx context.Context, until time.Time) ([]*entity.Activity, error)

	// CompleteForOrder marca Completed las actividades Scheduled/InProgress del pedido.
	CompleteForOrder(ctx context.Context, orderID string, now time.Time) (int64, error)
}
