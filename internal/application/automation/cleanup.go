package automation

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
)

// CountNotificationsDeleted contador del job notification-cleanup.
const CountNotificationsDeleted = "notifications_deleted"

// CleanupUseCase elimina notificaciones vencidas.
type CleanupUseCase struct {
	notifications repository.NotificationRepository
	clock         clock.Clock
}

// NewCleanupUseCase construye el caso de uso.
func NewCleanupUseCase(notifications repository.NotificationRepository, clk clock.Clock) *CleanupUseCase {
	return &CleanupUseCase{notifications: notifications, clock: clk}
}

// Job definición registrable.
func (uc *CleanupUseCase) Job() job.Job {
	return job.Job{
		Name:        JobNotificationCleanup,
		Schedule:    ScheduleNotificationCleanup,
		Description: "Elimina notificaciones con ExpiresAt vencido",
		Run:         uc.Run,
	}
}

func (uc *CleanupUseCase) Run(ctx context.Context, res *job.Result) error {
	n, err := uc.notifications.DeleteExpired(ctx, uc.clock.Now())
	if err != nil {
		return fmt.Errorf("eliminar notificaciones vencidas: %w", err)
	}
	res.Add(CountNotificationsDeleted, int(n))
	return nil
}
