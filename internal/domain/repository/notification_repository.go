package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// DeleteExpired elimina las notificaciones con ExpiresAt < now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
