package notification

import (
	"context"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// Email mensaje ya renderizado listo para el transporte.
type Email struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Mailer transporte de correo (SMTP u otro). Los errores se registran por destinatario.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// EmailRenderer produce el HTML de un email según el tipo de notificación.
type EmailRenderer interface {
	Render(notifType entity.NotificationType, data EmailData) (string, error)
}

// Notifier puerto que usan los evaluadores y el workflow para emitir notificaciones.
type Notifier interface {
	Send(ctx context.Context, req Request) (*entity.Notification, error)
}
