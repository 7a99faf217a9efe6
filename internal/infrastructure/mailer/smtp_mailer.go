// Package mailer implementa el transporte de email (gomail) y las plantillas HTML.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/pkg/config"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

var (
	_ notification.Mailer = (*SMTPMailer)(nil)
	_ notification.Mailer = (*LogMailer)(nil)
)

// SMTPMailer envía emails por SMTP usando gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer crea el mailer SMTP desde la configuración.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send abre una conexión por mensaje; los envíos son de baja frecuencia (jobs diarios/horarios).
func (m *SMTPMailer) Send(ctx context.Context, email notification.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", email.To, email.ToName)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return nil
}

// LogMailer registra el email en lugar de enviarlo. Se usa cuando SMTP_HOST está vacío.
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer crea el mailer de log.
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, email notification.Email) error {
	m.log.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Int("html_bytes", len(email.HTML)).
		Msg("email no enviado (SMTP no configurado)")
	return nil
}

// New elige el mailer según la configuración SMTP.
func New(cfg config.SMTPConfig, log *logger.Logger) notification.Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
