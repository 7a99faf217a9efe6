// Package notification implementa el Notification Sink: persiste la notificación
// in-app y, si se pide, envía el email correspondiente.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

var _ Notifier = (*Sink)(nil)

// Sink Notification Sink. Los fallos del mailer se registran y no se propagan.
type Sink struct {
	notifRepo   repository.NotificationRepository
	userRepo    repository.UserRepository
	mailer      Mailer
	renderer    EmailRenderer
	clock       clock.Clock
	ttl         time.Duration
	frontendURL string
	log         *logger.Logger
}

// NewSink construye el sink. ttl <= 0 deja las notificaciones sin vencimiento.
func NewSink(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
	renderer EmailRenderer,
	clk clock.Clock,
	ttl time.Duration,
	frontendURL string,
	log *logger.Logger,
) *Sink {
	return &Sink{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		renderer:    renderer,
		clock:       clk,
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// Send crea la notificación y, si req.SendEmail, despacha el email.
// Solo devuelve error si no se pudo persistir la notificación.
func (s *Sink) Send(ctx context.Context, req Request) (*entity.Notification, error) {
	if req.UserID == "" || req.Title == "" {
		return nil, fmt.Errorf("notificación sin destinatario o título: %w", domain.ErrInvalidInput)
	}
	now := s.clock.Now()
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	n := &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		CompanyID: req.CompanyID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Priority:  priority,
		Data:      req.Data,
		RelatedTo: req.RelatedTo,
		RelatedID: req.RelatedID,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		n.ExpiresAt = &exp
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("crear notificación: %w", err)
	}

	if req.SendEmail {
		s.sendEmail(ctx, req, priority)
	}
	return n, nil
}

func (s *Sink) sendEmail(ctx context.Context, req Request, priority string) {
	to, name, companyName := req.ToEmail, req.ToName, ""
	if to == "" {
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", req.UserID).Msg("no se pudo resolver el destinatario del email")
			return
		}
		if user == nil || user.Email == "" {
			s.log.Warn().Str("user_id", req.UserID).Msg("usuario sin email, se omite el envío")
			return
		}
		to, companyName = user.Email, user.CompanyName
		if name == "" {
			name = user.Name
		}
	}

	content := EmailContent{Urgency: UrgencyForPriority(priority)}
	if req.Email != nil {
		content = *req.Email
		if content.Urgency == "" {
			content.Urgency = UrgencyForPriority(priority)
		}
	}
	data := EmailData{
		RecipientName: name,
		CompanyName:   companyName,
		Title:         req.Title,
		Message:       req.Message,
		Priority:      priority,
		Content:       content,
	}
	if content.ActionPath != "" {
		data.ActionURL = s.frontendURL + content.ActionPath
	}

	html, err := s.renderer.Render(req.Type, data)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(req.Type)).Msg("error renderizando plantilla de email")
		return
	}
	email := Email{To: to, ToName: name, Subject: req.Title, HTML: html}
	if err := s.mailer.Send(ctx, email); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("type", string(req.Type)).Msg("error enviando email")
		return
	}
	s.log.Debug().Str("to", to).Str("type", string(req.Type)).Msg("email enviado")
}
