package automation

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Contadores de los resúmenes.
const (
	CountDigestsSent    = "digests_sent"
	CountCompaniesEmpty = "companies_without_items"
)

// DigestUseCase resúmenes periódicos para managers y admins.
type DigestUseCase struct {
	users     repository.UserRepository
	tasks     repository.TaskRepository
	customers repository.CustomerRepository
	notifier  notification.Notifier
	clock     clock.Clock
	log       *logger.Logger
}

// NewDigestUseCase construye el caso de uso de resúmenes.
func NewDigestUseCase(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	customers repository.CustomerRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *DigestUseCase {
	return &DigestUseCase{users: users, tasks: tasks, customers: customers, notifier: notifier, clock: clk, log: log}
}

// OverdueJob resumen diario de tareas vencidas.
func (uc *DigestUseCase) OverdueJob() job.Job {
	return job.Job{
		Name:        JobManagerDigest,
		Schedule:    ScheduleManagerDigest,
		Description: "Resumen diario de tareas vencidas por empresa",
		Run:         uc.RunOverdueDigest,
	}
}

// InactiveJob resumen semanal de clientes inactivos y en riesgo.
func (uc *DigestUseCase) InactiveJob() job.Job {
	return job.Job{
		Name:        JobInactiveDigest,
		Schedule:    ScheduleInactiveDigest,
		Description: "Resumen semanal de clientes inactivos y de alto riesgo",
		Run:         uc.RunInactiveDigest,
	}
}

// RunOverdueDigest envía a cada manager/admin el conteo de tareas Overdue de su empresa, si es > 0.
func (uc *DigestUseCase) RunOverdueDigest(ctx context.Context, res *job.Result) error {
	byCompany, err := managersByCompany(ctx, uc.users)
	if err != nil {
		return err
	}
	for companyID, managers := range byCompany {
		count, err := uc.tasks.CountByStatus(ctx, companyID, entity.TaskStatusOverdue)
		if err != nil {
			uc.log.Error().Err(err).Str("company_id", companyID).Msg("error contando tareas vencidas")
			res.Inc(job.CountErrors)
			continue
		}
		if count == 0 {
			res.Inc(CountCompaniesEmpty)
			continue
		}
		for _, m := range managers {
			sent := notify(ctx, uc.notifier, uc.log, res, notification.Request{
				UserID:    m.ID,
				CompanyID: companyID,
				Title:     fmt.Sprintf("Resumen diario: %d tarea(s) vencida(s)", count),
				Message:   fmt.Sprintf("Hay %d tarea(s) vencida(s) en %s.", count, firstNonEmpty(m.CompanyName, "tu empresa")),
				Type:      entity.NotificationOverdueDigest,
				Priority:  digestPriority(count),
				Data:      map[string]any{"overdue_count": count},
				SendEmail: true,
				ToEmail:   m.Email,
				ToName:    m.Name,
				Email: &notification.EmailContent{
					Rows:        []notification.EmailRow{{Label: "Tareas vencidas", Value: fmt.Sprintf("%d", count)}},
					ActionLabel: "Ver tareas vencidas",
					ActionPath:  "/tasks?status=Overdue",
				},
			})
			if sent {
				res.Inc(CountDigestsSent)
			}
		}
	}
	return nil
}

// RunInactiveDigest envía a cada manager/admin los clientes sin contacto en 60 y 90 días.
func (uc *DigestUseCase) RunInactiveDigest(ctx context.Context, res *job.Result) error {
	now := uc.clock.Now()
	byCompany, err := managersByCompany(ctx, uc.users)
	if err != nil {
		return err
	}
	for companyID, managers := range byCompany {
		inactive, err := uc.customers.CountActiveWithoutContactSince(ctx, companyID, now.AddDate(0, 0, -NoContactDays))
		if err != nil {
			uc.log.Error().Err(err).Str("company_id", companyID).Msg("error contando clientes inactivos")
			res.Inc(job.CountErrors)
			continue
		}
		highRisk, err := uc.customers.CountActiveWithoutContactSince(ctx, companyID, now.AddDate(0, 0, -HighRiskDays))
		if err != nil {
			uc.log.Error().Err(err).Str("company_id", companyID).Msg("error contando clientes en riesgo")
			res.Inc(job.CountErrors)
			continue
		}
		if inactive == 0 && highRisk == 0 {
			res.Inc(CountCompaniesEmpty)
			continue
		}
		priority := entity.PriorityMedium
		if highRisk > 0 {
			priority = entity.PriorityHigh
		}
		for _, m := range managers {
			sent := notify(ctx, uc.notifier, uc.log, res, notification.Request{
				UserID:    m.ID,
				CompanyID: companyID,
				Title:     "Resumen semanal de clientes inactivos",
				Message:   fmt.Sprintf("%d cliente(s) sin contacto en %d días, %d en alto riesgo (%d+ días).", inactive, NoContactDays, highRisk, HighRiskDays),
				Type:      entity.NotificationInactiveDigest,
				Priority:  priority,
				Data:      map[string]any{"inactive_count": inactive, "high_risk_count": highRisk},
				SendEmail: true,
				ToEmail:   m.Email,
				ToName:    m.Name,
				Email: &notification.EmailContent{
					Rows: []notification.EmailRow{
						{Label: fmt.Sprintf("Sin contacto %d+ días", NoContactDays), Value: fmt.Sprintf("%d", inactive)},
						{Label: fmt.Sprintf("Alto riesgo %d+ días", HighRiskDays), Value: fmt.Sprintf("%d", highRisk)},
					},
					ActionLabel: "Ver clientes",
					ActionPath:  "/customers?filter=inactive",
				},
			})
			if sent {
				res.Inc(CountDigestsSent)
			}
		}
	}
	return nil
}

func digestPriority(count int) string {
	switch {
	case count >= 10:
		return entity.PriorityUrgent
	case count >= 5:
		return entity.PriorityHigh
	default:
		return entity.PriorityMedium
	}
}
