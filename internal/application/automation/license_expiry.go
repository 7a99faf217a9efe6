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

// LicenseWarningDays ventana de aviso antes del vencimiento.
const LicenseWarningDays = 30

// CountLicensesExpiring contador del job license-expiry.
const CountLicensesExpiring = "licenses_expiring"

// LicenseUrgency banda de urgencia por días restantes (solo presentación).
func LicenseUrgency(daysLeft int) string {
	switch {
	case daysLeft <= 7:
		return notification.UrgencyCritical
	case daysLeft <= 14:
		return notification.UrgencyHigh
	case daysLeft <= 21:
		return notification.UrgencyMedium
	default:
		return notification.UrgencyLow
	}
}

func licensePriority(urgency string) string {
	switch urgency {
	case notification.UrgencyCritical:
		return entity.PriorityUrgent
	case notification.UrgencyHigh:
		return entity.PriorityHigh
	case notification.UrgencyMedium:
		return entity.PriorityMedium
	default:
		return entity.PriorityLow
	}
}

// LicenseExpiryUseCase avisa a managers/admins de licencias que vencen en los próximos 30 días.
type LicenseExpiryUseCase struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	notifier  notification.Notifier
	clock     clock.Clock
	log       *logger.Logger
}

// NewLicenseExpiryUseCase construye el caso de uso.
func NewLicenseExpiryUseCase(
	companies repository.CompanyRepository,
	users repository.UserRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *LicenseExpiryUseCase {
	return &LicenseExpiryUseCase{companies: companies, users: users, notifier: notifier, clock: clk, log: log}
}

// Job definición registrable.
func (uc *LicenseExpiryUseCase) Job() job.Job {
	return job.Job{
		Name:        JobLicenseExpiry,
		Schedule:    ScheduleLicenseExpiry,
		Description: "Avisos de vencimiento de licencia",
		Run:         uc.Run,
	}
}

// Run busca empresas con today <= licenseExpiry <= today+30d.
func (uc *LicenseExpiryUseCase) Run(ctx context.Context, res *job.Result) error {
	today := clock.StartOfDay(uc.clock.Now())
	companies, err := uc.companies.ListLicenseExpiringBetween(ctx, today, today.AddDate(0, 0, LicenseWarningDays))
	if err != nil {
		return fmt.Errorf("listar licencias por vencer: %w", err)
	}

	// pocas empresas por ventana: destinatarios consultados por empresa
	for _, c := range companies {
		if c.LicenseExpiry == nil {
			continue
		}
		res.Inc(CountLicensesExpiring)
		daysLeft := clock.DaysBetween(today, *c.LicenseExpiry)
		urgency := LicenseUrgency(daysLeft)

		recipients, err := uc.users.ListByRoles(ctx, c.ID, entity.ManagerRoles)
		if err != nil {
			uc.log.Error().Err(err).Str("company_id", c.ID).Msg("listar managers para aviso de licencia")
			res.Inc(job.CountErrors)
			continue
		}
		if len(recipients) == 0 {
			uc.log.Warn().Str("company_id", c.ID).Msg("empresa sin managers para aviso de licencia")
			res.Inc(countUnassigned)
			continue
		}
		for _, m := range recipients {
			notify(ctx, uc.notifier, uc.log, res, notification.Request{
				UserID:    m.ID,
				CompanyID: c.ID,
				Title:     fmt.Sprintf("Tu licencia vence en %d día(s)", daysLeft),
				Message: fmt.Sprintf("La licencia %s de %s vence el %s.",
					firstNonEmpty(c.LicensePlan, "actual"), firstNonEmpty(c.Name, m.CompanyName), c.LicenseExpiry.Format(dateLayout)),
				Type:      entity.NotificationLicenseExpiry,
				Priority:  licensePriority(urgency),
				Data:      map[string]any{"days_left": daysLeft, "plan": c.LicensePlan, "expiry": c.LicenseExpiry},
				SendEmail: true,
				ToEmail:   m.Email,
				ToName:    m.Name,
				Email: &notification.EmailContent{
					Urgency: urgency,
					Rows: []notification.EmailRow{
						{Label: "Plan", Value: firstNonEmpty(c.LicensePlan, "-")},
						{Label: "Vence", Value: c.LicenseExpiry.Format(dateLayout)},
						{Label: "Días restantes", Value: fmt.Sprintf("%d", daysLeft)},
					},
					ActionLabel: "Renovar licencia",
					ActionPath:  "/settings/billing",
				},
			})
		}
	}
	return nil
}
