package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
	"github.com/jhoicas/erp-automation/pkg/money"
)

// Umbrales de escalamiento de facturas vencidas, en días.
const (
	MarkOverdueAfterDays = 7
	CollectionTaskDays   = 30
)

// TagUrgent etiqueta de las tareas de cobro automáticas.
const TagUrgent = "URGENT"

// Contadores del job overdue-invoices.
const (
	CountInvoicesOverdue  = "invoices_overdue"
	CountInvoicesMarked   = "invoices_marked"
	CountCollectionTasks  = "collection_tasks"
	CountActivitiesLogged = "activities_logged"
)

// InvoiceTier nivel de escalamiento por días de vencimiento (solo presentación).
func InvoiceTier(daysOverdue int) string {
	switch {
	case daysOverdue >= 30:
		return notification.UrgencyCritical
	case daysOverdue >= 14:
		return notification.UrgencyHigh
	case daysOverdue >= 7:
		return notification.UrgencyMedium
	default:
		return notification.UrgencyLow
	}
}

// OverdueInvoiceUseCase escala facturas vencidas: estado overdue, tarea de cobro y aviso a managers.
type OverdueInvoiceUseCase struct {
	invoices   repository.InvoiceRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	guard      *Guard
	notifier   notification.Notifier
	money      *money.Formatter
	clock      clock.Clock
	log        *logger.Logger
}

// NewOverdueInvoiceUseCase construye el caso de uso.
func NewOverdueInvoiceUseCase(
	invoices repository.InvoiceRepository,
	activities repository.ActivityRepository,
	tasks repository.TaskRepository,
	users repository.UserRepository,
	notifier notification.Notifier,
	fmtMoney *money.Formatter,
	clk clock.Clock,
	log *logger.Logger,
) *OverdueInvoiceUseCase {
	return &OverdueInvoiceUseCase{
		invoices:   invoices,
		activities: activities,
		users:      users,
		guard:      NewGuard(tasks),
		notifier:   notifier,
		money:      fmtMoney,
		clock:      clk,
		log:        log,
	}
}

// Job definición registrable.
func (uc *OverdueInvoiceUseCase) Job() job.Job {
	return job.Job{
		Name:        JobOverdueInvoices,
		Schedule:    ScheduleOverdueInvoices,
		Description: "Escalamiento de facturas vencidas",
		Run:         uc.Run,
	}
}

type overdueInvoice struct {
	invoice *entity.Invoice
	days    int
}

// Run procesa las facturas sent/overdue con vencimiento anterior a hoy.
func (uc *OverdueInvoiceUseCase) Run(ctx context.Context, res *job.Result) error {
	now := uc.clock.Now()
	today := clock.StartOfDay(now)

	invoices, err := uc.invoices.ListOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("listar facturas vencidas: %w", err)
	}
	if len(invoices) == 0 {
		return nil
	}
	res.Add(CountInvoicesOverdue, len(invoices))

	managers, err := managersByCompany(ctx, uc.users)
	if err != nil {
		return err
	}

	byCompany := make(map[string][]overdueInvoice)
	var order []string
	var toMark []string
	for _, inv := range invoices {
		days := clock.DaysBetween(inv.DueDate, today)
		if _, ok := byCompany[inv.CompanyID]; !ok {
			order = append(order, inv.CompanyID)
		}
		byCompany[inv.CompanyID] = append(byCompany[inv.CompanyID], overdueInvoice{invoice: inv, days: days})

		if days >= CollectionTaskDays {
			assignee := inv.CreatedBy
			if assignee == "" && len(managers[inv.CompanyID]) > 0 {
				assignee = managers[inv.CompanyID][0].ID
			}
			uc.escalate(ctx, now, inv, days, assignee, res)
		}
		if days >= MarkOverdueAfterDays && inv.Status == entity.InvoiceStatusSent {
			toMark = append(toMark, inv.ID)
		}
	}

	if len(toMark) > 0 {
		n, err := uc.invoices.MarkOverdue(ctx, toMark, now)
		if err != nil {
			uc.log.Error().Err(err).Int("count", len(toMark)).Msg("error marcando facturas como vencidas")
			res.Inc(job.CountErrors)
		} else {
			res.Add(CountInvoicesMarked, int(n))
		}
	}

	for _, companyID := range order {
		uc.notifyCompany(ctx, companyID, byCompany[companyID], managers[companyID], res)
	}
	return nil
}

// escalate crea la tarea urgente de cobro y registra la actividad, una sola vez por factura.
func (uc *OverdueInvoiceUseCase) escalate(ctx context.Context, now time.Time, inv *entity.Invoice, days int, assignee string, res *job.Result) {
	log := uc.log.With().Str("invoice_id", inv.ID).Int("days_overdue", days).Logger()
	customer := firstNonEmpty(inv.CustomerName, inv.CustomerID)
	task := &entity.Task{
		ID:             uuid.New().String(),
		CompanyID:      inv.CompanyID,
		Title:          fmt.Sprintf("%s: cobrar factura %s (%d días vencida)", TagUrgent, inv.InvoiceNumber, days),
		Description:    fmt.Sprintf("Factura %s de %s por %s vencida desde %s.", inv.InvoiceNumber, customer, uc.money.Format(inv.Total), inv.DueDate.Format(dateLayout)),
		Type:           entity.TaskTypeCall,
		RelatedTo:      entity.RelatedInvoice,
		RelatedID:      inv.ID,
		AutomationKind: entity.KindInvoiceCollection,
		AssignedTo:     assignee,
		CreatedBy:      assignee,
		DueDate:        now.Add(24 * time.Hour),
		Priority:       entity.PriorityUrgent,
		Status:         entity.TaskStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := uc.guard.CreateOnce(ctx, task)
	if err != nil {
		log.Error().Err(err).Msg("error creando tarea de cobro")
		res.Inc(job.CountErrors)
		return
	}
	if !created {
		res.Inc(job.CountSkipped)
		return
	}
	res.Inc(CountCollectionTasks)

	done := now
	activity := &entity.Activity{
		ID:               uuid.New().String(),
		CompanyID:        inv.CompanyID,
		Type:             entity.ActivityTypeInvoice,
		Subject:          fmt.Sprintf("Escalamiento de cobro factura %s", inv.InvoiceNumber),
		Description:      fmt.Sprintf("Factura vencida hace %d días. Se creó tarea de cobro urgente.", days),
		AssignedTo:       assignee,
		CreatedBy:        assignee,
		Status:           entity.ActivityStatusCompleted,
		CompletedDate:    &done,
		CustomerID:       inv.CustomerID,
		RelatedInvoiceID: inv.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.activities.Create(ctx, activity); err != nil {
		log.Error().Err(err).Str("stage", "activity_logged").Str("task_id", task.ID).Msg("tarea de cobro creada pero falló el registro de actividad")
		res.Inc(job.CountErrors)
		return
	}
	res.Inc(CountActivitiesLogged)

	notify(ctx, uc.notifier, uc.log, res, notification.Request{
		UserID:    assignee,
		CompanyID: inv.CompanyID,
		Title:     task.Title,
		Message:   task.Description,
		Type:      entity.NotificationTaskAssigned,
		Priority:  entity.PriorityUrgent,
		Data:      map[string]any{"task_id": task.ID, "invoice_id": inv.ID, "days_overdue": days},
		RelatedTo: relatedTask,
		RelatedID: task.ID,
	})
}

// notifyCompany un email por manager con todas las facturas vencidas de la empresa.
func (uc *OverdueInvoiceUseCase) notifyCompany(ctx context.Context, companyID string, list []overdueInvoice, recipients []*entity.User, res *job.Result) {
	if len(recipients) == 0 {
		uc.log.Warn().Str("company_id", companyID).Msg("empresa sin managers para aviso de facturas vencidas")
		res.Inc(countUnassigned)
		return
	}
	total := decimal.Zero
	maxDays := 0
	content := notification.EmailContent{ActionLabel: "Ver facturas", ActionPath: "/invoices?status=overdue"}
	for _, o := range list {
		total = total.Add(o.invoice.Total)
		if o.days > maxDays {
			maxDays = o.days
		}
		content.Items = append(content.Items, notification.EmailItem{
			Title:   fmt.Sprintf("%s · %s", o.invoice.InvoiceNumber, firstNonEmpty(o.invoice.CustomerName, o.invoice.CustomerID)),
			Detail:  fmt.Sprintf("%d día(s) vencida", o.days),
			Amount:  uc.money.Format(o.invoice.Total),
			Urgency: InvoiceTier(o.days),
		})
	}
	content.Urgency = InvoiceTier(maxDays)
	content.Rows = []notification.EmailRow{
		{Label: "Facturas vencidas", Value: uc.money.Number(len(list))},
		{Label: "Total pendiente", Value: uc.money.Format(total)},
	}
	priority := entity.PriorityHigh
	if maxDays >= CollectionTaskDays {
		priority = entity.PriorityUrgent
	}

	for _, m := range recipients {
		notify(ctx, uc.notifier, uc.log, res, notification.Request{
			UserID:    m.ID,
			CompanyID: companyID,
			Title:     fmt.Sprintf("%d factura(s) vencida(s)", len(list)),
			Message:   fmt.Sprintf("Total pendiente %s. La más antigua lleva %d día(s) vencida.", uc.money.Format(total), maxDays),
			Type:      entity.NotificationInvoiceOverdue,
			Priority:  priority,
			Data:      map[string]any{"count": len(list), "total": total.String(), "max_days": maxDays},
			SendEmail: true,
			ToEmail:   m.Email,
			ToName:    m.Name,
			Email:     &content,
		})
	}
}
