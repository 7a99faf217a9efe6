package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Umbrales de inactividad en días.
const (
	NoOrderDays   = 30
	NoContactDays = 60
	HighRiskDays  = 90
)

// Etiquetas que se mantienen en el título de las tareas para el usuario.
const (
	TagNoRecentOrder   = "no recent order"
	TagNoRecentContact = "no recent contact"
	TagHighRisk        = "high risk"
)

// inactivityTier regla independiente de inactividad.
type inactivityTier struct {
	name     string
	kind     entity.AutomationKind
	tag      string
	taskType string
	priority string
	dueIn    time.Duration
	message  string
}

var (
	tierStaleOrder = inactivityTier{
		name: "stale_order", kind: entity.KindStaleOrder, tag: TagNoRecentOrder,
		taskType: entity.TaskTypeFollowUp, priority: entity.PriorityMedium, dueIn: 48 * time.Hour,
		message: "no registra pedidos en los últimos 30 días",
	}
	tierStaleContact = inactivityTier{
		name: "stale_contact", kind: entity.KindStaleContact, tag: TagNoRecentContact,
		taskType: entity.TaskTypeCall, priority: entity.PriorityHigh, dueIn: 24 * time.Hour,
		message: "no ha sido contactado en los últimos 60 días",
	}
	tierHighRisk = inactivityTier{
		name: "high_risk", kind: entity.KindHighRisk, tag: TagHighRisk,
		taskType: entity.TaskTypeCall, priority: entity.PriorityUrgent, dueIn: 4 * time.Hour,
		message: "lleva más de 90 días sin contacto y está en riesgo de abandono",
	}
)

// InactiveCustomerUseCase crea tareas de reactivación para clientes activos sin movimiento.
// Cada nivel se evalúa por separado: un cliente puede tener las tres tareas abiertas.
type InactiveCustomerUseCase struct {
	customers repository.CustomerRepository
	users     repository.UserRepository
	guard     *Guard
	notifier  notification.Notifier
	clock     clock.Clock
	log       *logger.Logger
}

// NewInactiveCustomerUseCase construye el caso de uso.
func NewInactiveCustomerUseCase(
	customers repository.CustomerRepository,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *InactiveCustomerUseCase {
	return &InactiveCustomerUseCase{
		customers: customers,
		users:     users,
		guard:     NewGuard(tasks),
		notifier:  notifier,
		clock:     clk,
		log:       log,
	}
}

// Job definición registrable.
func (uc *InactiveCustomerUseCase) Job() job.Job {
	return job.Job{
		Name:        JobInactiveCustomers,
		Schedule:    ScheduleInactiveCustomers,
		Description: "Tareas de reactivación para clientes sin pedidos o sin contacto",
		Run:         uc.Run,
	}
}

// Run evalúa los tres niveles de inactividad.
func (uc *InactiveCustomerUseCase) Run(ctx context.Context, res *job.Result) error {
	now := uc.clock.Now()
	fallback := &assigneeFallback{users: uc.users}

	var errs []error
	noOrder, err := uc.customers.ListActiveWithoutOrderSince(ctx, now.AddDate(0, 0, -NoOrderDays))
	if err != nil {
		errs = append(errs, fmt.Errorf("listar clientes sin pedidos: %w", err))
	} else {
		uc.applyTier(ctx, now, tierStaleOrder, noOrder, fallback, res)
	}

	noContact, err := uc.customers.ListActiveWithoutContactSince(ctx, now.AddDate(0, 0, -NoContactDays))
	if err != nil {
		errs = append(errs, fmt.Errorf("listar clientes sin contacto: %w", err))
	} else {
		uc.applyTier(ctx, now, tierStaleContact, noContact, fallback, res)
	}

	highRisk, err := uc.customers.ListActiveWithoutContactSince(ctx, now.AddDate(0, 0, -HighRiskDays))
	if err != nil {
		errs = append(errs, fmt.Errorf("listar clientes en riesgo: %w", err))
	} else {
		uc.applyTier(ctx, now, tierHighRisk, highRisk, fallback, res)
	}
	return errors.Join(errs...)
}

func (uc *InactiveCustomerUseCase) applyTier(
	ctx context.Context,
	now time.Time,
	tier inactivityTier,
	customers []*entity.Customer,
	fallback *assigneeFallback,
	res *job.Result,
) {
	for _, c := range customers {
		if c.Status != entity.CustomerStatusActive {
			continue
		}
		log := uc.log.With().Str("customer_id", c.ID).Str("tier", tier.name).Logger()

		assignee := c.AssignedTo
		if assignee == "" {
			var err error
			assignee, err = fallback.For(ctx, c.CompanyID)
			if err != nil {
				log.Error().Err(err).Msg("error resolviendo responsable")
				res.Inc(job.CountErrors)
				continue
			}
		}

		name := firstNonEmpty(c.Name, c.ID)
		task := &entity.Task{
			ID:             uuid.New().String(),
			CompanyID:      c.CompanyID,
			Title:          fmt.Sprintf("%s - %s", name, tier.tag),
			Description:    fmt.Sprintf("El cliente %s %s.", name, tier.message),
			Type:           tier.taskType,
			RelatedTo:      entity.RelatedCustomer,
			RelatedID:      c.ID,
			AutomationKind: tier.kind,
			AssignedTo:     assignee,
			CreatedBy:      assignee,
			DueDate:        now.Add(tier.dueIn),
			Priority:       tier.priority,
			Status:         entity.TaskStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		created, err := uc.guard.CreateOnce(ctx, task)
		if err != nil {
			log.Error().Err(err).Msg("error creando tarea de reactivación")
			res.Inc(job.CountErrors)
			continue
		}
		if !created {
			res.Inc(job.CountSkipped)
			continue
		}
		res.Inc("tasks_" + tier.name)
		notify(ctx, uc.notifier, uc.log, res, notification.Request{
			UserID:    assignee,
			CompanyID: c.CompanyID,
			Title:     task.Title,
			Message:   task.Description,
			Type:      entity.NotificationCustomerInactive,
			Priority:  tier.priority,
			Data:      map[string]any{"customer_id": c.ID, "task_id": task.ID, "tier": tier.name},
			RelatedTo: entity.RelatedCustomer,
			RelatedID: c.ID,
			SendEmail: tier.kind == entity.KindHighRisk,
			Email: &notification.EmailContent{
				Rows: []notification.EmailRow{
					{Label: "Cliente", Value: name},
					{Label: "Vence", Value: task.DueDate.Format(dateTimeLayout)},
				},
				ActionLabel: "Ver cliente",
				ActionPath:  "/customers/" + c.ID,
			},
		})
	}
}

// assigneeFallback primer manager/admin de la empresa, para clientes sin responsable.
type assigneeFallback struct {
	users  repository.UserRepository
	loaded map[string][]*entity.User
}

func (f *assigneeFallback) For(ctx context.Context, companyID string) (string, error) {
	if f.loaded == nil {
		byCompany, err := managersByCompany(ctx, f.users)
		if err != nil {
			return "", err
		}
		f.loaded = byCompany
	}
	if list := f.loaded[companyID]; len(list) > 0 {
		return list[0].ID, nil
	}
	return "", nil
}
