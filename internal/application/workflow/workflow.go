// Package workflow implementa el ciclo de vida cotización → pedido → entrega y las
// cascadas posteriores a la entrega (actividades y métricas del cliente).
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Nombre y cadencia por defecto del job.
const (
	JobName         = "workflow"
	DefaultSchedule = "15 * * * *"
)

// DeliveryDelay tiempo desde el despacho tras el cual un pedido se da por entregado.
const DeliveryDelay = 24 * time.Hour

// CascadeWindow ventana hacia atrás para completar actividades de pedidos entregados.
const CascadeWindow = 24 * time.Hour

// Contadores del job.
const (
	CountQuotesExpired      = "quotes_expired"
	CountQuotesConverted    = "quotes_converted"
	CountOrdersDelivered    = "orders_delivered"
	CountActivitiesComplete = "activities_completed"
	CountCustomersRolledUp  = "customers_rolled_up"
	CountOrphanOrders       = "orders_without_customer"
)

// errNoop la transición ya no aplica (otra ejecución la hizo primero).
var errNoop = errors.New("transición ya aplicada")

// UseCase máquina de estados de cotizaciones y pedidos.
type UseCase struct {
	tx         repository.WorkflowTxRunner
	quotes     repository.QuoteRepository
	orders     repository.SalesOrderRepository
	activities repository.ActivityRepository
	notifier   notification.Notifier
	clock      clock.Clock
	log        *logger.Logger
}

// NewUseCase construye el caso de uso. Los repos sin transacción se usan solo para lecturas
// y para la cascada de actividades.
func NewUseCase(
	tx repository.WorkflowTxRunner,
	quotes repository.QuoteRepository,
	orders repository.SalesOrderRepository,
	activities repository.ActivityRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tx:         tx,
		quotes:     quotes,
		orders:     orders,
		activities: activities,
		notifier:   notifier,
		clock:      clk,
		log:        log,
	}
}

// Job definición registrable.
func (uc *UseCase) Job() job.Job {
	return job.Job{
		Name:        JobName,
		Schedule:    DefaultSchedule,
		Description: "Vencimiento y conversión de cotizaciones, entrega de pedidos y cascadas",
		Run:         uc.Run,
	}
}

// Run aplica las reglas en orden: la entrega de esta misma ejecución alimenta las cascadas.
func (uc *UseCase) Run(ctx context.Context, res *job.Result) error {
	now := uc.clock.Now()
	return errors.Join(
		uc.ExpireQuotes(ctx, now, res),
		uc.ConvertAcceptedQuotes(ctx, now, res),
		uc.DeliverDispatched(ctx, now, res),
		uc.CompleteDeliveredActivities(ctx, now, res),
		uc.RollupCustomerStats(ctx, now, res),
	)
}

func (uc *UseCase) notify(ctx context.Context, res *job.Result, req notification.Request) {
	if req.UserID == "" {
		return
	}
	if _, err := uc.notifier.Send(ctx, req); err != nil {
		uc.log.Error().Err(err).
			Str("stage", "notified").
			Str("type", string(req.Type)).
			Str("related_id", req.RelatedID).
			Msg("transición aplicada pero falló la notificación")
		res.Inc(job.CountErrors)
		return
	}
	res.Inc(job.CountNotified)
}
