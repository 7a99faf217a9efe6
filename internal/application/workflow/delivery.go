package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

// DeliverDispatched marca Delivered los pedidos despachados hace más de 24h.
func (uc *UseCase) DeliverDispatched(ctx context.Context, now time.Time, res *job.Result) error {
	orders, err := uc.orders.ListDispatchedBefore(ctx, now.Add(-DeliveryDelay))
	if err != nil {
		return fmt.Errorf("listar pedidos despachados: %w", err)
	}
	for _, o := range orders {
		log := uc.log.With().Str("order_id", o.ID).Logger()
		err := uc.tx.RunWorkflow(ctx, func(repos repository.WorkflowRepos) error {
			changed, err := repos.Orders.MarkDelivered(ctx, o.ID, now)
			if err != nil {
				return err
			}
			if !changed {
				return errNoop
			}
			done := now
			return repos.Activities.Create(ctx, &entity.Activity{
				ID:             uuid.New().String(),
				CompanyID:      o.CompanyID,
				Type:           entity.ActivityTypeDelivery,
				Subject:        fmt.Sprintf("Pedido %s entregado", o.OrderNumber),
				Description:    "Entrega registrada automáticamente 24h después del despacho.",
				AssignedTo:     o.CreatedBy,
				CreatedBy:      o.CreatedBy,
				Status:         entity.ActivityStatusCompleted,
				CompletedDate:  &done,
				CustomerID:     o.CustomerID,
				RelatedOrderID: o.ID,
				RelatedQuoteID: o.QuoteID,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		})
		if errors.Is(err, errNoop) {
			res.Inc(job.CountSkipped)
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("error marcando pedido entregado")
			res.Inc(job.CountErrors)
			continue
		}
		res.Inc(CountOrdersDelivered)
		uc.notify(ctx, res, notification.Request{
			UserID:    o.CreatedBy,
			CompanyID: o.CompanyID,
			Title:     fmt.Sprintf("Pedido %s entregado", o.OrderNumber),
			Message:   fmt.Sprintf("El pedido %s se marcó como entregado.", o.OrderNumber),
			Type:      entity.NotificationOrderDelivered,
			Priority:  entity.PriorityLow,
			Data:      map[string]any{"order_id": o.ID, "order_number": o.OrderNumber},
			RelatedTo: entity.RelatedOrder,
			RelatedID: o.ID,
		})
	}
	return nil
}

// CompleteDeliveredActivities completa las actividades abiertas de pedidos entregados en las últimas 24h.
// Es idempotente por el filtro de estado de las actividades.
func (uc *UseCase) CompleteDeliveredActivities(ctx context.Context, now time.Time, res *job.Result) error {
	orders, err := uc.orders.ListDeliveredSince(ctx, now.Add(-CascadeWindow))
	if err != nil {
		return fmt.Errorf("listar pedidos entregados: %w", err)
	}
	for _, o := range orders {
		n, err := uc.activities.CompleteForOrder(ctx, o.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Str("order_id", o.ID).Msg("error completando actividades del pedido")
			res.Inc(job.CountErrors)
			continue
		}
		res.Add(CountActivitiesComplete, int(n))
	}
	return nil
}

// RollupCustomerStats acumula cada pedido entregado en las métricas de su cliente una sola vez.
// El flag StatsRolledUp se marca en la misma transacción que la actualización del cliente.
func (uc *UseCase) RollupCustomerStats(ctx context.Context, now time.Time, res *job.Result) error {
	orders, err := uc.orders.ListPendingRollup(ctx)
	if err != nil {
		return fmt.Errorf("listar pedidos sin acumular: %w", err)
	}
	for _, o := range orders {
		log := uc.log.With().Str("order_id", o.ID).Str("customer_id", o.CustomerID).Logger()
		orphan := false
		err := uc.tx.RunWorkflow(ctx, func(repos repository.WorkflowRepos) error {
			flagged, err := repos.Orders.MarkStatsRolledUp(ctx, o.ID)
			if err != nil {
				return err
			}
			if !flagged {
				return errNoop
			}
			orderDate := now
			if o.DeliveredAt != nil {
				orderDate = *o.DeliveredAt
			}
			err = repos.Customers.ApplyOrderRollup(ctx, o.CustomerID, o.Total, orderDate, now)
			if errors.Is(err, domain.ErrNotFound) {
				// el cliente ya no existe: se marca igual para no reintentar cada hora
				orphan = true
				return nil
			}
			return err
		})
		if errors.Is(err, errNoop) {
			res.Inc(job.CountSkipped)
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("error acumulando métricas del cliente")
			res.Inc(job.CountErrors)
			continue
		}
		if orphan {
			log.Warn().Msg("pedido entregado con cliente inexistente")
			res.Inc(CountOrphanOrders)
			continue
		}
		res.Inc(CountCustomersRolledUp)
	}
	return nil
}
