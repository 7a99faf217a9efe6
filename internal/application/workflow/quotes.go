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

// maxNumberAttempts reintentos ante choque del número de pedido.
const maxNumberAttempts = 3

// OrderNumber número de pedido SO-{año}-{secuencia de 4 dígitos}.
func OrderNumber(year, seq int) string {
	return fmt.Sprintf("SO-%d-%04d", year, seq)
}

// ExpireQuotes pasa a expired las cotizaciones draft/sent con ValidUntil < now.
// El cambio de estado y la actividad van en la misma transacción.
func (uc *UseCase) ExpireQuotes(ctx context.Context, now time.Time, res *job.Result) error {
	quotes, err := uc.quotes.ListExpirable(ctx, now)
	if err != nil {
		return fmt.Errorf("listar cotizaciones por vencer: %w", err)
	}
	for _, q := range quotes {
		log := uc.log.With().Str("quote_id", q.ID).Logger()
		err := uc.tx.RunWorkflow(ctx, func(repos repository.WorkflowRepos) error {
			changed, err := repos.Quotes.MarkExpired(ctx, q.ID, now)
			if err != nil {
				return err
			}
			if !changed {
				return errNoop
			}
			done := now
			return repos.Activities.Create(ctx, &entity.Activity{
				ID:             uuid.New().String(),
				CompanyID:      q.CompanyID,
				Type:           entity.ActivityTypeQuote,
				Subject:        fmt.Sprintf("Cotización %s vencida", q.QuoteNumber),
				Description:    fmt.Sprintf("Vigente hasta %s, sin respuesta del cliente.", q.ValidUntil.Format("02/01/2006")),
				AssignedTo:     q.CreatedBy,
				CreatedBy:      q.CreatedBy,
				Status:         entity.ActivityStatusCompleted,
				CompletedDate:  &done,
				CustomerID:     q.CustomerID,
				RelatedQuoteID: q.ID,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		})
		if errors.Is(err, errNoop) {
			res.Inc(job.CountSkipped)
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("error venciendo cotización")
			res.Inc(job.CountErrors)
			continue
		}
		res.Inc(CountQuotesExpired)
		uc.notify(ctx, res, notification.Request{
			UserID:    q.CreatedBy,
			CompanyID: q.CompanyID,
			Title:     fmt.Sprintf("Cotización %s vencida", q.QuoteNumber),
			Message:   fmt.Sprintf("La cotización %s venció el %s sin ser aceptada.", q.QuoteNumber, q.ValidUntil.Format("02/01/2006")),
			Type:      entity.NotificationQuoteExpired,
			Priority:  entity.PriorityLow,
			Data:      map[string]any{"quote_id": q.ID, "quote_number": q.QuoteNumber},
			RelatedTo: entity.RelatedQuote,
			RelatedID: q.ID,
		})
	}
	return nil
}

// ConvertAcceptedQuotes crea un pedido por cada cotización aceptada que aún no lo tenga.
// Pedido y actividad se escriben en una transacción; la cotización no se modifica.
func (uc *UseCase) ConvertAcceptedQuotes(ctx context.Context, now time.Time, res *job.Result) error {
	quotes, err := uc.quotes.ListAccepted(ctx)
	if err != nil {
		return fmt.Errorf("listar cotizaciones aceptadas: %w", err)
	}
	for _, q := range quotes {
		exists, err := uc.orders.ExistsForQuote(ctx, q.ID)
		if err != nil {
			uc.log.Error().Err(err).Str("quote_id", q.ID).Msg("error verificando pedido de la cotización")
			res.Inc(job.CountErrors)
			continue
		}
		if exists {
			res.Inc(job.CountSkipped)
			continue
		}

		order, err := uc.convert(ctx, q, now)
		if errors.Is(err, errNoop) {
			res.Inc(job.CountSkipped)
			continue
		}
		if err != nil {
			res.Inc(job.CountErrors)
			continue
		}
		res.Inc(CountQuotesConverted)
		uc.notify(ctx, res, notification.Request{
			UserID:    q.CreatedBy,
			CompanyID: q.CompanyID,
			Title:     fmt.Sprintf("Pedido %s creado", order.OrderNumber),
			Message:   fmt.Sprintf("La cotización %s se convirtió en el pedido %s.", q.QuoteNumber, order.OrderNumber),
			Type:      entity.NotificationQuoteConverted,
			Priority:  entity.PriorityMedium,
			Data:      map[string]any{"quote_id": q.ID, "order_id": order.ID, "order_number": order.OrderNumber},
			RelatedTo: entity.RelatedOrder,
			RelatedID: order.ID,
		})
	}
	return nil
}

// convert ejecuta la transacción pedido + actividad. Ante choque de número reintenta
// con la siguiente secuencia; si el choque es por la cotización devuelve errNoop.
func (uc *UseCase) convert(ctx context.Context, q *entity.Quote, now time.Time) (*entity.SalesOrder, error) {
	log := uc.log.With().Str("quote_id", q.ID).Logger()
	var order *entity.SalesOrder
	var err error
	var stage string
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		stage = "order_created"
		err = uc.tx.RunWorkflow(ctx, func(repos repository.WorkflowRepos) error {
			exists, err := repos.Orders.ExistsForQuote(ctx, q.ID)
			if err != nil {
				return err
			}
			if exists {
				return errNoop
			}
			count, err := repos.Orders.CountByCompany(ctx, q.CompanyID)
			if err != nil {
				return err
			}
			order = &entity.SalesOrder{
				ID:          uuid.New().String(),
				CompanyID:   q.CompanyID,
				OrderNumber: OrderNumber(now.Year(), count+1+attempt),
				QuoteID:     q.ID,
				CustomerID:  q.CustomerID,
				CreatedBy:   q.CreatedBy,
				Status:      entity.OrderStatusPending,
				Items:       append([]entity.LineItem(nil), q.Items...),
				Subtotal:    q.Subtotal,
				TaxTotal:    q.TaxTotal,
				Total:       q.Total,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repos.Orders.Create(ctx, order); err != nil {
				return err
			}

			stage = "activity_logged"
			done := now
			return repos.Activities.Create(ctx, &entity.Activity{
				ID:             uuid.New().String(),
				CompanyID:      q.CompanyID,
				Type:           entity.ActivityTypeOrder,
				Subject:        fmt.Sprintf("Pedido %s creado desde cotización %s", order.OrderNumber, q.QuoteNumber),
				AssignedTo:     q.CreatedBy,
				CreatedBy:      q.CreatedBy,
				Status:         entity.ActivityStatusCompleted,
				CompletedDate:  &done,
				CustomerID:     q.CustomerID,
				RelatedOrderID: order.ID,
				RelatedQuoteID: q.ID,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		})
		if errors.Is(err, errNoop) {
			return nil, errNoop
		}
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) || stage != "order_created" {
			break
		}
		exists, existsErr := uc.orders.ExistsForQuote(ctx, q.ID)
		if existsErr == nil && exists {
			return nil, errNoop
		}
		log.Warn().Int("attempt", attempt+1).Str("order_number", order.OrderNumber).Msg("número de pedido en uso, reintentando")
	}
	log.Error().Err(err).Str("stage", stage).Msg("error convirtiendo cotización; transacción revertida")
	return nil, err
}
