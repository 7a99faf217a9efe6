package automation

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Contadores del job low-stock.
const (
	CountLowStockItems    = "low_stock_items"
	CountCriticalOutItems = "critical_out_of_stock"
	CountCompaniesAlerted = "companies_alerted"
)

// LowStockUseCase alerta a managers/admins sobre productos bajo el punto de reorden.
type LowStockUseCase struct {
	products repository.ProductRepository
	users    repository.UserRepository
	notifier notification.Notifier
	log      *logger.Logger
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(
	products repository.ProductRepository,
	users repository.UserRepository,
	notifier notification.Notifier,
	log *logger.Logger,
) *LowStockUseCase {
	return &LowStockUseCase{products: products, users: users, notifier: notifier, log: log}
}

// Job definición registrable.
func (uc *LowStockUseCase) Job() job.Job {
	return job.Job{
		Name:        JobLowStock,
		Schedule:    ScheduleLowStock,
		Description: "Email agregado de productos con stock bajo por empresa",
		Run:         uc.Run,
	}
}

// Run agrupa los productos con stock bajo por empresa y envía un email por manager.
func (uc *LowStockUseCase) Run(ctx context.Context, res *job.Result) error {
	items, err := uc.products.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("listar stock bajo: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	byCompany := make(map[string][]*entity.Product)
	var order []string
	for _, p := range items {
		if !p.IsActive || !p.IsLowStock() {
			continue
		}
		if _, ok := byCompany[p.CompanyID]; !ok {
			order = append(order, p.CompanyID)
		}
		byCompany[p.CompanyID] = append(byCompany[p.CompanyID], p)
	}

	managers, err := managersByCompany(ctx, uc.users)
	if err != nil {
		return err
	}

	for _, companyID := range order {
		products := byCompany[companyID]
		res.Add(CountLowStockItems, len(products))

		content := notification.EmailContent{
			Urgency:        notification.UrgencyMedium,
			HighlightTitle: "Críticos sin existencias",
			ActionLabel:    "Ver inventario",
			ActionPath:     "/inventory?filter=low-stock",
		}
		for _, p := range products {
			item := notification.EmailItem{
				Title:   fmt.Sprintf("%s (%s)", p.Name, p.SKU),
				Detail:  fmt.Sprintf("%s / %s %s", p.Quantity.String(), p.ReorderLevel.String(), p.Unit),
				Urgency: notification.UrgencyMedium,
			}
			if p.Critical && p.IsOutOfStock() {
				item.Urgency = notification.UrgencyCritical
				content.Highlighted = append(content.Highlighted, item)
			}
			content.Items = append(content.Items, item)
		}
		priority := entity.PriorityMedium
		if len(content.Highlighted) > 0 {
			priority = entity.PriorityUrgent
			content.Urgency = notification.UrgencyCritical
			res.Add(CountCriticalOutItems, len(content.Highlighted))
		}

		recipients := managers[companyID]
		if len(recipients) == 0 {
			uc.log.Warn().Str("company_id", companyID).Msg("empresa sin managers para alerta de stock")
			res.Inc(countUnassigned)
			continue
		}
		res.Inc(CountCompaniesAlerted)
		for _, m := range recipients {
			notify(ctx, uc.notifier, uc.log, res, notification.Request{
				UserID:    m.ID,
				CompanyID: companyID,
				Title:     fmt.Sprintf("Stock bajo: %d producto(s)", len(products)),
				Message: fmt.Sprintf("%d producto(s) están en o por debajo del punto de reorden, %d crítico(s) agotado(s).",
					len(products), len(content.Highlighted)),
				Type:      entity.NotificationLowStock,
				Priority:  priority,
				Data:      map[string]any{"count": len(products), "critical_out": len(content.Highlighted)},
				SendEmail: true,
				ToEmail:   m.Email,
				ToName:    m.Name,
				Email:     &content,
			})
		}
	}
	return nil
}
