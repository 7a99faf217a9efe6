package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/application/workflow"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/internal/infrastructure/memory"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "company-1"
	sellerID  = "seller-1"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []notification.Request
}

func (n *recordingNotifier) Send(_ context.Context, req notification.Request) (*entity.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
	return &entity.Notification{UserID: req.UserID, Type: req.Type}, nil
}

func (n *recordingNotifier) count(t entity.NotificationType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, r := range n.reqs {
		if r.Type == t {
			c++
		}
	}
	return c
}

// failingActivities hace fallar la escritura de actividades dentro de la transacción.
type failingActivities struct {
	repository.ActivityRepository
}

func (failingActivities) Create(context.Context, *entity.Activity) error {
	return errors.New("disco lleno")
}

type faultyTx struct {
	inner repository.WorkflowTxRunner
}

func (f faultyTx) RunWorkflow(ctx context.Context, fn func(repos repository.WorkflowRepos) error) error {
	return f.inner.RunWorkflow(ctx, func(repos repository.WorkflowRepos) error {
		repos.Activities = failingActivities{repos.Activities}
		return fn(repos)
	})
}

type fixture struct {
	store    *memory.Store
	clock    *clock.Fixed
	notifier *recordingNotifier
	uc       *workflow.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{store: store, clock: clock.NewFixed(now), notifier: &recordingNotifier{}}
	f.uc = workflow.NewUseCase(store, store.Quotes(), store.Orders(), store.Activities(), f.notifier, f.clock, logger.Nop())
	return f
}

func run(t *testing.T, f *fixture) *job.Result {
	t.Helper()
	res := job.NewResult(workflow.JobName, f.clock.Now())
	require.NoError(t, f.uc.Run(context.Background(), res))
	return res
}

func seedQuote(t *testing.T, f *fixture, id, status string, validUntil time.Time, total int64) {
	t.Helper()
	require.NoError(t, f.store.Quotes().Create(context.Background(), &entity.Quote{
		ID: id, CompanyID: companyID, QuoteNumber: "COT-" + id, CustomerID: "C1", CreatedBy: sellerID,
		Status: status, ValidUntil: validUntil, Total: decimal.NewFromInt(total),
		Items: []entity.LineItem{{Description: "Servicio", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(total), Total: decimal.NewFromInt(total)}},
	}))
}

func ordersForQuote(f *fixture, quoteID string) []*entity.SalesOrder {
	var out []*entity.SalesOrder
	for _, o := range f.store.AllOrders() {
		if o.QuoteID == quoteID {
			out = append(out, o)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversión de cotizaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_ExactamenteUnPedido(t *testing.T) {
	f := newFixture(t)
	seedQuote(t, f, "Q1", entity.QuoteStatusAccepted, now.AddDate(0, 0, 10), 100)

	for i := 0; i < 3; i++ {
		run(t, f)
		f.clock.Advance(time.Hour)
	}

	orders := ordersForQuote(f, "Q1")
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "C1", o.CustomerID)
	assert.Equal(t, "SO-2026-0001", o.OrderNumber)
	assert.Len(t, o.Items, 1)

	q, err := f.store.Quotes().GetByID(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusAccepted, q.Status, "la cotización no se modifica")

	var acts []*entity.Activity
	for _, a := range f.store.AllActivities() {
		if a.RelatedOrderID == o.ID {
			acts = append(acts, a)
		}
	}
	require.Len(t, acts, 1)
	assert.Equal(t, "Q1", acts[0].RelatedQuoteID)
	assert.Equal(t, 1, f.notifier.count(entity.NotificationQuoteConverted))
}

func TestConvert_SecuenciaPorEmpresaYReintento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// un pedido manual ocupa la secuencia siguiente al conteo
	require.NoError(t, f.store.Orders().Create(ctx, &entity.SalesOrder{CompanyID: companyID, OrderNumber: "SO-2026-0002", Status: entity.OrderStatusPending}))
	seedQuote(t, f, "Q2", entity.QuoteStatusAccepted, now.AddDate(0, 0, 10), 50)

	res := run(t, f)
	assert.Equal(t, 1, res.Count(workflow.CountQuotesConverted))
	orders := ordersForQuote(f, "Q2")
	require.Len(t, orders, 1)
	assert.Equal(t, "SO-2026-0003", orders[0].OrderNumber)
}

func TestConvert_FalloDeActividadRevierteElPedido(t *testing.T) {
	f := newFixture(t)
	f.uc = workflow.NewUseCase(faultyTx{inner: f.store}, f.store.Quotes(), f.store.Orders(), f.store.Activities(), f.notifier, f.clock, logger.Nop())
	seedQuote(t, f, "Q3", entity.QuoteStatusAccepted, now.AddDate(0, 0, 10), 70)

	res := run(t, f)
	assert.Equal(t, 1, res.Count(job.CountErrors))
	assert.Empty(t, ordersForQuote(f, "Q3"))
	assert.Equal(t, 0, f.notifier.count(entity.NotificationQuoteConverted))
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "SO-2026-0001", workflow.OrderNumber(2026, 1))
	assert.Equal(t, "SO-2026-0420", workflow.OrderNumber(2026, 420))
	assert.Equal(t, "SO-2026-12345", workflow.OrderNumber(2026, 12345))
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento de cotizaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestExpireQuotes_UnaSolaVez(t *testing.T) {
	f := newFixture(t)
	seedQuote(t, f, "old-draft", entity.QuoteStatusDraft, now.Add(-time.Millisecond), 10)
	seedQuote(t, f, "old-sent", entity.QuoteStatusSent, now.AddDate(0, 0, -3), 10)
	seedQuote(t, f, "edge", entity.QuoteStatusSent, now, 10)
	seedQuote(t, f, "accepted", entity.QuoteStatusAccepted, now.AddDate(0, 0, -3), 10)

	res := run(t, f)
	assert.Equal(t, 2, res.Count(workflow.CountQuotesExpired))
	res = run(t, f)
	assert.Equal(t, 0, res.Count(workflow.CountQuotesExpired))

	status := func(id string) string {
		q, err := f.store.Quotes().GetByID(context.Background(), id)
		require.NoError(t, err)
		return q.Status
	}
	assert.Equal(t, entity.QuoteStatusExpired, status("old-draft"))
	assert.Equal(t, entity.QuoteStatusExpired, status("old-sent"))
	assert.Equal(t, entity.QuoteStatusSent, status("edge"))
	assert.Equal(t, entity.QuoteStatusAccepted, status("accepted"))
	assert.Equal(t, 2, f.notifier.count(entity.NotificationQuoteExpired))
}

// ──────────────────────────────────────────────────────────────────────────────
// Entrega y cascadas
// ──────────────────────────────────────────────────────────────────────────────

func TestDelivery_CascadaUnaVezPorPedido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Customers().Create(ctx, &entity.Customer{
		ID: "C1", CompanyID: companyID, Status: entity.CustomerStatusActive,
		TotalOrders: 2, TotalValue: decimal.NewFromInt(300), AverageOrderValue: decimal.NewFromInt(150),
	}))
	dispatched := now.Add(-25 * time.Hour)
	require.NoError(t, f.store.Orders().Create(ctx, &entity.SalesOrder{
		ID: "O1", CompanyID: companyID, OrderNumber: "SO-2026-0001", CustomerID: "C1", CreatedBy: sellerID,
		Status: entity.OrderStatusDispatched, DispatchedAt: &dispatched, Total: decimal.NewFromInt(100),
	}))
	recent := now.Add(-20 * time.Hour)
	require.NoError(t, f.store.Orders().Create(ctx, &entity.SalesOrder{
		ID: "O2", CompanyID: companyID, OrderNumber: "SO-2026-0002", CustomerID: "C1",
		Status: entity.OrderStatusDispatched, DispatchedAt: &recent, Total: decimal.NewFromInt(999),
	}))
	require.NoError(t, f.store.Activities().Create(ctx, &entity.Activity{
		ID: "A1", CompanyID: companyID, Subject: "Entregar", Status: entity.ActivityStatusScheduled, RelatedOrderID: "O1",
	}))
	require.NoError(t, f.store.Activities().Create(ctx, &entity.Activity{
		ID: "A2", CompanyID: companyID, Subject: "Cancelada", Status: entity.ActivityStatusCancelled, RelatedOrderID: "O1",
	}))

	res := run(t, f)
	assert.Equal(t, 1, res.Count(workflow.CountOrdersDelivered))
	assert.Equal(t, 1, res.Count(workflow.CountCustomersRolledUp))

	// varias ejecuciones dentro de la misma ventana de 24h no duplican la acumulación
	for i := 0; i < 3; i++ {
		f.clock.Advance(30 * time.Minute)
		run(t, f)
	}

	o1, err := f.store.Orders().GetByID(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, o1.Status)
	require.NotNil(t, o1.DeliveredAt)
	assert.Equal(t, now, *o1.DeliveredAt)
	assert.True(t, o1.StatsRolledUp)

	a1, _ := f.store.Activities().GetByID(ctx, "A1")
	a2, _ := f.store.Activities().GetByID(ctx, "A2")
	assert.Equal(t, entity.ActivityStatusCompleted, a1.Status)
	assert.Equal(t, entity.ActivityStatusCancelled, a2.Status)

	c1, err := f.store.Customers().GetByID(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 3, c1.TotalOrders)
	assert.True(t, c1.TotalValue.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "133.33", c1.AverageOrderValue.StringFixed(2))
	require.NotNil(t, c1.LastOrderDate)
	assert.Equal(t, now, *c1.LastOrderDate)

	assert.Equal(t, 1, f.notifier.count(entity.NotificationOrderDelivered))
}

func TestRollup_ClienteInexistenteSeMarca(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	delivered := now.Add(-time.Hour)
	require.NoError(t, f.store.Orders().Create(ctx, &entity.SalesOrder{
		ID: "O9", CompanyID: companyID, OrderNumber: "SO-2026-0009", CustomerID: "ghost",
		Status: entity.OrderStatusDelivered, DeliveredAt: &delivered, Total: decimal.NewFromInt(10),
	}))

	res := run(t, f)
	assert.Equal(t, 1, res.Count(workflow.CountOrphanOrders))
	res = run(t, f)
	assert.Equal(t, 0, res.Count(workflow.CountOrphanOrders))

	o, _ := f.store.Orders().GetByID(ctx, "O9")
	assert.True(t, o.StatsRolledUp)
}
