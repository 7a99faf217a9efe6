package automation_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
	"github.com/jhoicas/erp-automation/pkg/money"
)

func newOverdueInvoices(f *fixture) *automation.OverdueInvoiceUseCase {
	return automation.NewOverdueInvoiceUseCase(f.store.Invoices(), f.store.Activities(), f.store.Tasks(), f.store.Users(),
		f.notifier, money.Default(), f.clock, logger.Nop())
}

func seedInvoice(t *testing.T, f *fixture, id, status string, daysAgo int) {
	t.Helper()
	today := clock.StartOfDay(now)
	require.NoError(t, f.store.Invoices().Create(context.Background(), &entity.Invoice{
		ID: id, CompanyID: companyID, InvoiceNumber: "FV-" + id, CustomerID: "C1", CreatedBy: salesID,
		Status: status, DueDate: today.AddDate(0, 0, -daysAgo), Total: decimal.NewFromInt(250000),
	}))
}

func invoiceStatus(t *testing.T, f *fixture, id string) string {
	t.Helper()
	inv, err := f.store.Invoices().GetByID(context.Background(), id)
	require.NoError(t, err)
	return inv.Status
}

func TestInvoiceTier(t *testing.T) {
	cases := map[int]string{
		1: notification.UrgencyLow, 6: notification.UrgencyLow,
		7: notification.UrgencyMedium, 13: notification.UrgencyMedium,
		14: notification.UrgencyHigh, 29: notification.UrgencyHigh,
		30: notification.UrgencyCritical, 120: notification.UrgencyCritical,
	}
	for days, want := range cases {
		assert.Equal(t, want, automation.InvoiceTier(days), "días %d", days)
	}
}

func TestOverdueInvoices_DiezDiasSinTareaUrgente(t *testing.T) {
	f := newFixture(t)
	seedInvoice(t, f, "I1", entity.InvoiceStatusSent, 10)
	uc := newOverdueInvoices(f)

	res := run(t, uc.Run)
	assert.Equal(t, entity.InvoiceStatusOverdue, invoiceStatus(t, f, "I1"))
	assert.Equal(t, 1, res.Count(automation.CountInvoicesMarked))
	assert.Empty(t, f.store.AllTasks())

	res = run(t, uc.Run)
	assert.Equal(t, 0, res.Count(automation.CountInvoicesMarked))
	assert.Equal(t, entity.InvoiceStatusOverdue, invoiceStatus(t, f, "I1"))
}

func TestOverdueInvoices_TreintaYCincoDiasEscala(t *testing.T) {
	f := newFixture(t)
	seedInvoice(t, f, "I2", entity.InvoiceStatusSent, 35)
	uc := newOverdueInvoices(f)

	run(t, uc.Run)
	run(t, uc.Run)

	assert.Equal(t, entity.InvoiceStatusOverdue, invoiceStatus(t, f, "I2"))
	tasks := activeTasks(f.store, entity.RelatedInvoice, "I2", entity.KindInvoiceCollection)
	require.Len(t, tasks, 1)
	assert.Equal(t, entity.PriorityUrgent, tasks[0].Priority)
	assert.Contains(t, tasks[0].Title, automation.TagUrgent)
	assert.Equal(t, salesID, tasks[0].AssignedTo)
	assert.Len(t, f.store.AllTasks(), 1)

	acts := f.store.AllActivities()
	require.Len(t, acts, 1)
	assert.Equal(t, "I2", acts[0].RelatedInvoiceID)
}

func TestOverdueInvoices_PocosDiasSigueEnviada(t *testing.T) {
	f := newFixture(t)
	seedInvoice(t, f, "I3", entity.InvoiceStatusSent, 3)
	seedInvoice(t, f, "I4", entity.InvoiceStatusPaid, 40)
	seedInvoice(t, f, "I5", entity.InvoiceStatusSent, 0)

	res := run(t, newOverdueInvoices(f).Run)
	assert.Equal(t, entity.InvoiceStatusSent, invoiceStatus(t, f, "I3"))
	assert.Equal(t, entity.InvoiceStatusPaid, invoiceStatus(t, f, "I4"))
	assert.Equal(t, 1, res.Count(automation.CountInvoicesOverdue))
	assert.Empty(t, f.store.AllTasks())
}

func TestOverdueInvoices_UnEmailPorManagerConTotal(t *testing.T) {
	f := newFixture(t)
	seedInvoice(t, f, "A", entity.InvoiceStatusSent, 8)
	seedInvoice(t, f, "B", entity.InvoiceStatusOverdue, 20)

	run(t, newOverdueInvoices(f).Run)
	reqs := f.notifier.ofType(entity.NotificationInvoiceOverdue)
	require.Len(t, reqs, 1)
	assert.Equal(t, managerID, reqs[0].UserID)
	assert.True(t, reqs[0].SendEmail)
	require.NotNil(t, reqs[0].Email)
	assert.Len(t, reqs[0].Email.Items, 2)
	assert.Equal(t, notification.UrgencyHigh, reqs[0].Email.Urgency)
	assert.Equal(t, money.Default().Format(decimal.NewFromInt(500000)), reqs[0].Email.Rows[1].Value)
}
