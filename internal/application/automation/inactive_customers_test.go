package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

func newInactive(f *fixture) *automation.InactiveCustomerUseCase {
	return automation.NewInactiveCustomerUseCase(f.store.Customers(), f.store.Users(), f.store.Tasks(), f.notifier, f.clock, logger.Nop())
}

func seedCustomer(t *testing.T, f *fixture, c *entity.Customer) {
	t.Helper()
	if c.CompanyID == "" {
		c.CompanyID = companyID
	}
	if c.Status == "" {
		c.Status = entity.CustomerStatusActive
	}
	require.NoError(t, f.store.Customers().Create(context.Background(), c))
}

func TestInactiveCustomers_DosNivelesIndependientes(t *testing.T) {
	f := newFixture(t)
	seedCustomer(t, f, &entity.Customer{
		ID: "C1", Name: "Ferretería Central", AssignedTo: salesID,
		LastOrderDate: ptr(now.AddDate(0, 0, -31)), LastContactDate: ptr(now.AddDate(0, 0, -61)),
	})

	res := run(t, newInactive(f).Run)

	order := activeTasks(f.store, entity.RelatedCustomer, "C1", entity.KindStaleOrder)
	require.Len(t, order, 1)
	assert.Equal(t, entity.PriorityMedium, order[0].Priority)
	assert.Contains(t, order[0].Title, automation.TagNoRecentOrder)
	assert.Equal(t, now.Add(48*time.Hour), order[0].DueDate)
	assert.Equal(t, salesID, order[0].AssignedTo)

	contact := activeTasks(f.store, entity.RelatedCustomer, "C1", entity.KindStaleContact)
	require.Len(t, contact, 1)
	assert.Equal(t, entity.PriorityHigh, contact[0].Priority)
	assert.Contains(t, contact[0].Title, automation.TagNoRecentContact)
	assert.Equal(t, now.Add(24*time.Hour), contact[0].DueDate)

	assert.Empty(t, activeTasks(f.store, entity.RelatedCustomer, "C1", entity.KindHighRisk))
	assert.Equal(t, 2, res.Count("notified"))
}

func TestInactiveCustomers_IdempotenteEntreEjecuciones(t *testing.T) {
	f := newFixture(t)
	seedCustomer(t, f, &entity.Customer{
		ID: "C2", Name: "Riesgo SAS", AssignedTo: salesID, LastContactDate: ptr(now.AddDate(0, 0, -91)),
	})
	uc := newInactive(f)

	run(t, uc.Run)
	res := run(t, uc.Run)

	// sin pedidos nunca + 91 días sin contacto: los tres niveles, una sola vez
	assert.Len(t, activeTasks(f.store, entity.RelatedCustomer, "C2", entity.KindStaleOrder), 1)
	assert.Len(t, activeTasks(f.store, entity.RelatedCustomer, "C2", entity.KindStaleContact), 1)
	risk := activeTasks(f.store, entity.RelatedCustomer, "C2", entity.KindHighRisk)
	require.Len(t, risk, 1)
	assert.Equal(t, entity.PriorityUrgent, risk[0].Priority)
	assert.Equal(t, now.Add(4*time.Hour), risk[0].DueDate)
	assert.Len(t, f.store.AllTasks(), 3)
	assert.Equal(t, 3, res.Count("skipped"))

	// solo el nivel de alto riesgo pide email
	var emails int
	for _, r := range f.notifier.ofType(entity.NotificationCustomerInactive) {
		if r.SendEmail {
			emails++
		}
	}
	assert.Equal(t, 1, emails)
}

func TestInactiveCustomers_Exclusiones(t *testing.T) {
	f := newFixture(t)
	seedCustomer(t, f, &entity.Customer{ID: "recent", AssignedTo: salesID,
		LastOrderDate: ptr(now.AddDate(0, 0, -29)), LastContactDate: ptr(now.AddDate(0, 0, -10))})
	seedCustomer(t, f, &entity.Customer{ID: "never-contacted", AssignedTo: salesID, LastOrderDate: ptr(now.AddDate(0, 0, -1))})
	seedCustomer(t, f, &entity.Customer{ID: "prospect", Status: entity.CustomerStatusProspect, AssignedTo: salesID})
	seedCustomer(t, f, &entity.Customer{ID: "edge", AssignedTo: salesID, LastOrderDate: ptr(now.AddDate(0, 0, -30)),
		LastContactDate: ptr(now.AddDate(0, 0, -60))})

	run(t, newInactive(f).Run)
	assert.Empty(t, f.store.AllTasks())
}

func TestInactiveCustomers_SinResponsableUsaManager(t *testing.T) {
	f := newFixture(t)
	seedCustomer(t, f, &entity.Customer{ID: "orphan", LastOrderDate: ptr(now.AddDate(0, 0, -45)), LastContactDate: ptr(now)})

	run(t, newInactive(f).Run)
	tasks := activeTasks(f.store, entity.RelatedCustomer, "orphan", entity.KindStaleOrder)
	require.Len(t, tasks, 1)
	assert.Equal(t, managerID, tasks[0].AssignedTo)
}
