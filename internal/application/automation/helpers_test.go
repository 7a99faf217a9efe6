package automation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/infrastructure/memory"
	"github.com/jhoicas/erp-automation/pkg/clock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "company-1"
	managerID = "manager-1"
	salesID   = "sales-1"
)

// now martes 10/03/2026 09:00 UTC.
var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []notification.Request
}

func (n *recordingNotifier) Send(_ context.Context, req notification.Request) (*entity.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
	return &entity.Notification{ID: req.RelatedID, UserID: req.UserID, Type: req.Type}, nil
}

func (n *recordingNotifier) ofType(t entity.NotificationType) []notification.Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Request
	for _, r := range n.reqs {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

type fixture struct {
	store    *memory.Store
	clock    *clock.Fixed
	notifier *recordingNotifier
}

// newFixture store con una empresa, un manager y un vendedor.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Companies().Create(ctx, &entity.Company{ID: companyID, Name: "ACME", Status: "active"}))
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: managerID, CompanyID: companyID, Email: "gerente@acme.co", Name: "Gerente", Role: entity.RoleManager, Status: "active",
	}))
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: salesID, CompanyID: companyID, Email: "ventas@acme.co", Name: "Ventas", Role: entity.RoleSales, Status: "active",
	}))
	return &fixture{store: store, clock: clock.NewFixed(now), notifier: &recordingNotifier{}}
}

func run(t *testing.T, fn job.Func) *job.Result {
	t.Helper()
	res := job.NewResult("test", now)
	require.NoError(t, fn(context.Background(), res))
	return res
}

func ptr(t time.Time) *time.Time { return &t }

func activeTasks(store *memory.Store, relatedTo, relatedID string, kind entity.AutomationKind) []*entity.Task {
	var out []*entity.Task
	for _, task := range store.AllTasks() {
		if task.IsActive() && task.RelatedTo == relatedTo && task.RelatedID == relatedID && task.AutomationKind == kind {
			out = append(out, task)
		}
	}
	return out
}
