package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

func TestCleanup_EliminaVencidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expired := now.Add(-time.Minute)
	valid := now.Add(time.Minute)
	require.NoError(t, f.store.Notifications().Create(ctx, &entity.Notification{UserID: salesID, Title: "vieja", ExpiresAt: &expired}))
	require.NoError(t, f.store.Notifications().Create(ctx, &entity.Notification{UserID: salesID, Title: "vigente", ExpiresAt: &valid}))

	res := run(t, automation.NewCleanupUseCase(f.store.Notifications(), f.clock).Run)
	assert.Equal(t, 1, res.Count(automation.CountNotificationsDeleted))
	left := f.store.AllNotifications()
	require.Len(t, left, 1)
	assert.Equal(t, "vigente", left[0].Title)
}
