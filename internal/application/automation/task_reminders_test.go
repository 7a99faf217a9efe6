package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

func newReminders(f *fixture) *automation.TaskReminderUseCase {
	return automation.NewTaskReminderUseCase(f.store.Tasks(), f.store.Activities(), f.notifier, f.clock, logger.Nop())
}

func seedTask(t *testing.T, f *fixture, id string, due time.Time, reminder *time.Time, status string) {
	t.Helper()
	require.NoError(t, f.store.Tasks().Create(context.Background(), &entity.Task{
		ID: id, CompanyID: companyID, Title: "Llamar " + id, AssignedTo: salesID, Priority: entity.PriorityMedium,
		Status: status, DueDate: due, ReminderDate: reminder, CreatedAt: now.Add(-48 * time.Hour),
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recordatorios
// ──────────────────────────────────────────────────────────────────────────────

func TestSendReminders_LimiteUnaHora(t *testing.T) {
	f := newFixture(t)
	seedTask(t, f, "exact", now.Add(3*time.Hour), ptr(now.Add(time.Hour)), entity.TaskStatusPending)
	seedTask(t, f, "late", now.Add(3*time.Hour), ptr(now.Add(time.Hour+time.Millisecond)), entity.TaskStatusPending)
	seedTask(t, f, "done", now.Add(3*time.Hour), ptr(now), entity.TaskStatusCompleted)

	uc := newReminders(f)
	res := job.NewResult("test", now)
	require.NoError(t, uc.SendReminders(context.Background(), now, res))

	assert.Equal(t, 1, res.Count(automation.CountRemindersSent))
	sent := f.notifier.ofType(entity.NotificationTaskReminder)
	require.Len(t, sent, 1)
	assert.Equal(t, "exact", sent[0].RelatedID)
	assert.Equal(t, salesID, sent[0].UserID)

	late, _ := f.store.Tasks().GetByID(context.Background(), "late")
	assert.False(t, late.ReminderSent)
}

func TestSendReminders_NuncaSeReenvia(t *testing.T) {
	f := newFixture(t)
	seedTask(t, f, "t1", now.Add(2*time.Hour), ptr(now.Add(-10*time.Minute)), entity.TaskStatusInProgress)
	uc := newReminders(f)

	for i := 0; i < 3; i++ {
		require.NoError(t, uc.SendReminders(context.Background(), now, job.NewResult("test", now)))
		f.clock.Advance(time.Hour)
	}
	assert.Len(t, f.notifier.ofType(entity.NotificationTaskReminder), 1)

	task, err := f.store.Tasks().GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, task.ReminderSent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Seguimientos desde actividades
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateFollowUps_IdempotenteYLimite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	followUp := now.Add(24 * time.Hour)
	require.NoError(t, f.store.Activities().Create(ctx, &entity.Activity{
		ID: "act-1", CompanyID: companyID, Subject: "Demo", AssignedTo: salesID, Status: entity.ActivityStatusCompleted,
		Outcome: entity.OutcomeFollowUpRequired, NextFollowUpDate: &followUp,
	}))
	beyond := now.Add(24*time.Hour + time.Millisecond)
	require.NoError(t, f.store.Activities().Create(ctx, &entity.Activity{
		ID: "act-2", CompanyID: companyID, Subject: "Lejano", AssignedTo: salesID, Status: entity.ActivityStatusCompleted,
		Outcome: entity.OutcomeFollowUpRequired, NextFollowUpDate: &beyond,
	}))
	require.NoError(t, f.store.Activities().Create(ctx, &entity.Activity{
		ID: "act-3", CompanyID: companyID, Subject: "Abierta", AssignedTo: salesID, Status: entity.ActivityStatusScheduled,
		Outcome: entity.OutcomeFollowUpRequired, NextFollowUpDate: &followUp,
	}))

	uc := newReminders(f)
	res := job.NewResult("test", now)
	require.NoError(t, uc.CreateFollowUps(ctx, now, res))
	require.NoError(t, uc.CreateFollowUps(ctx, now, res))

	assert.Equal(t, 1, res.Count(automation.CountFollowUpsCreated))
	assert.Equal(t, 1, res.Count(job.CountSkipped))

	tasks := activeTasks(f.store, entity.RelatedActivity, "act-1", entity.KindFollowUp)
	require.Len(t, tasks, 1)
	assert.Equal(t, followUp, tasks[0].DueDate)
	assert.Equal(t, entity.PriorityMedium, tasks[0].Priority)
	assert.Equal(t, salesID, tasks[0].AssignedTo)
	assert.Empty(t, activeTasks(f.store, entity.RelatedActivity, "act-2", entity.KindFollowUp))
	assert.Empty(t, activeTasks(f.store, entity.RelatedActivity, "act-3", entity.KindFollowUp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tareas vencidas
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkOverdue_SoloHaciaAdelante(t *testing.T) {
	f := newFixture(t)
	seedTask(t, f, "past", now.Add(-time.Millisecond), nil, entity.TaskStatusPending)
	seedTask(t, f, "edge", now, nil, entity.TaskStatusInProgress)
	seedTask(t, f, "already", now.Add(-72*time.Hour), nil, entity.TaskStatusOverdue)

	uc := newReminders(f)
	res := job.NewResult("test", now)
	require.NoError(t, uc.MarkOverdue(context.Background(), now, res))
	require.NoError(t, uc.MarkOverdue(context.Background(), now, res))

	assert.Equal(t, 1, res.Count(automation.CountTasksOverdue))
	assert.Len(t, f.notifier.ofType(entity.NotificationTaskOverdue), 1)

	past, _ := f.store.Tasks().GetByID(context.Background(), "past")
	edge, _ := f.store.Tasks().GetByID(context.Background(), "edge")
	already, _ := f.store.Tasks().GetByID(context.Background(), "already")
	assert.Equal(t, entity.TaskStatusOverdue, past.Status)
	assert.Equal(t, entity.TaskStatusInProgress, edge.Status)
	assert.Equal(t, entity.TaskStatusOverdue, already.Status)
}

func TestTaskReminders_JobCompleto(t *testing.T) {
	f := newFixture(t)
	seedTask(t, f, "t1", now.Add(-time.Hour), ptr(now.Add(-2*time.Hour)), entity.TaskStatusPending)

	res := run(t, newReminders(f).Job().Run)
	assert.Equal(t, 1, res.Count(automation.CountRemindersSent))
	assert.Equal(t, 1, res.Count(automation.CountTasksOverdue))
	assert.Equal(t, 2, res.Count(job.CountNotified))
	assert.Equal(t, automation.JobTaskReminders, newReminders(f).Job().Name)
}
