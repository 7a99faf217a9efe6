package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Ventanas de las reglas de tareas.
const (
	ReminderLead    = time.Hour
	FollowUpHorizon = 24 * time.Hour
)

// Contadores del job task-reminders.
const (
	CountRemindersSent    = "reminders_sent"
	CountFollowUpsCreated = "follow_ups_created"
	CountTasksOverdue     = "tasks_overdue"
)

// TaskReminderUseCase recordatorios, seguimientos desde actividades y vencimiento de tareas.
type TaskReminderUseCase struct {
	tasks      repository.TaskRepository
	activities repository.ActivityRepository
	guard      *Guard
	notifier   notification.Notifier
	clock      clock.Clock
	log        *logger.Logger
}

// NewTaskReminderUseCase construye el caso de uso.
func NewTaskReminderUseCase(
	tasks repository.TaskRepository,
	activities repository.ActivityRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *TaskReminderUseCase {
	return &TaskReminderUseCase{
		tasks:      tasks,
		activities: activities,
		guard:      NewGuard(tasks),
		notifier:   notifier,
		clock:      clk,
		log:        log,
	}
}

// Job definición registrable del caso de uso.
func (uc *TaskReminderUseCase) Job() job.Job {
	return job.Job{
		Name:        JobTaskReminders,
		Schedule:    ScheduleTaskReminders,
		Description: "Recordatorios, tareas de seguimiento y tareas vencidas",
		Run:         uc.Run,
	}
}

// Run ejecuta las tres reglas. Un fallo de consulta en una no impide las demás.
func (uc *TaskReminderUseCase) Run(ctx context.Context, res *job.Result) error {
	now := uc.clock.Now()
	return errors.Join(
		uc.SendReminders(ctx, now, res),
		uc.CreateFollowUps(ctx, now, res),
		uc.MarkOverdue(ctx, now, res),
	)
}

// SendReminders notifica las tareas activas con ReminderDate <= now+1h y sin recordatorio enviado.
// El flag se reclama antes de notificar: un recordatorio nunca se envía dos veces.
func (uc *TaskReminderUseCase) SendReminders(ctx context.Context, now time.Time, res *job.Result) error {
	tasks, err := uc.tasks.ListDueReminders(ctx, now.Add(ReminderLead))
	if err != nil {
		return fmt.Errorf("listar recordatorios: %w", err)
	}
	for _, t := range tasks {
		if t.ReminderSent || !t.IsActive() {
			res.Inc(job.CountSkipped)
			continue
		}
		claimed, err := uc.tasks.ClaimReminder(ctx, t.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Str("task_id", t.ID).Msg("error marcando recordatorio")
			res.Inc(job.CountErrors)
			continue
		}
		if !claimed {
			res.Inc(job.CountSkipped)
			continue
		}
		res.Inc(CountRemindersSent)
		notify(ctx, uc.notifier, uc.log, res, notification.Request{
			UserID:    t.AssignedTo,
			CompanyID: t.CompanyID,
			Title:     "Recordatorio: " + t.Title,
			Message:   fmt.Sprintf("La tarea \"%s\" vence el %s.", t.Title, t.DueDate.Format(dateTimeLayout)),
			Type:      entity.NotificationTaskReminder,
			Priority:  t.Priority,
			Data:      map[string]any{"task_id": t.ID, "due_date": t.DueDate},
			RelatedTo: relatedTask,
			RelatedID: t.ID,
			SendEmail: true,
			Email: &notification.EmailContent{
				Rows: []notification.EmailRow{
					{Label: "Vence", Value: t.DueDate.Format(dateTimeLayout)},
					{Label: "Prioridad", Value: t.Priority},
				},
				ActionLabel: "Ver tarea",
				ActionPath:  "/tasks/" + t.ID,
			},
		})
	}
	return nil
}

// CreateFollowUps crea una tarea de seguimiento por cada actividad completada con
// resultado "Follow-up Required" y NextFollowUpDate <= now+24h.
func (uc *TaskReminderUseCase) CreateFollowUps(ctx context.Context, now time.Time, res *job.Result) error {
	acts, err := uc.activities.ListFollowUpsDue(ctx, now.Add(FollowUpHorizon))
	if err != nil {
		return fmt.Errorf("listar seguimientos: %w", err)
	}
	for _, a := range acts {
		due := now.Add(FollowUpHorizon)
		if a.NextFollowUpDate != nil {
			due = *a.NextFollowUpDate
		}
		reminder := due.Add(-ReminderLead)
		assignee := firstNonEmpty(a.AssignedTo, a.CreatedBy)
		task := &entity.Task{
			ID:             uuid.New().String(),
			CompanyID:      a.CompanyID,
			Title:          "Seguimiento: " + a.Subject,
			Description:    a.Description,
			Type:           entity.TaskTypeFollowUp,
			RelatedTo:      entity.RelatedActivity,
			RelatedID:      a.ID,
			AutomationKind: entity.KindFollowUp,
			AssignedTo:     assignee,
			CreatedBy:      assignee,
			DueDate:        due,
			Priority:       entity.PriorityMedium,
			Status:         entity.TaskStatusPending,
			ReminderDate:   &reminder,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		created, err := uc.guard.CreateOnce(ctx, task)
		if err != nil {
			uc.log.Error().Err(err).Str("activity_id", a.ID).Msg("error creando tarea de seguimiento")
			res.Inc(job.CountErrors)
			continue
		}
		if !created {
			res.Inc(job.CountSkipped)
			continue
		}
		res.Inc(CountFollowUpsCreated)
		notify(ctx, uc.notifier, uc.log, res, notification.Request{
			UserID:    assignee,
			CompanyID: a.CompanyID,
			Title:     "Nueva tarea de seguimiento",
			Message:   fmt.Sprintf("Seguimiento de \"%s\" para el %s.", a.Subject, due.Format(dateTimeLayout)),
			Type:      entity.NotificationTaskAssigned,
			Priority:  entity.PriorityMedium,
			Data:      map[string]any{"task_id": task.ID, "activity_id": a.ID},
			RelatedTo: relatedTask,
			RelatedID: task.ID,
		})
	}
	return nil
}

// MarkOverdue pasa a Overdue las tareas activas con DueDate < now y avisa al responsable.
func (uc *TaskReminderUseCase) MarkOverdue(ctx context.Context, now time.Time, res *job.Result) error {
	tasks, err := uc.tasks.ListPastDue(ctx, now)
	if err != nil {
		return fmt.Errorf("listar tareas vencidas: %w", err)
	}
	for _, t := range tasks {
		changed, err := uc.tasks.MarkOverdue(ctx, t.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Str("task_id", t.ID).Msg("error marcando tarea vencida")
			res.Inc(job.CountErrors)
			continue
		}
		if !changed {
			res.Inc(job.CountSkipped)
			continue
		}
		res.Inc(CountTasksOverdue)
		days := clock.DaysBetween(t.DueDate, now)
		notify(ctx, uc.notifier, uc.log, res, notification.Request{
			UserID:    t.AssignedTo,
			CompanyID: t.CompanyID,
			Title:     "Tarea vencida: " + t.Title,
			Message:   fmt.Sprintf("La tarea \"%s\" venció hace %d día(s).", t.Title, days),
			Type:      entity.NotificationTaskOverdue,
			Priority:  entity.PriorityHigh,
			Data:      map[string]any{"task_id": t.ID, "days_overdue": days},
			RelatedTo: relatedTask,
			RelatedID: t.ID,
			SendEmail: true,
			Email: &notification.EmailContent{
				Rows: []notification.EmailRow{
					{Label: "Venció", Value: t.DueDate.Format(dateTimeLayout)},
					{Label: "Días de retraso", Value: fmt.Sprintf("%d", days)},
				},
				ActionLabel: "Ver tarea",
				ActionPath:  "/tasks/" + t.ID,
			},
		})
	}
	return nil
}
