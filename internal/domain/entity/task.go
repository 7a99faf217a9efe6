package entity

import "time"

// Estados de una tarea.
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "InProgress"
	TaskStatusCompleted  = "Completed"
	TaskStatusCancelled  = "Cancelled"
	TaskStatusOverdue    = "Overdue"
)

// Entidades a las que se puede vincular una tarea (relatedTo).
const (
	RelatedLead        = "Lead"
	RelatedOpportunity = "Opportunity"
	RelatedCustomer    = "Customer"
	RelatedQuote       = "Quote"
	RelatedOrder       = "Order"
	RelatedInvoice     = "Invoice"
	RelatedActivity    = "Activity"
	RelatedGeneral     = "General"
)

// Prioridades compartidas por tareas y notificaciones.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// AutomationKind identifica qué regla automática creó la tarea.
// Vacío para tareas creadas por usuarios. Junto con (RelatedTo, RelatedID)
// es la llave del guard de idempotencia.
type AutomationKind string

const (
	KindNone              AutomationKind = ""
	KindFollowUp          AutomationKind = "FollowUp"
	KindStaleOrder        AutomationKind = "StaleOrder"
	KindStaleContact      AutomationKind = "StaleContact"
	KindHighRisk          AutomationKind = "HighRisk"
	KindInvoiceCollection AutomationKind = "InvoiceCollection"
)

// Tipos de tarea.
const (
	TaskTypeCall     = "Call"
	TaskTypeEmail    = "Email"
	TaskTypeFollowUp = "Follow-up"
	TaskTypeMeeting  = "Meeting"
	TaskTypeOther    = "Other"
)

// Task representa una tarea del CRM asignada a un usuario.
// Nunca se elimina: solo cambia de estado.
type Task struct {
	ID             string
	CompanyID      string
	Title          string
	Description    string
	Type           string
	RelatedTo      string
	RelatedID      string
	AutomationKind AutomationKind
	AssignedTo     string
	CreatedBy      string
	DueDate        time.Time
	Priority       string
	Status         string
	ReminderDate   *time.Time
	ReminderSent   bool
	IsRecurring    bool
	NextDueDate    *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive indica si la tarea sigue sin resolver (Pending o InProgress).
func (t *Task) IsActive() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}

// ActiveTaskStatuses estados considerados "sin resolver".
var ActiveTaskStatuses = []string{TaskStatusPending, TaskStatusInProgress}
