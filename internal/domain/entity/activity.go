package entity

import "time"

// Estados de una actividad.
const (
	ActivityStatusScheduled  = "Scheduled"
	ActivityStatusInProgress = "InProgress"
	ActivityStatusCompleted  = "Completed"
	ActivityStatusCancelled  = "Cancelled"
)

// Tipos de actividad registrados por el sistema.
const (
	ActivityTypeCall     = "Call"
	ActivityTypeMeeting  = "Meeting"
	ActivityTypeEmail    = "Email"
	ActivityTypeNote     = "Note"
	ActivityTypeQuote    = "Quote"
	ActivityTypeOrder    = "Order"
	ActivityTypeInvoice  = "Invoice"
	ActivityTypeDelivery = "Delivery"
)

// OutcomeFollowUpRequired resultado que dispara la creación de una tarea de seguimiento.
const OutcomeFollowUpRequired = "Follow-up Required"

// Activity entrada del historial de actividades (append-only).
// Solo Status puede avanzar de Scheduled/InProgress a Completed.
type Activity struct {
	ID               string
	CompanyID        string
	Type             string
	Subject          string
	Description      string
	AssignedTo       string
	CreatedBy        string
	Status           string
	Outcome          string
	NextFollowUpDate *time.Time
	CompletedDate    *time.Time
	CustomerID       string
	RelatedOrderID   string
	RelatedQuoteID   string
	RelatedInvoiceID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
