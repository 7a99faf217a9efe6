package notification

import "github.com/jhoicas/erp-automation/internal/domain/entity"

// Niveles de urgencia usados para el color de los emails.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Request solicitud de notificación in-app con email opcional.
// Si SendEmail es true y ToEmail está vacío, el destinatario se resuelve por UserID.
type Request struct {
	UserID    string
	CompanyID string
	Title     string
	Message   string
	Type      entity.NotificationType
	Priority  string
	Data      map[string]any
	RelatedTo string
	RelatedID string

	SendEmail bool
	ToEmail   string
	ToName    string
	Email     *EmailContent
}

// EmailContent contenido variable de la plantilla.
type EmailContent struct {
	Urgency     string
	Intro       string
	Rows        []EmailRow
	Items       []EmailItem
	Highlighted []EmailItem
	// HighlightTitle encabezado de la sublista destacada.
	HighlightTitle string
	ActionLabel    string
	ActionPath     string
}

// EmailRow par etiqueta/valor del resumen.
type EmailRow struct {
	Label string
	Value string
}

// EmailItem línea de la tabla de detalle.
type EmailItem struct {
	Title   string
	Detail  string
	Amount  string
	Urgency string
}

// EmailData datos completos que recibe la plantilla.
type EmailData struct {
	RecipientName string
	CompanyName   string
	Title         string
	Message       string
	Priority      string
	ActionURL     string
	Content       EmailContent
}

// UrgencyForPriority traduce una prioridad de tarea a urgencia de email.
func UrgencyForPriority(priority string) string {
	switch priority {
	case entity.PriorityUrgent:
		return UrgencyCritical
	case entity.PriorityHigh:
		return UrgencyHigh
	case entity.PriorityMedium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
