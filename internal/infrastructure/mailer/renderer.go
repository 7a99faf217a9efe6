package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var _ notification.EmailRenderer = (*Renderer)(nil)

// urgencyColors color de acento por nivel de urgencia (estilos inline).
var urgencyColors = map[string]string{
	notification.UrgencyLow:      "#2563eb",
	notification.UrgencyMedium:   "#d97706",
	notification.UrgencyHigh:     "#ea580c",
	notification.UrgencyCritical: "#dc2626",
}

// templateByType plantilla de cuerpo por tipo de notificación.
var templateByType = map[entity.NotificationType]string{
	entity.NotificationTaskReminder:     "alert",
	entity.NotificationTaskOverdue:      "alert",
	entity.NotificationTaskAssigned:     "alert",
	entity.NotificationCustomerInactive: "alert",
	entity.NotificationQuoteExpired:     "alert",
	entity.NotificationQuoteConverted:   "alert",
	entity.NotificationOrderDelivered:   "alert",
	entity.NotificationLicenseExpiry:    "alert",
	entity.NotificationOverdueDigest:    "digest",
	entity.NotificationInactiveDigest:   "digest",
	entity.NotificationLowStock:         "list",
	entity.NotificationInvoiceOverdue:   "list",
}

// Renderer renderiza los emails con html/template sobre las plantillas embebidas.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parsea las plantillas embebidas.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("email").Funcs(template.FuncMap{
		"color": colorFor,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render ejecuta layout.html con el cuerpo correspondiente al tipo.
func (r *Renderer) Render(notifType entity.NotificationType, data notification.EmailData) (string, error) {
	body, ok := templateByType[notifType]
	if !ok {
		body = "alert"
	}
	view := struct {
		notification.EmailData
		Body string
	}{EmailData: data, Body: body}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", fmt.Errorf("render %s: %w", notifType, err)
	}
	return buf.String(), nil
}

func colorFor(urgency string) string {
	if c, ok := urgencyColors[urgency]; ok {
		return c
	}
	return urgencyColors[notification.UrgencyLow]
}
