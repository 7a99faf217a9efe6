package entity

import "time"

// NotificationType tipos de notificación in-app; también selecciona la plantilla de email.
type NotificationType string

const (
	NotificationTaskReminder     NotificationType = "task_reminder"
	NotificationTaskOverdue      NotificationType = "task_overdue"
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationOverdueDigest    NotificationType = "overdue_digest"
	NotificationCustomerInactive NotificationType = "customer_inactive"
	NotificationInactiveDigest   NotificationType = "inactive_digest"
	NotificationLowStock         NotificationType = "low_stock"
	NotificationInvoiceOverdue   NotificationType = "invoice_overdue"
	NotificationLicenseExpiry    NotificationType = "license_expiry"
	NotificationQuoteExpired     NotificationType = "quote_expired"
	NotificationQuoteConverted   NotificationType = "quote_converted"
	NotificationOrderDelivered   NotificationType = "order_delivered"
)

// Notification notificación in-app para un usuario. ExpiresAt habilita la limpieza periódica.
type Notification struct {
	ID        string
	UserID    string
	CompanyID string
	Title     string
	Message   string
	Type      NotificationType
	Priority  string
	IsRead    bool
	Data      map[string]any
	RelatedTo string
	RelatedID string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
