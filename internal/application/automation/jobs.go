package automation

// Nombres de los jobs de automatización.
const (
	JobTaskReminders       = "task-reminders"
	JobManagerDigest       = "manager-digest"
	JobInactiveCustomers   = "inactive-customers"
	JobInactiveDigest      = "inactive-digest"
	JobLowStock            = "low-stock"
	JobOverdueInvoices     = "overdue-invoices"
	JobLicenseExpiry       = "license-expiry"
	JobNotificationCleanup = "notification-cleanup"
)

// Cadencias por defecto (cron de 5 campos).
const (
	ScheduleTaskReminders       = "0 * * * *"
	ScheduleManagerDigest       = "0 9 * * *"
	ScheduleInactiveCustomers   = "0 8 * * *"
	ScheduleInactiveDigest      = "0 9 * * 1"
	ScheduleLowStock            = "0 7 * * *"
	ScheduleOverdueInvoices     = "0 10 * * *"
	ScheduleLicenseExpiry       = "0 11 * * *"
	ScheduleNotificationCleanup = "0 2 * * *"
)
