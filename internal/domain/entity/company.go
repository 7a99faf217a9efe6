package entity

import "time"

// Planes de licencia.
const (
	LicensePlanTrial      = "trial"
	LicensePlanBasic      = "basic"
	LicensePlanPro        = "pro"
	LicensePlanEnterprise = "enterprise"
)

// Company representa una organización/tenant del sistema.
// Solo lectura para la regla de vencimiento de licencia.
type Company struct {
	ID            string
	Name          string
	Email         string
	Status        string // active, suspended, inactive
	LicenseExpiry *time.Time
	LicensePlan   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
