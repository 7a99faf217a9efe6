package dto

import (
	"time"

	"github.com/jhoicas/erp-automation/internal/application/job"
)

// JobResponse job registrado con su cadencia efectiva.
// Enabled es false cuando el job está en JOBS_DISABLED; Next queda vacío.
type JobResponse struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Schedule    string     `json:"schedule"`
	Enabled     bool       `json:"enabled"`
	Next        *time.Time `json:"next,omitempty"`
	Prev        *time.Time `json:"prev,omitempty"`
}

// JobListResponse listado de jobs.
type JobListResponse struct {
	Items []JobResponse `json:"items"`
}

// RunJobResponse resultado de una ejecución manual.
// El job recorre todas las empresas; RequestedBy y RequesterCompanyID solo auditan quién lo pidió.
type RunJobResponse struct {
	job.Result
	DurationMs         int64  `json:"duration_ms"`
	Forced             bool   `json:"forced"`
	RequestedBy        string `json:"requested_by"`
	RequesterCompanyID string `json:"requester_company_id"`
}

// NewRunJobResponse envuelve el resultado con la duración en milisegundos.
func NewRunJobResponse(res job.Result) RunJobResponse {
	return RunJobResponse{Result: res, DurationMs: res.Duration().Milliseconds()}
}
