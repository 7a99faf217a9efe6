// Package job define el contrato común de los jobs periódicos: resultado,
// definición y registro con ejecución instrumentada.
package job

import "time"

// Claves de contadores compartidas por todos los jobs.
const (
	CountErrors   = "errors"
	CountSkipped  = "skipped"
	CountNotified = "notified"
)

// Result resumen de una ejecución. Es lo que devuelven el scheduler, el CLI y la API.
type Result struct {
	Job        string         `json:"job"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[string]int `json:"counts"`
	Failed     bool           `json:"failed"`
	Error      string         `json:"error,omitempty"`
}

// NewResult crea un resultado vacío para el job.
func NewResult(name string, startedAt time.Time) *Result {
	return &Result{Job: name, StartedAt: startedAt, Counts: map[string]int{}}
}

// Inc suma uno al contador.
func (r *Result) Inc(key string) { r.Add(key, 1) }

// Add suma n al contador.
func (r *Result) Add(key string, n int) {
	if r.Counts == nil {
		r.Counts = map[string]int{}
	}
	r.Counts[key] += n
}

// Count valor actual del contador (0 si no existe).
func (r Result) Count(key string) int { return r.Counts[key] }

// Duration tiempo total de la ejecución.
func (r Result) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
