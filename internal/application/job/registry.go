package job

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Func cuerpo de un job. Los errores por entidad se cuentan en res;
// un error devuelto marca la ejecución completa como fallida.
type Func func(ctx context.Context, res *Result) error

// Job definición registrada: nombre, cadencia cron por defecto y cuerpo.
type Job struct {
	Name        string
	Schedule    string
	Description string
	Run         Func
}

// Registry jobs registrados en orden de alta.
type Registry struct {
	mu     sync.RWMutex
	jobs   []Job
	byName map[string]int
	clock  clock.Clock
	log    *logger.Logger
}

// NewRegistry crea un registro vacío.
func NewRegistry(clk clock.Clock, log *logger.Logger) *Registry {
	return &Registry{byName: map[string]int{}, clock: clk, log: log}
}

// Register agrega un job. Nombres repetidos devuelven domain.ErrDuplicate.
func (r *Registry) Register(j Job) error {
	if j.Name == "" || j.Run == nil {
		return fmt.Errorf("job sin nombre o cuerpo: %w", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[j.Name]; ok {
		return fmt.Errorf("job %q: %w", j.Name, domain.ErrDuplicate)
	}
	r.byName[j.Name] = len(r.jobs)
	r.jobs = append(r.jobs, j)
	return nil
}

// Jobs copia de los jobs registrados.
func (r *Registry) Jobs() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Job(nil), r.jobs...)
}

// Names nombres de los jobs registrados, en orden de alta.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j.Name
	}
	return out
}

// Get busca un job por nombre.
func (r *Registry) Get(name string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byName[name]
	if !ok {
		return Job{}, false
	}
	return r.jobs[i], true
}

// Run ejecuta una vez el job indicado. Devuelve domain.ErrUnknownJob si no existe.
func (r *Registry) Run(ctx context.Context, name string) (Result, error) {
	j, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("%s: %w", name, domain.ErrUnknownJob)
	}
	return r.Execute(ctx, j), nil
}

// Execute corre el job midiendo tiempos y registrando el resultado.
// Un panic dentro del job se recupera y se reporta como fallo.
func (r *Registry) Execute(ctx context.Context, j Job) (result Result) {
	log := r.log.Job(j.Name)
	res := NewResult(j.Name, r.clock.Now())
	log.Info().Msg("job iniciado")

	defer func() {
		if p := recover(); p != nil {
			res.Failed = true
			res.Error = fmt.Sprintf("panic: %v", p)
			log.Error().Str("stack", string(debug.Stack())).Msg(res.Error)
		}
		res.FinishedAt = r.clock.Now()
		ev := log.Info()
		if res.Failed {
			ev = log.Error().Str("error", res.Error)
		}
		ev.Dur("duration", res.Duration()).Interface("counts", res.Counts).Bool("failed", res.Failed).Msg("job finalizado")
		result = *res
	}()

	if err := j.Run(ctx, res); err != nil {
		res.Failed = true
		res.Error = err.Error()
	}
	return *res
}
