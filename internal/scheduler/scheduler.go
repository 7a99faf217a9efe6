// Package scheduler dispara los jobs registrados según su cadencia cron.
// Cada job corre en su propia goroutine; un fallo o panic en uno no afecta a los demás
// ni a sus siguientes ejecuciones.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/pkg/config"
	"github.com/jhoicas/erp-automation/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Entry job programado con sus próximas ejecuciones.
type Entry struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

// Scheduler dueño de los handles de cron; StopAll los libera todos.
type Scheduler struct {
	cron     *cron.Cron
	registry *job.Registry
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	entries   map[string]cron.EntryID
	schedules map[string]string
}

// New crea el scheduler en la zona horaria loc. Los jobs se ejecutan a través de registry.
func New(loc *time.Location, registry *job.Registry, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		registry:  registry,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		entries:   map[string]cron.EntryID{},
		schedules: map[string]string{},
	}
}

// Register programa j con la expresión schedule (5 campos o descriptores @every/@daily).
func (s *Scheduler) Register(j job.Job, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[j.Name]; ok {
		return fmt.Errorf("job %q ya programado", j.Name)
	}
	id, err := s.cron.AddFunc(schedule, func() {
		s.registry.Execute(s.ctx, j)
	})
	if err != nil {
		return fmt.Errorf("cadencia inválida para %s (%q): %w", j.Name, schedule, err)
	}
	s.entries[j.Name] = id
	s.schedules[j.Name] = schedule
	s.log.Info().Str("job", j.Name).Str("schedule", schedule).Msg("job programado")
	return nil
}

// RegisterAll programa todos los jobs del registro aplicando overrides y deshabilitados.
func (s *Scheduler) RegisterAll(cfg config.CronConfig) error {
	for _, j := range s.registry.Jobs() {
		if cfg.IsDisabled(j.Name) {
			s.log.Warn().Str("job", j.Name).Msg("job deshabilitado por configuración")
			continue
		}
		if err := s.Register(j, cfg.ScheduleFor(j.Name, j.Schedule)); err != nil {
			return err
		}
	}
	return nil
}

// Start arranca el loop de cron en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.Entries())).Msg("scheduler iniciado")
}

// StopAll detiene nuevos disparos y espera a los jobs en curso hasta que ctx expire.
// Si ctx expira primero, cancela el contexto de los jobs y devuelve ctx.Err().
func (s *Scheduler) StopAll(ctx context.Context) error {
	done := s.cron.Stop()
	defer func() {
		s.mu.Lock()
		for name, id := range s.entries {
			s.cron.Remove(id)
			delete(s.entries, name)
			delete(s.schedules, name)
		}
		s.mu.Unlock()
	}()

	select {
	case <-done.Done():
		s.cancel()
		s.log.Info().Msg("scheduler detenido")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.log.Warn().Msg("scheduler detenido con jobs en curso")
		return ctx.Err()
	}
}

// RunNow ejecuta el job una vez fuera de su cadencia.
func (s *Scheduler) RunNow(ctx context.Context, name string) (job.Result, error) {
	return s.registry.Run(ctx, name)
}

// Entries jobs programados ordenados por nombre.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for name, id := range s.entries {
		e := s.cron.Entry(id)
		out = append(out, Entry{Name: name, Schedule: s.schedules[name], Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// NextRuns calcula las próximas ejecuciones sin arrancar el loop (para "automation jobs").
func (s *Scheduler) NextRuns(from time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for name, id := range s.entries {
		e := s.cron.Entry(id)
		out = append(out, Entry{Name: name, Schedule: s.schedules[name], Next: e.Schedule.Next(from.In(s.cron.Location()))})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}
