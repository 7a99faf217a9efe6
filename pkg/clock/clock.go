// Package clock abstrae la hora actual para que las reglas basadas en tiempo
// sean deterministas en tests.
package clock

import (
	"math"
	"sync"
	"time"
)

// Clock fuente de la hora "now" usada por los evaluadores.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System reloj real en la zona horaria configurada (CRON_TIMEZONE).
type System struct {
	Loc *time.Location
}

// NewSystem carga la zona horaria; nombre vacío equivale a UTC.
func NewSystem(tz string) (System, error) {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return System{}, err
	}
	return System{Loc: loc}, nil
}

func (s System) Now() time.Time { return time.Now().In(s.Location()) }

func (s System) Location() *time.Location {
	if s.Loc == nil {
		return time.UTC
	}
	return s.Loc
}

// Fixed reloj manual para tests. Seguro para uso concurrente.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed crea un reloj detenido en t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

// Set mueve el reloj a t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance adelanta el reloj d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// StartOfDay medianoche de t en su propia zona horaria.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween días calendario completos de from a to (to - from), en la zona de to.
func DaysBetween(from, to time.Time) int {
	a := StartOfDay(from.In(to.Location()))
	b := StartOfDay(to)
	return int(math.Round(b.Sub(a).Hours() / 24))
}
