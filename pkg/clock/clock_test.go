package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/pkg/clock"
)

func TestFixed_AdvanceYSet(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c := clock.NewFixed(start)
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestNewSystem_ZonaHoraria(t *testing.T) {
	c, err := clock.NewSystem("America/Bogota")
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", c.Now().Location().String())

	def, err := clock.NewSystem("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, def.Location())

	_, err = clock.NewSystem("Mars/Olympus")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, clock.DaysBetween(today.AddDate(0, 0, -10), today))
	assert.Equal(t, 0, clock.DaysBetween(today.Add(-2*time.Hour), today))
	assert.Equal(t, 1, clock.DaysBetween(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), today))
}
