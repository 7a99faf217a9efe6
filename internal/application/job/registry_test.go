package job_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

func newRegistry() (*job.Registry, *clock.Fixed) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	return job.NewRegistry(clk, logger.Nop()), clk
}

func TestRegistry_RegisterYDuplicado(t *testing.T) {
	reg, _ := newRegistry()
	noop := func(context.Context, *job.Result) error { return nil }

	require.NoError(t, reg.Register(job.Job{Name: "a", Schedule: "@hourly", Run: noop}))
	require.NoError(t, reg.Register(job.Job{Name: "b", Schedule: "@daily", Run: noop}))
	assert.ErrorIs(t, reg.Register(job.Job{Name: "a", Run: noop}), domain.ErrDuplicate)
	assert.ErrorIs(t, reg.Register(job.Job{Name: "c"}), domain.ErrInvalidInput)

	jobs := reg.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "b", jobs[1].Name)
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestRegistry_RunCuentaYMideTiempo(t *testing.T) {
	reg, clk := newRegistry()
	require.NoError(t, reg.Register(job.Job{Name: "count", Run: func(_ context.Context, res *job.Result) error {
		res.Inc("created")
		res.Add("created", 2)
		clk.Advance(3 * time.Second)
		return nil
	}}))

	res, err := reg.Run(context.Background(), "count")
	require.NoError(t, err)
	assert.Equal(t, "count", res.Job)
	assert.Equal(t, 3, res.Count("created"))
	assert.Equal(t, 3*time.Second, res.Duration())
	assert.False(t, res.Failed)
}

func TestRegistry_ErrorFatalYPanic(t *testing.T) {
	reg, _ := newRegistry()
	require.NoError(t, reg.Register(job.Job{Name: "fatal", Run: func(context.Context, *job.Result) error {
		return errors.New("store caído")
	}}))
	require.NoError(t, reg.Register(job.Job{Name: "panic", Run: func(context.Context, *job.Result) error {
		panic("nil entity")
	}}))

	res, err := reg.Run(context.Background(), "fatal")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, "store caído", res.Error)

	res, err = reg.Run(context.Background(), "panic")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Contains(t, res.Error, "nil entity")
	assert.False(t, res.FinishedAt.IsZero())

	_, err = reg.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownJob)
}
