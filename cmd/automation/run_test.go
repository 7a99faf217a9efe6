package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/workflow"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/config"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

func testApp(t *testing.T, disabled ...string) *app {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	reg := job.NewRegistry(clk, logger.Nop())
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Register(job.Job{Name: name, Run: func(_ context.Context, res *job.Result) error {
			res.Inc("hits")
			return nil
		}}))
	}
	require.NoError(t, reg.Register(job.Job{Name: "broken", Run: func(context.Context, *job.Result) error {
		return errors.New("sin conexión")
	}}))
	return &app{
		cfg:      &config.Config{Cron: config.CronConfig{Disabled: disabled}},
		log:      logger.Nop(),
		registry: reg,
	}
}

func TestBuildRegistry_RegistraTodosLosJobsConfigurables(t *testing.T) {
	st, err := openStores(context.Background(), driverMemory, config.DBConfig{})
	require.NoError(t, err)
	cfg := &config.Config{Notification: config.NotificationConfig{TTLDays: 30}}

	reg, err := buildRegistry(cfg, logger.Nop(), clock.System{}, st)
	require.NoError(t, err)

	var names []string
	for _, j := range reg.Jobs() {
		names = append(names, j.Name)
		assert.NotEmpty(t, j.Schedule, j.Name)
	}
	assert.Equal(t, reg.Names(), names)
	assert.ElementsMatch(t, []string{
		automation.JobTaskReminders, automation.JobManagerDigest, automation.JobInactiveCustomers,
		automation.JobInactiveDigest, automation.JobLowStock, automation.JobOverdueInvoices,
		automation.JobLicenseExpiry, workflow.JobName, automation.JobNotificationCleanup,
	}, names)
}

func TestRunJobs_AllOmiteDeshabilitados(t *testing.T) {
	a := testApp(t, "b")
	results, err := runJobs(context.Background(), a, allJobs, false, 2)
	require.NoError(t, err)

	var ran []string
	for _, r := range results {
		ran = append(ran, r.Job)
	}
	assert.ElementsMatch(t, []string{"a", "c", "broken"}, ran)
	assert.EqualError(t, failedError(results), "jobs fallidos: broken")
}

func TestRunJobs_DeshabilitadoRequiereForce(t *testing.T) {
	a := testApp(t, "b")
	_, err := runJobs(context.Background(), a, "b", false, 1)
	assert.ErrorIs(t, err, domain.ErrJobDisabled)

	results, err := runJobs(context.Background(), a, "b", true, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Count("hits"))
}

func TestRunJobs_Desconocido(t *testing.T) {
	_, err := runJobs(context.Background(), testApp(t), "nope", false, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownJob)
}

func TestPrintResults_Texto(t *testing.T) {
	var buf bytes.Buffer
	results := []job.Result{
		{Job: "low-stock", Counts: map[string]int{"notified": 2, "errors": 0}},
		{Job: "license-expiry", Failed: true, Error: "timeout"},
	}
	require.NoError(t, printResults(&buf, "text", results))
	out := buf.String()
	assert.Contains(t, out, "low-stock")
	assert.Contains(t, out, "errors=0 notified=2")
	assert.Contains(t, out, "FALLÓ: timeout")
}

func TestPrintResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, "json", []job.Result{{Job: "workflow", Counts: map[string]int{}}}))
	assert.Contains(t, buf.String(), `"job": "workflow"`)
}
