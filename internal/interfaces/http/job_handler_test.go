package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/dto"
	"github.com/jhoicas/erp-automation/internal/application/job"
	apphttp "github.com/jhoicas/erp-automation/internal/interfaces/http"
	"github.com/jhoicas/erp-automation/internal/scheduler"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

type fakeEntries []scheduler.Entry

func (f fakeEntries) Entries() []scheduler.Entry { return f }

func buildJobsApp(t *testing.T) *fiber.App {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	reg := job.NewRegistry(clk, logger.Nop())
	require.NoError(t, reg.Register(job.Job{Name: "low-stock", Schedule: "0 7 * * *", Description: "stock bajo",
		Run: func(_ context.Context, res *job.Result) error {
			res.Add("low_stock_items", 3)
			return nil
		}}))
	require.NoError(t, reg.Register(job.Job{Name: "license-expiry", Schedule: "0 11 * * *",
		Run: func(context.Context, *job.Result) error { return errors.New("db caída") }}))

	next := time.Date(2026, 3, 11, 6, 30, 0, 0, time.UTC)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:    "erp-automation",
		Registry:   reg,
		Scheduler:  fakeEntries{{Name: "low-stock", Schedule: "30 6 * * *", Next: next}},
		Tokens:     testSigner(t),
		IsDisabled: func(name string) bool { return name == "license-expiry" },
		Logger:     logger.Nop(),
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHealth_SinToken(t *testing.T) {
	resp := send(t, buildJobsApp(t), http.MethodGet, "/health", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJobs_ListIncluyeCadenciaEfectivaYDeshabilitados(t *testing.T) {
	app := buildJobsApp(t)
	resp := send(t, app, http.MethodGet, "/api/jobs", tokenForRole(t, "manager"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.JobListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 2)

	low := body.Items[0]
	assert.Equal(t, "low-stock", low.Name)
	assert.True(t, low.Enabled)
	assert.Equal(t, "30 6 * * *", low.Schedule)
	require.NotNil(t, low.Next)

	lic := body.Items[1]
	assert.Equal(t, "license-expiry", lic.Name)
	assert.False(t, lic.Enabled)
	assert.Equal(t, "0 11 * * *", lic.Schedule)
	assert.Nil(t, lic.Next)
}

func TestSwagger_DocPublicaDescribeLaAPI(t *testing.T) {
	resp := send(t, buildJobsApp(t), http.MethodGet, "/swagger/doc.json", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths, "/api/jobs")
	assert.Contains(t, doc.Paths["/api/jobs/{name}/run"], "post")
}

func TestJobs_ListRequiereToken(t *testing.T) {
	resp := send(t, buildJobsApp(t), http.MethodGet, "/api/jobs", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJobs_RunDevuelveResultado(t *testing.T) {
	app := buildJobsApp(t)
	resp := send(t, app, http.MethodPost, "/api/jobs/low-stock/run", tokenForRole(t, "admin"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.RunJobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "low-stock", body.Job)
	assert.False(t, body.Failed)
	assert.Equal(t, 3, body.Counts["low_stock_items"])
}

func TestJobs_RunDeshabilitadoRequiereForce(t *testing.T) {
	app := buildJobsApp(t)
	resp := send(t, app, http.MethodPost, "/api/jobs/license-expiry/run", tokenForRole(t, "admin"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "JOB_DISABLED", errorCode(t, resp))
}

func TestJobs_RunFallidoSeReportaEnElCuerpo(t *testing.T) {
	app := buildJobsApp(t)
	resp := send(t, app, http.MethodPost, "/api/jobs/license-expiry/run?force=true", tokenForRole(t, "admin"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.RunJobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Forced)
	assert.True(t, body.Failed)
	assert.Equal(t, "db caída", body.Error)
}

func TestJobs_RunDesconocido404(t *testing.T) {
	resp := send(t, buildJobsApp(t), http.MethodPost, "/api/jobs/nope/run", tokenForRole(t, "admin"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJobs_RunSoloAdmin(t *testing.T) {
	resp := send(t, buildJobsApp(t), http.MethodPost, "/api/jobs/low-stock/run", tokenForRole(t, "manager"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
