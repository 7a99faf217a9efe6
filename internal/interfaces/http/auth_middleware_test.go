package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/application/dto"
	apphttp "github.com/jhoicas/erp-automation/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/erp-automation/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "erp-automation-test"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
)

func testSigner(t *testing.T) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer)
	require.NoError(t, err)
	return s
}

func bearer(t *testing.T, s *pkgjwt.Signer, sub pkgjwt.Subject, ttl time.Duration) string {
	t.Helper()
	tok, err := s.Issue(sub, ttl)
	require.NoError(t, err)
	return "Bearer " + tok
}

// tokenForRole token vigente del usuario de prueba con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return bearer(t, testSigner(t), pkgjwt.Subject{UserID: testUserID, CompanyID: testCompanyID, Role: role}, time.Hour)
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

// ── Permisos por ruta de la API de operación ─────────────────────────────────

func TestRouter_PermisosPorRolYRuta(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"admin lista", http.MethodGet, "/api/jobs", "admin", http.StatusOK},
		{"manager lista", http.MethodGet, "/api/jobs", "manager", http.StatusOK},
		{"sales no lista", http.MethodGet, "/api/jobs", "sales", http.StatusForbidden},
		{"staff no lista", http.MethodGet, "/api/jobs", "staff", http.StatusForbidden},
		{"admin ejecuta", http.MethodPost, "/api/jobs/low-stock/run", "admin", http.StatusOK},
		{"manager no ejecuta", http.MethodPost, "/api/jobs/low-stock/run", "manager", http.StatusForbidden},
		{"sales no ejecuta", http.MethodPost, "/api/jobs/low-stock/run", "sales", http.StatusForbidden},
		{"rol vacío", http.MethodGet, "/api/jobs", "", http.StatusUnauthorized},
	}
	app := buildJobsApp(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := send(t, app, tc.method, tc.path, tokenForRole(t, tc.role))
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRouter_CodigosDeRechazo(t *testing.T) {
	app := buildJobsApp(t)

	resp := send(t, app, http.MethodPost, "/api/jobs/low-stock/run", tokenForRole(t, "manager"))
	defer resp.Body.Close()
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	resp = send(t, app, http.MethodGet, "/api/jobs", tokenForRole(t, ""))
	defer resp.Body.Close()
	assert.Equal(t, "MISSING_ROLE", errorCode(t, resp))
}

// ── Validación del token ─────────────────────────────────────────────────────

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	admin := pkgjwt.Subject{UserID: testUserID, CompanyID: testCompanyID, Role: "admin"}

	past := time.Now().Add(-2 * time.Hour)
	expired := bearer(t, testSigner(t).WithClock(func() time.Time { return past }), admin, time.Minute)

	otherIssuer, err := pkgjwt.NewSigner(testJWTSecret, "otro-emisor")
	require.NoError(t, err)
	otherSecret, err := pkgjwt.NewSigner("otro-secret", testIssuer)
	require.NoError(t, err)

	cases := []struct {
		name string
		auth string
		code string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", expired, "INVALID_TOKEN"},
		{"otro issuer", bearer(t, otherIssuer, admin, time.Hour), "INVALID_TOKEN"},
		{"otra firma", bearer(t, otherSecret, admin, time.Hour), "INVALID_TOKEN"},
		{"sin usuario", bearer(t, testSigner(t), pkgjwt.Subject{CompanyID: testCompanyID, Role: "admin"}, time.Hour), "INVALID_TOKEN"},
	}
	app := buildJobsApp(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := send(t, app, http.MethodGet, "/api/jobs", tc.auth)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

// ── Claims de tenant ─────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaClaimsEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", apphttp.AuthMiddleware(testSigner(t)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	auth := bearer(t, testSigner(t), pkgjwt.Subject{UserID: "u-77", CompanyID: "c-9", Role: "manager"}, time.Hour)
	resp := send(t, app, http.MethodGet, "/whoami", auth)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"user_id": "u-77", "company_id": "c-9", "role": "manager"}, body)
}

func TestRun_AuditaUsuarioYEmpresaDelToken(t *testing.T) {
	auth := bearer(t, testSigner(t), pkgjwt.Subject{UserID: "u-77", CompanyID: "c-9", Role: "admin"}, time.Hour)
	resp := send(t, buildJobsApp(t), http.MethodPost, "/api/jobs/low-stock/run", auth)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.RunJobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-77", body.RequestedBy)
	assert.Equal(t, "c-9", body.RequesterCompanyID)
	assert.False(t, body.Forced)
}
