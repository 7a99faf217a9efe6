package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-automation/internal/application/dto"
	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/scheduler"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// entryLister lo implementa *scheduler.Scheduler.
type entryLister interface {
	Entries() []scheduler.Entry
}

// JobHandler expone los jobs registrados y su ejecución manual.
type JobHandler struct {
	registry   *job.Registry
	sched      entryLister
	isDisabled func(name string) bool
	log        *logger.Logger
}

// NewJobHandler construye el handler. sched puede ser nil (sin próximas ejecuciones);
// isDisabled nil equivale a ningún job deshabilitado.
func NewJobHandler(registry *job.Registry, sched entryLister, isDisabled func(string) bool, log *logger.Logger) *JobHandler {
	if isDisabled == nil {
		isDisabled = func(string) bool { return false }
	}
	return &JobHandler{registry: registry, sched: sched, isDisabled: isDisabled, log: log}
}

// List godoc
// @Summary      Listar jobs
// @Description  Jobs registrados con su cadencia efectiva y la próxima ejecución. Requiere rol admin o manager.
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.JobListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c *fiber.Ctx) error {
	scheduled := map[string]scheduler.Entry{}
	if h.sched != nil {
		for _, e := range h.sched.Entries() {
			scheduled[e.Name] = e
		}
	}
	out := dto.JobListResponse{Items: []dto.JobResponse{}}
	for _, j := range h.registry.Jobs() {
		item := dto.JobResponse{Name: j.Name, Description: j.Description, Schedule: j.Schedule}
		if e, ok := scheduled[j.Name]; ok {
			item.Enabled = true
			item.Schedule = e.Schedule
			if !e.Next.IsZero() {
				next := e.Next
				item.Next = &next
			}
			if !e.Prev.IsZero() {
				prev := e.Prev
				item.Prev = &prev
			}
		}
		out.Items = append(out.Items, item)
	}
	return c.JSON(out)
}

// Run godoc
// @Summary      Ejecutar un job una vez
// @Description  Ejecuta el job sobre todas las empresas, no solo la del token. Requiere rol admin.
// @Description  Un job en JOBS_DISABLED responde 409 salvo con force=true, igual que "automation run --force".
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        name   path   string  true   "Nombre del job"
// @Param        force  query  bool    false  "Ejecutar aunque esté deshabilitado"
// @Success      200   {object}  dto.RunJobResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{name}/run [post]
func (h *JobHandler) Run(c *fiber.Ctx) error {
	name := c.Params("name")
	if _, ok := h.registry.Get(name); !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_JOB", Message: "job no registrado: " + name})
	}
	force := c.QueryBool("force")
	if !force && h.isDisabled(name) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "JOB_DISABLED", Message: "job en JOBS_DISABLED; usar ?force=true"})
	}

	userID, companyID := GetUserID(c), GetCompanyID(c)
	h.log.Info().Str("job", name).Str("user_id", userID).Str("company_id", companyID).Bool("force", force).
		Msg("ejecución manual solicitada")
	res, err := h.registry.Run(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownJob) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_JOB", Message: "job no registrado: " + name})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	// un job fallido sigue siendo una ejecución válida: el detalle va en el cuerpo
	out := dto.NewRunJobResponse(res)
	out.Forced = force
	out.RequestedBy = userID
	out.RequesterCompanyID = companyID
	return c.JSON(out)
}
