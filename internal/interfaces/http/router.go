package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"

	"github.com/jhoicas/erp-automation/docs"
	"github.com/jhoicas/erp-automation/internal/application/dto"
	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/pkg/jwt"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName    string
	Registry   *job.Registry
	Scheduler  entryLister
	Tokens     *jwt.Signer
	IsDisabled func(name string) bool
	Logger     *logger.Logger
}

// Router registra las rutas de la API de operación.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// especificación OpenAPI registrada por el paquete docs (go generate ./cmd/automation)
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.Tokens))

	jobs := api.Group("/jobs")
	jobHandler := NewJobHandler(deps.Registry, deps.Scheduler, deps.IsDisabled, deps.Logger)
	jobs.Get("/", RequireRole(entity.ManagerRoles...), jobHandler.List)
	jobs.Post("/:name/run", RequireRole(entity.RoleAdmin), jobHandler.Run)
}
