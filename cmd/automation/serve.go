package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpRouter "github.com/jhoicas/erp-automation/internal/interfaces/http"
	"github.com/jhoicas/erp-automation/internal/scheduler"
	"github.com/jhoicas/erp-automation/pkg/jwt"
)

const (
	shutdownTimeout = 30 * time.Second
	swaggerFile     = "./docs/swagger.json"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var noHTTP bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Arranca el scheduler y la API de operación",
		Long: `Programa todos los jobs habilitados en CRON_TIMEZONE y expone la API de operación
(/health, GET /api/jobs, POST /api/jobs/:name/run). SIGINT/SIGTERM detienen el scheduler
esperando los jobs en curso.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts, noHTTP)
		},
	}
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "solo scheduler, sin API de operación")
	return cmd
}

func serve(ctx context.Context, opts *rootOptions, noHTTP bool) error {
	a, err := bootstrap(ctx, opts, "")
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	var tokens *jwt.Signer
	if !noHTTP {
		if tokens, err = jwt.NewSigner(a.cfg.JWT.Secret, a.cfg.JWT.Issuer); err != nil {
			return fmt.Errorf("API de operación: %w (definir JWT_SECRET o usar --no-http)", err)
		}
	}

	sched := scheduler.New(a.clock.Location(), a.registry, log)
	if err := sched.RegisterAll(a.cfg.Cron); err != nil {
		return err
	}
	sched.Start()

	var app *fiber.App
	if !noHTTP {
		// WriteTimeout amplio: POST /api/jobs/:name/run espera a que el job termine
		app = fiber.New(fiber.Config{
			AppName:      a.cfg.App.Name,
			ReadTimeout:  time.Second * 10,
			WriteTimeout: time.Minute * 5,
			IdleTimeout:  time.Second * 60,
		})

		app.Use(recover.New())

		// Swagger UI en local: http://localhost:<port>/docs
		if _, err := os.Stat(swaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: swaggerFile,
				Path:     "docs",
				Title:    "ERP Automation API",
			}))
		} else {
			log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, UI deshabilitada")
		}

		httpRouter.Router(app, httpRouter.RouterDeps{
			AppName:    a.cfg.App.Name,
			Registry:   a.registry,
			Scheduler:  sched,
			Tokens:     tokens,
			IsDisabled: a.cfg.Cron.IsDisabled,
			Logger:     log,
		})
		go func() {
			if err := app.Listen(a.cfg.HTTP.Addr()); err != nil {
				log.Error().Err(err).Msg("servidor HTTP finalizado")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("señal de apagado recibida, deteniendo scheduler...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app != nil {
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
	}
	if err := sched.StopAll(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("jobs interrumpidos en el apagado")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}
