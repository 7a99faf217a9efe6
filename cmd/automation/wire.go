package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-automation/internal/application/automation"
	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/application/workflow"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/internal/infrastructure/mailer"
	"github.com/jhoicas/erp-automation/internal/infrastructure/memory"
	"github.com/jhoicas/erp-automation/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-automation/pkg/clock"
	"github.com/jhoicas/erp-automation/pkg/config"
	"github.com/jhoicas/erp-automation/pkg/logger"
	"github.com/jhoicas/erp-automation/pkg/money"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

// stores puertos del Record Store resueltos según el driver.
type stores struct {
	tasks         repository.TaskRepository
	activities    repository.ActivityRepository
	customers     repository.CustomerRepository
	quotes        repository.QuoteRepository
	orders        repository.SalesOrderRepository
	invoices      repository.InvoiceRepository
	products      repository.ProductRepository
	companies     repository.CompanyRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	tx            repository.WorkflowTxRunner
	close         func()
}

// app dependencias compartidas por los comandos.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	clock    clock.System
	registry *job.Registry
	stores   *stores
}

func (a *app) Close() {
	if a.stores != nil && a.stores.close != nil {
		a.stores.close()
	}
}

// bootstrap carga configuración, abre el store y registra todos los jobs.
// driverOverride fuerza el driver (p.ej. "memory" para listar jobs sin DB).
func bootstrap(ctx context.Context, opts *rootOptions, driverOverride string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := cfg.App.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level})

	clk, err := clock.NewSystem(cfg.Cron.Timezone)
	if err != nil {
		return nil, fmt.Errorf("zona horaria %q: %w", cfg.Cron.Timezone, err)
	}

	driver := cfg.App.StoreDriver
	if opts.Store != "" {
		driver = opts.Store
	}
	if driverOverride != "" {
		driver = driverOverride
	}
	st, err := openStores(ctx, driver, cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("store", driver).Str("timezone", clk.Location().String()).Msg("record store listo")

	a := &app{cfg: cfg, log: log, clock: clk, stores: st}
	a.registry, err = buildRegistry(cfg, log, clk, st)
	if err != nil {
		a.Close()
		return nil, err
	}
	for _, name := range cfg.Cron.Disabled {
		if _, ok := a.registry.Get(name); !ok {
			log.Warn().Str("job", name).Strs("known", a.registry.Names()).Msg("JOBS_DISABLED menciona un job no registrado")
		}
	}
	return a, nil
}

func openStores(ctx context.Context, driver string, dbCfg config.DBConfig) (*stores, error) {
	switch driver {
	case driverMemory:
		s := memory.New()
		return &stores{
			tasks: s.Tasks(), activities: s.Activities(), customers: s.Customers(), quotes: s.Quotes(),
			orders: s.Orders(), invoices: s.Invoices(), products: s.Products(), companies: s.Companies(),
			users: s.Users(), notifications: s.Notifications(), tx: s, close: func() {},
		}, nil
	case driverPostgres:
		pool, err := postgres.NewPool(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("conectar a PostgreSQL: %w", err)
		}
		return &stores{
			tasks:         postgres.NewTaskRepository(pool),
			activities:    postgres.NewActivityRepository(pool),
			customers:     postgres.NewCustomerRepository(pool),
			quotes:        postgres.NewQuoteRepository(pool),
			orders:        postgres.NewSalesOrderRepository(pool),
			invoices:      postgres.NewInvoiceRepository(pool),
			products:      postgres.NewProductRepository(pool),
			companies:     postgres.NewCompanyRepository(pool),
			users:         postgres.NewUserRepository(pool),
			notifications: postgres.NewNotificationRepository(pool),
			tx:            postgres.NewTxRunner(pool),
			close:         pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("store driver desconocido: %q", driver)
	}
}

func buildRegistry(cfg *config.Config, log *logger.Logger, clk clock.Clock, st *stores) (*job.Registry, error) {
	renderer, err := mailer.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("plantillas de email: %w", err)
	}
	ttl := time.Duration(cfg.Notification.TTLDays) * 24 * time.Hour
	sink := notification.NewSink(st.notifications, st.users, mailer.New(cfg.SMTP, log), renderer,
		clk, ttl, cfg.App.FrontendURL, log)

	reminders := automation.NewTaskReminderUseCase(st.tasks, st.activities, sink, clk, log)
	digest := automation.NewDigestUseCase(st.users, st.tasks, st.customers, sink, clk, log)
	inactive := automation.NewInactiveCustomerUseCase(st.customers, st.users, st.tasks, sink, clk, log)
	lowStock := automation.NewLowStockUseCase(st.products, st.users, sink, log)
	invoices := automation.NewOverdueInvoiceUseCase(st.invoices, st.activities, st.tasks, st.users, sink,
		money.Default(), clk, log)
	license := automation.NewLicenseExpiryUseCase(st.companies, st.users, sink, clk, log)
	flow := workflow.NewUseCase(st.tx, st.quotes, st.orders, st.activities, sink, clk, log)
	cleanup := automation.NewCleanupUseCase(st.notifications, clk)

	reg := job.NewRegistry(clk, log)
	for _, j := range []job.Job{
		reminders.Job(),
		digest.OverdueJob(),
		inactive.Job(),
		digest.InactiveJob(),
		lowStock.Job(),
		invoices.Job(),
		license.Job(),
		flow.Job(),
		cleanup.Job(),
	} {
		if err := reg.Register(j); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
