package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/app"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/appointments"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/audit"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/auth"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/clients"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/dashboard"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/employees"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/categories"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/products"
	catalogsvc "github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/services"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/suppliers"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/observability"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/cache"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/db"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/purchases"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/sales"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/users"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/jobs"
)

type permissionInvalidator struct {
	cache *rbac.PermissionCache
}

func (p permissionInvalidator) InvalidatePermissions(ctx context.Context) error {
	return p.cache.Invalidate(ctx)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	permissionCache := rbac.NewPermissionCache(redisClient, 10*time.Minute)
	rbacService := rbac.NewService(rbac.NewRepository(dbpool), permissionCache)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, rbacService, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(dbpool), permissionInvalidator{cache: permissionCache})
	usersHandler := users.NewHandler(logger, usersService)

	categoriesService := categories.NewService(categories.NewRepository(dbpool))
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	productsService := products.NewService(products.NewRepository(dbpool))
	productsHandler := products.NewHandler(logger, productsService)

	suppliersService := suppliers.NewService(suppliers.NewRepository(dbpool))
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	serviceCatalog := catalogsvc.NewCatalog(catalogsvc.NewRepository(dbpool))
	servicesHandler := catalogsvc.NewHandler(logger, serviceCatalog)

	clientsService := clients.NewService(clients.NewRepository(dbpool))
	clientsHandler := clients.NewHandler(logger, clientsService)

	employeesService := employees.NewService(employees.NewRepository(dbpool))
	employeesHandler := employees.NewHandler(logger, employeesService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	appointmentsService := appointments.NewService(appointments.NewRepository(dbpool), serviceCatalog, employeesService, jobClient)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService, rbacService)

	salesService := sales.NewService(sales.NewRepository(dbpool), idempotencyStore, auditLogger)
	salesHandler := sales.NewHandler(logger, salesService)

	purchasesService := purchases.NewService(purchases.NewRepository(dbpool), idempotencyStore, auditLogger)
	purchasesHandler := purchases.NewHandler(logger, purchasesService)

	dashboardCache := dashboard.NewCache(redisClient, 10*time.Minute)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	auditService := audit.NewService(audit.NewRepository(dbpool))
	auditHandler := audit.NewHandler(logger, auditService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		RBACMiddleware:      &rbacMiddleware,
		AuthHandler:         authHandler,
		RBACHandler:         rbacHandler,
		UsersHandler:        usersHandler,
		CategoriesHandler:   categoriesHandler,
		ProductsHandler:     productsHandler,
		SuppliersHandler:    suppliersHandler,
		ServicesHandler:     servicesHandler,
		ClientsHandler:      clientsHandler,
		EmployeesHandler:    employeesHandler,
		AppointmentsHandler: appointmentsHandler,
		SalesHandler:        salesHandler,
		PurchasesHandler:    purchasesHandler,
		DashboardHandler:    dashboardHandler,
		AuditHandler:        auditHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
