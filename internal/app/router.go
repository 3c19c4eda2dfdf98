package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

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
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/purchases"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/sales"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/users"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware *rbac.Middleware

	AuthHandler         *auth.Handler
	RBACHandler         *rbac.Handler
	UsersHandler        *users.Handler
	CategoriesHandler   *categories.Handler
	ProductsHandler     *products.Handler
	SuppliersHandler    *suppliers.Handler
	ServicesHandler     *catalogsvc.Handler
	ClientsHandler      *clients.Handler
	EmployeesHandler    *employees.Handler
	AppointmentsHandler *appointments.Handler
	SalesHandler        *sales.Handler
	PurchasesHandler    *purchases.Handler
	DashboardHandler    *dashboard.Handler
	AuditHandler        *audit.Handler
	JobHandler          *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the full API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}

		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
		mw := params.RBACMiddleware
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r, mw)
		}
		if params.CategoriesHandler != nil {
			params.CategoriesHandler.MountRoutes(r, mw)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(r, mw)
		}
		if params.SuppliersHandler != nil {
			params.SuppliersHandler.MountRoutes(r, mw)
		}
		if params.ServicesHandler != nil {
			params.ServicesHandler.MountRoutes(r, mw)
		}
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r, mw)
		}
		if params.EmployeesHandler != nil {
			params.EmployeesHandler.MountRoutes(r, mw)
		}
		if params.AppointmentsHandler != nil {
			params.AppointmentsHandler.MountRoutes(r, mw)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.MountRoutes(r, mw)
		}
		if params.PurchasesHandler != nil {
			params.PurchasesHandler.MountRoutes(r, mw)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r, mw)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r, mw)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
