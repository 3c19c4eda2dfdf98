package suppliers

import (
	"github.com/go-chi/chi/v5"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

// MountRoutes registers supplier routes guarded by permission middleware.
func (h *Handler) MountRoutes(r chi.Router, mw *rbac.Middleware) {
	r.Route("/suppliers", func(r chi.Router) {
		r.With(mw.RequireAny(shared.PermSuppliersView, shared.PermSuppliersManage)).Get("/", h.List)
		r.With(mw.RequireAny(shared.PermSuppliersView, shared.PermSuppliersManage)).Get("/{id}", h.Get)
		r.With(mw.RequireAll(shared.PermSuppliersManage)).Post("/", h.Create)
		r.With(mw.RequireAll(shared.PermSuppliersManage)).Put("/{id}", h.Update)
		r.With(mw.RequireAll(shared.PermSuppliersManage)).Delete("/{id}", h.Delete)
	})
}
