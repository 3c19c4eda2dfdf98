package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/httpx"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router, mw *rbac.Middleware) {
	r.With(mw.RequireAll(shared.PermDashboardView)).Get("/dashboard", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	summary, err := h.service.Summary(r.Context(), months)
	if err != nil {
		h.logger.Error("dashboard summary failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The dashboard could not be assembled.")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
