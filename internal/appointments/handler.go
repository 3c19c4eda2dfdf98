package appointments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/httpx"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	perms    *rbac.Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, perms *rbac.Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		perms:    perms,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) MountRoutes(r chi.Router, mw *rbac.Middleware) {
	r.Route("/appointments", func(r chi.Router) {
		view := mw.RequireAny(shared.PermAppointmentsView, shared.PermAppointmentsViewAll, shared.PermAppointmentsManage)
		manage := mw.RequireAll(shared.PermAppointmentsManage)

		r.With(view).Get("/", h.list)
		r.With(view).Get("/{id}", h.get)
		r.With(manage).Post("/", h.create)
		r.With(manage).Post("/{id}/confirm", h.confirm)
		r.With(manage).Post("/{id}/complete", h.complete)
		r.With(manage).Post("/{id}/cancel", h.cancel)
	})
}

type createAppointmentRequest struct {
	ClientID   int64   `json:"client_id" validate:"required,gt=0"`
	EmployeeID int64   `json:"employee_id" validate:"required,gt=0"`
	StartTime  string  `json:"start_time" validate:"required"`
	ServiceIDs []int64 `json:"service_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{}

	if raw := q.Get("employee_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.EmployeeID = &id
		}
	}
	if raw := q.Get("client_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ClientID = &id
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &t
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		filter.Offset = (page - 1) * 20
	}
	filter.Limit = 20

	// Without the view-all permission the listing is pinned to the
	// caller's own client record.
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
		if userID, err := strconv.ParseInt(sess.User(), 10, 64); err == nil {
			granted, err := h.perms.ResolvePermissions(r.Context(), userID)
			if err == nil && !rbac.Authorize(granted, shared.PermAppointmentsViewAll) {
				filter.OwnerUserID = &userID
			}
		}
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []Appointment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"appointments": items, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	appointment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", "start_time must be RFC3339.")
		return
	}
	appointment, err := h.service.Create(r.Context(), CreateInput{
		ClientID:   req.ClientID,
		EmployeeID: req.EmployeeID,
		StartTime:  start,
		ServiceIDs: req.ServiceIDs,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, appointment)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	appointment, err := h.service.Confirm(r.Context(), id)
	if err != nil && appointment.ID != 0 {
		// Confirmed but the reminder could not be scheduled.
		h.logger.Error("appointment reminder enqueue failed", "error", err, "appointment_id", id)
		httpx.JSON(w, http.StatusOK, appointment)
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	appointment, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	appointment, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appointment)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid appointment ID", "The appointment ID must be numeric.")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Appointment not found", "No appointment exists with the given ID.")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid status change", "The appointment cannot move to the requested status.")
	case errors.Is(err, ErrEmployeeBusy):
		httpx.Problem(w, http.StatusConflict, "Employee unavailable", "The employee already has a booking or a schedule exception in that slot.")
	case errors.Is(err, ErrNoServices), errors.Is(err, ErrServiceInactive), errors.Is(err, ErrPastStart):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error("appointments request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The request could not be completed.")
	}
}
