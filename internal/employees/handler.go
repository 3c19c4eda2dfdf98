package employees

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
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) MountRoutes(r chi.Router, mw *rbac.Middleware) {
	r.Route("/employees", func(r chi.Router) {
		view := mw.RequireAny(shared.PermEmployeesView, shared.PermEmployeesManage)
		manage := mw.RequireAll(shared.PermEmployeesManage)

		r.With(view).Get("/", h.list)
		r.With(view).Get("/{id}", h.get)
		r.With(manage).Post("/", h.create)
		r.With(manage).Put("/{id}", h.update)
		r.With(manage).Delete("/{id}", h.deactivate)

		r.With(mw.RequireAny(shared.PermNoveltiesView, shared.PermNoveltiesManage)).Get("/{id}/novelties", h.listNovelties)
		r.With(mw.RequireAll(shared.PermNoveltiesManage)).Post("/{id}/novelties", h.createNovelty)
		r.With(mw.RequireAll(shared.PermNoveltiesManage)).Delete("/{id}/novelties/{noveltyID}", h.deleteNovelty)
	})
}

type employeeRequest struct {
	FirstName      string  `json:"first_name" validate:"required,max=60"`
	LastName       string  `json:"last_name" validate:"required,max=60"`
	DocumentType   string  `json:"document_type" validate:"required,oneof=CC CE PP"`
	DocumentNumber string  `json:"document_number" validate:"required,max=30"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone" validate:"max=20"`
	SpecialtyIDs   []int64 `json:"specialty_ids" validate:"dive,gt=0"`
	IsActive       *bool   `json:"is_active"`
}

func (req employeeRequest) toModel() Employee {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	specialties := req.SpecialtyIDs
	if specialties == nil {
		specialties = []int64{}
	}
	return Employee{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		Phone:          req.Phone,
		SpecialtyIDs:   specialties,
		IsActive:       active,
	}
}

type noveltyRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartHour string `json:"start_hour" validate:"required,datetime=15:04"`
	EndHour   string `json:"end_hour" validate:"required,datetime=15:04"`
	Reason    string `json:"reason" validate:"max=200"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	in := ListInput{Search: q.Get("search"), Page: page, Limit: limit}
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			in.Active = &active
		}
	}
	items, total, err := h.service.ListEmployees(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": items, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	employee, err := h.service.CreateEmployee(r.Context(), req.toModel())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req employeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	model := req.toModel()
	model.ID = id
	employee, err := h.service.UpdateEmployee(r.Context(), model)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listNovelties(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	novelties, err := h.service.ListNovelties(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if novelties == nil {
		novelties = []Novelty{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"novelties": novelties})
}

func (h *Handler) createNovelty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req noveltyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	novelty, err := h.service.CreateNovelty(r.Context(), Novelty{
		EmployeeID: id,
		StartDate:  startDate,
		EndDate:    endDate,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		Reason:     req.Reason,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, novelty)
}

func (h *Handler) deleteNovelty(w http.ResponseWriter, r *http.Request) {
	noveltyID, ok := h.pathID(w, r, "noveltyID")
	if !ok {
		return
	}
	if err := h.service.DeleteNovelty(r.Context(), noveltyID); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "Path IDs must be positive integers.")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Employee not found", "No matching record exists.")
	case errors.Is(err, ErrDocumentTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate document", "An employee with this document number already exists.")
	case errors.Is(err, ErrNoveltyOverlap):
		httpx.Problem(w, http.StatusConflict, "Novelty overlap", "The schedule exception overlaps an existing one.")
	case errors.Is(err, ErrInvalidEmployee), errors.Is(err, ErrInvalidNovelty):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error("employees request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The request could not be completed.")
	}
}
