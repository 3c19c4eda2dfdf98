package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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
	r.Route("/clients", func(r chi.Router) {
		r.With(mw.RequireAny(shared.PermClientsView, shared.PermClientsManage)).Get("/", h.list)
		r.With(mw.RequireAny(shared.PermClientsView, shared.PermClientsManage)).Get("/{id}", h.get)
		r.With(mw.RequireAll(shared.PermClientsManage)).Post("/", h.create)
		r.With(mw.RequireAll(shared.PermClientsManage)).Put("/{id}", h.update)
		r.With(mw.RequireAll(shared.PermClientsManage)).Delete("/{id}", h.delete)
	})
}

type clientRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=60"`
	LastName       string `json:"last_name" validate:"required,max=60"`
	DocumentType   string `json:"document_type" validate:"required,oneof=CC CE TI PP"`
	DocumentNumber string `json:"document_number" validate:"required,max=30"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"max=20"`
	IsActive       *bool  `json:"is_active"`
}

func (req clientRequest) toModel() Client {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Client{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		Phone:          req.Phone,
		IsActive:       active,
	}
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
	items, total, err := h.service.ListClients(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": items, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid client ID", "The client ID must be numeric.")
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	client, err := h.service.CreateClient(r.Context(), req.toModel())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid client ID", "The client ID must be numeric.")
		return
	}
	var req clientRequest
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
	client, err := h.service.UpdateClient(r.Context(), model)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// delete attempts a hard delete and falls back to deactivation when the
// client has sale or appointment history.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid client ID", "The client ID must be numeric.")
		return
	}
	err = h.service.DeleteClient(r.Context(), id)
	if errors.Is(err, ErrHasHistory) {
		if err := h.service.Deactivate(r.Context(), id); err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"deactivated": true})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Client not found", "No client exists with the given ID.")
	case errors.Is(err, ErrDocumentTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate document", "A client with this document number already exists.")
	case errors.Is(err, ErrEmailTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate email", "A client with this email already exists.")
	case errors.Is(err, ErrInvalidClient):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error("clients request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The request could not be completed.")
	}
}
