package audit

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/httpx"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/rbac"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

const (
	defaultDateRange = 7 * 24 * time.Hour
	maxDateRange     = 90 * 24 * time.Hour
)

var errBadFilter = errors.New("audit: invalid filter")

// Handler serves the audit timeline over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

// NewHandler returns a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers the audit endpoints.
func (h *Handler) MountRoutes(r chi.Router, mw *rbac.Middleware) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermAuditView))
		r.Get("/", h.timeline)
		r.Get("/export.csv", h.exportCSV)
	})
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid filters", "Dates must be YYYY-MM-DD and the range at most 90 days.")
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The audit timeline could not be loaded.")
		return
	}
	if result.Entries == nil {
		result.Entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid filters", "Dates must be YYYY-MM-DD and the range at most 90 days.")
		return
	}
	entries, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit export failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The audit export could not be generated.")
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		h.logger.Error("audit csv encode failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "The audit export could not be generated.")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("audit csv write failed", "error", err)
	}
}

// parseFilters reads query parameters. Dates default to the last seven days
// and the window is capped at ninety days to bound the export size.
func (h *Handler) parseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	now := h.now().UTC()

	toStr := strings.TrimSpace(q.Get("to"))
	if toStr == "" {
		toStr = now.Format("2006-01-02")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return TimelineFilters{}, errBadFilter
	}
	// "to" is a calendar day, queried as an exclusive upper bound.
	to = to.Add(24 * time.Hour)

	fromStr := strings.TrimSpace(q.Get("from"))
	if fromStr == "" {
		fromStr = to.Add(-24 * time.Hour).Add(-defaultDateRange).Format("2006-01-02")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return TimelineFilters{}, errBadFilter
	}
	if from.After(to) || to.Sub(from) > maxDateRange+24*time.Hour {
		return TimelineFilters{}, errBadFilter
	}

	filters := TimelineFilters{
		From:   from,
		To:     to,
		Entity: strings.TrimSpace(q.Get("entity")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	if v := strings.TrimSpace(q.Get("actor_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return TimelineFilters{}, errBadFilter
		}
		filters.ActorID = id
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 {
			return TimelineFilters{}, errBadFilter
		}
		filters.Page = page
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return TimelineFilters{}, errBadFilter
		}
		filters.PageSize = size
	}
	return filters, nil
}
