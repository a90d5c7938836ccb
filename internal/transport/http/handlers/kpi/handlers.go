package kpihandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hotelperf/internal/domain/audit"
	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/kpi"
	"hotelperf/internal/platform/i18n"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
	"hotelperf/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, filter kpi.ListFilter) ([]kpi.KPI, error)
	Count(ctx context.Context, filter kpi.ListFilter) (int, error)
	Get(ctx context.Context, kpiID string) (kpi.KPI, error)
	Create(ctx context.Context, k kpi.KPI) (kpi.KPI, error)
	Update(ctx context.Context, kpiID string, k kpi.KPI) (kpi.KPI, error)
	UpdateQuarters(ctx context.Context, kpiID string, patch kpi.QuarterPatch) (kpi.KPI, error)
	UpdateCurrentValue(ctx context.Context, kpiID string, value float64, justification string) (kpi.KPI, error)
	Delete(ctx context.Context, kpiID string) error
	Stats(ctx context.Context, filter kpi.ListFilter) (kpi.Stats, error)
}

type Handler struct {
	Service     Service
	Permissions middleware.PermissionStore
	Audit       shared.AuditRecorder
}

func NewHandler(service Service, permissions middleware.PermissionStore, recorder shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Permissions: permissions, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermKPIsRead, h.Permissions)
	write := middleware.RequirePermission(auth.PermKPIsWrite, h.Permissions)

	r.Route("/kpis", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/stats", h.handleStats)
		r.Route("/{kpiID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(write).Put("/quarterly-results", h.handleQuarterlyResults)
			r.With(write).Patch("/current-value", h.handleCurrentValue)
		})
	})
}

type kpiRequest struct {
	Name              i18n.Text  `json:"name" validate:"required"`
	Description       i18n.Text  `json:"description"`
	CalculationMethod i18n.Text  `json:"calculationMethod"`
	DepartmentID      string     `json:"departmentId" validate:"required"`
	AssignedTo        string     `json:"assignedTo"`
	Target            float64    `json:"target" validate:"gte=0"`
	Unit              string     `json:"unit" validate:"max=16"`
	MeasurementCycle  kpi.Cycle  `json:"measurementCycle" validate:"omitempty,oneof=daily weekly monthly quarterly semi_annual annual"`
	CurrentValue      float64    `json:"currentValue"`
	Status            kpi.Status `json:"status" validate:"omitempty,oneof=pending in_progress completed delayed"`
	Justification     string     `json:"justification"`
}

func (p kpiRequest) toKPI() kpi.KPI {
	return kpi.KPI{
		Name:              p.Name,
		Description:       p.Description,
		CalculationMethod: p.CalculationMethod,
		DepartmentID:      strings.TrimSpace(p.DepartmentID),
		AssignedTo:        strings.TrimSpace(p.AssignedTo),
		Target:            p.Target,
		Unit:              strings.TrimSpace(p.Unit),
		MeasurementCycle:  p.MeasurementCycle,
		CurrentValue:      p.CurrentValue,
		Status:            p.Status,
		Justification:     p.Justification,
	}
}

type kpiView struct {
	kpi.KPI
	DisplayName string `json:"displayName"`
}

func viewKPI(k kpi.KPI, lang string) kpiView {
	return kpiView{KPI: k, DisplayName: k.Name.In(lang)}
}

// departmentScope reports whether the caller is confined to one department and which.
// A supervisor without a department is scoped to the empty department and sees nothing.
func departmentScope(r *http.Request) (string, bool) {
	user, _ := middleware.GetUser(r.Context())
	if user.RoleName == auth.RoleSupervisor {
		return user.DepartmentID, true
	}
	return "", false
}

// inScope reports whether the caller may touch KPIs of departmentID.
func inScope(r *http.Request, departmentID string) bool {
	dep, scoped := departmentScope(r)
	return !scoped || (dep != "" && dep == departmentID)
}

// listFilter builds the query filter; ok is false when the caller can see no KPI at all.
func listFilter(r *http.Request) (kpi.ListFilter, bool) {
	q := r.URL.Query()
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	filter := kpi.ListFilter{
		DepartmentID: strings.TrimSpace(q.Get("departmentId")),
		AssignedTo:   strings.TrimSpace(q.Get("assignedTo")),
		Status:       kpi.Status(q.Get("status")),
		Search:       strings.TrimSpace(q.Get("search")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if dep, scoped := departmentScope(r); scoped {
		if dep == "" {
			return filter, false
		}
		filter.DepartmentID = dep
	}
	return filter, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, ok := listFilter(r)
	if filter.Status != "" && !filter.Status.Valid() {
		api.Fail(w, http.StatusBadRequest, "validation_error", "unknown status filter", middleware.GetRequestID(r.Context()))
		return
	}
	if !ok {
		api.SuccessList(w, []kpiView{}, 0, middleware.GetRequestID(r.Context()))
		return
	}
	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "kpi_list_failed", "failed to list kpis", err)
		return
	}
	kpis, err := h.Service.List(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "kpi_list_failed", "failed to list kpis", err)
		return
	}
	lang := shared.Lang(r)
	out := make([]kpiView, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, viewKPI(k, lang))
	}
	api.SuccessList(w, out, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, ok := listFilter(r)
	if !ok {
		forbidden(w, r)
		return
	}
	stats, err := h.Service.Stats(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "kpi_stats_failed", "failed to compute kpi stats", err)
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

// load fetches the KPI and rejects supervisors reaching outside their department.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (kpi.KPI, bool) {
	k, err := h.Service.Get(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		h.fail(w, r, err)
		return kpi.KPI{}, false
	}
	if !inScope(r, k.DepartmentID) {
		forbidden(w, r)
		return kpi.KPI{}, false
	}
	return k, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	k, ok := h.load(w, r)
	if !ok {
		return
	}
	api.Success(w, viewKPI(k, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) decodeKPI(w http.ResponseWriter, r *http.Request) (kpi.KPI, bool) {
	var payload kpiRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return kpi.KPI{}, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	v.Required("name.ar", payload.Name.AR, "is required")
	v.Required("name.en", payload.Name.EN, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return kpi.KPI{}, false
	}
	k := payload.toKPI()
	if !inScope(r, k.DepartmentID) {
		forbidden(w, r)
		return kpi.KPI{}, false
	}
	return k, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	k, ok := h.decodeKPI(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), k)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "kpi.create", audit.EntityKPI, created.ID, nil, created)
	api.Created(w, viewKPI(created, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}
	k, ok := h.decodeKPI(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), before.ID, k)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "kpi.update", audit.EntityKPI, updated.ID, before, updated)
	api.Success(w, viewKPI(updated, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleQuarterlyResults(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}
	var payload kpi.QuarterPatch
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Service.UpdateQuarters(r.Context(), before.ID, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "kpi.quarterly_results", audit.EntityKPI, updated.ID, before.QuarterResults, updated.QuarterResults)
	api.Success(w, viewKPI(updated, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

type currentValueRequest struct {
	CurrentValue  *float64 `json:"currentValue" validate:"required"`
	Justification string   `json:"justification"`
}

func (h *Handler) handleCurrentValue(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}
	var payload currentValueRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	updated, err := h.Service.UpdateCurrentValue(r.Context(), before.ID, *payload.CurrentValue, strings.TrimSpace(payload.Justification))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "kpi.current_value", audit.EntityKPI, updated.ID, before.CurrentValue, updated.CurrentValue)
	api.Success(w, viewKPI(updated, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), before.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "kpi.delete", audit.EntityKPI, before.ID, before, nil)
	api.Success(w, map[string]string{"id": before.ID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, kpi.ErrKPINotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", requestID)
	case errors.Is(err, kpi.ErrInvalidKPI), errors.Is(err, kpi.ErrInvalidNumber):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		shared.InternalError(w, r, "kpi_request_failed", "kpi request failed", err)
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
}
