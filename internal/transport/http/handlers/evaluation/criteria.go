package evaluationhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotelperf/internal/domain/audit"
	"hotelperf/internal/domain/evaluation"
	"hotelperf/internal/platform/i18n"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
	"hotelperf/internal/transport/http/shared"
)

type criterionRequest struct {
	Name              i18n.Text                     `json:"name" validate:"required"`
	Description       i18n.Text                     `json:"description"`
	Category          evaluation.Category           `json:"category" validate:"required"`
	Section           evaluation.Section            `json:"section" validate:"required,oneof=hod hr gm"`
	MaxScore          float64                       `json:"maxScore" validate:"gte=0"`
	Weight            float64                       `json:"weight" validate:"gte=0"`
	SubCriteria       []evaluation.SubCriterion     `json:"subCriteria"`
	PerformanceLevels []evaluation.PerformanceLevel `json:"performanceLevels" validate:"max=5"`
}

func (c criterionRequest) criterion() evaluation.Criterion {
	return evaluation.Criterion{
		Name:              c.Name,
		Description:       c.Description,
		Category:          c.Category,
		Section:           c.Section,
		MaxScore:          c.MaxScore,
		Weight:            c.Weight,
		SubCriteria:       c.SubCriteria,
		PerformanceLevels: c.PerformanceLevels,
	}
}

type criterionView struct {
	evaluation.Criterion
	DisplayName  string `json:"displayName"`
	CategoryText string `json:"categoryLabel"`
	SectionText  string `json:"sectionLabel"`
}

func viewCriterion(c evaluation.Criterion, lang string) criterionView {
	return criterionView{
		Criterion:    c,
		DisplayName:  c.Name.In(lang),
		CategoryText: c.Category.Name().In(lang),
		SectionText:  c.Section.Name().In(lang),
	}
}

func (h *Handler) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("includeInactive") != "true"
	criteria, err := h.Service.ListCriteria(r.Context(), activeOnly)
	if err != nil {
		shared.InternalError(w, r, "criteria_list_failed", "failed to list evaluation criteria", err)
		return
	}
	section := evaluation.Section(r.URL.Query().Get("section"))
	lang := shared.Lang(r)
	out := make([]criterionView, 0, len(criteria))
	for _, c := range criteria {
		if section != "" && c.Section != section {
			continue
		}
		out = append(out, viewCriterion(c, lang))
	}
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	api.SuccessList(w, shared.Page(out, page), len(out), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCriterion(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetCriterion(r.Context(), chi.URLParam(r, "criterionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, viewCriterion(c, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCriterion(w http.ResponseWriter, r *http.Request) {
	var payload criterionRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	user, _ := middleware.GetUser(r.Context())
	c := payload.criterion()
	c.CreatedBy = user.UserID
	created, err := h.Service.CreateCriterion(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.criterion.create", audit.EntityCriterion, created.ID, nil, created)
	api.Created(w, viewCriterion(created, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	criterionID := chi.URLParam(r, "criterionID")
	before, err := h.Service.GetCriterion(r.Context(), criterionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var payload criterionRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.UpdateCriterion(r.Context(), criterionID, payload.criterion())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.criterion.update", audit.EntityCriterion, criterionID, before, updated)
	api.Success(w, viewCriterion(updated, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateCriterion(w http.ResponseWriter, r *http.Request) {
	criterionID := chi.URLParam(r, "criterionID")
	if err := h.Service.DeactivateCriterion(r.Context(), criterionID); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.criterion.deactivate", audit.EntityCriterion, criterionID, nil, nil)
	api.Success(w, map[string]string{"id": criterionID, "status": "inactive"}, middleware.GetRequestID(r.Context()))
}
