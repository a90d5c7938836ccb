package evaluationhandler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hotelperf/internal/domain/audit"
	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/core"
	"hotelperf/internal/domain/evaluation"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
	"hotelperf/internal/transport/http/shared"
)

type evaluationView struct {
	evaluation.Evaluation
	PerformanceLabel string `json:"performanceLabel"`
}

func viewEvaluation(e evaluation.Evaluation, lang string) evaluationView {
	return evaluationView{Evaluation: e, PerformanceLabel: evaluation.LevelLabel(e.FinalResult.PerformanceLevel, lang)}
}

// scope narrows what the caller may see: employees only their own evaluations,
// supervisors their department. A restricted scope with neither id set sees nothing.
type scope struct {
	restricted   bool
	employeeID   string
	departmentID string
}

func (h *Handler) callerScope(r *http.Request) (scope, error) {
	user, _ := middleware.GetUser(r.Context())
	switch user.RoleName {
	case auth.RoleEmployee:
		employeeID, err := h.Directory.EmployeeIDByUserID(r.Context(), user.UserID)
		if err != nil && !errors.Is(err, core.ErrEmployeeNotFound) {
			return scope{}, err
		}
		return scope{restricted: true, employeeID: employeeID}, nil
	case auth.RoleSupervisor:
		return scope{restricted: true, departmentID: user.DepartmentID}, nil
	}
	return scope{}, nil
}

func (s scope) allows(e evaluation.Evaluation) bool {
	switch {
	case !s.restricted:
		return true
	case s.employeeID != "":
		return e.EmployeeID == s.employeeID
	case s.departmentID != "":
		return e.DepartmentID == s.departmentID
	}
	return false
}

func (s scope) allowsDepartment(departmentID string) bool {
	return !s.restricted || (s.departmentID != "" && s.departmentID == departmentID)
}

func (s scope) apply(filter *evaluation.ListFilter) bool {
	switch {
	case !s.restricted:
		return true
	case s.employeeID != "":
		filter.EmployeeID = s.employeeID
		return true
	case s.departmentID != "":
		filter.DepartmentID = s.departmentID
		return true
	}
	return false
}

func listFilter(r *http.Request) evaluation.ListFilter {
	q := r.URL.Query()
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	return evaluation.ListFilter{
		EmployeeID:   q.Get("employeeId"),
		EvaluatorID:  q.Get("evaluatorId"),
		DepartmentID: q.Get("departmentId"),
		Period:       strings.TrimSpace(q.Get("period")),
		Status:       evaluation.Status(q.Get("status")),
		IncludeAll:   q.Get("includeInactive") == "true",
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	if filter.Status != "" && !filter.Status.Valid() {
		api.Fail(w, http.StatusBadRequest, "validation_error", "unknown status filter", middleware.GetRequestID(r.Context()))
		return
	}
	sc, err := h.callerScope(r)
	if err != nil {
		shared.InternalError(w, r, "evaluation_list_failed", "failed to list evaluations", err)
		return
	}
	if !sc.apply(&filter) {
		api.SuccessList(w, []evaluationView{}, 0, middleware.GetRequestID(r.Context()))
		return
	}

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "evaluation_list_failed", "failed to list evaluations", err)
		return
	}
	evaluations, err := h.Service.List(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "evaluation_list_failed", "failed to list evaluations", err)
		return
	}
	lang := shared.Lang(r)
	out := make([]evaluationView, 0, len(evaluations))
	for _, e := range evaluations {
		out = append(out, viewEvaluation(e, lang))
	}
	api.SuccessList(w, out, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	filter.Limit, filter.Offset = 0, 0
	sc, err := h.callerScope(r)
	if err != nil {
		shared.InternalError(w, r, "evaluation_summary_failed", "failed to summarize evaluations", err)
		return
	}
	if !sc.apply(&filter) {
		api.Success(w, evaluation.Summary{ByStatus: map[string]int{}, LevelDistribution: map[string]int{}}, middleware.GetRequestID(r.Context()))
		return
	}
	summary, err := h.Service.Summary(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "evaluation_summary_failed", "failed to summarize evaluations", err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

// load fetches the evaluation and enforces the caller's scope. It writes the response on failure.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (evaluation.Evaluation, bool) {
	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		h.fail(w, r, err)
		return evaluation.Evaluation{}, false
	}
	sc, err := h.callerScope(r)
	if err != nil {
		shared.InternalError(w, r, "evaluation_load_failed", "failed to load evaluation", err)
		return evaluation.Evaluation{}, false
	}
	if !sc.allows(e) {
		forbidden(w, r)
		return evaluation.Evaluation{}, false
	}
	return e, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r)
	if !ok {
		return
	}
	api.Success(w, viewEvaluation(e, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

type createRequest struct {
	EmployeeID           string `json:"employeeId" validate:"required"`
	EvaluationPeriod     string `json:"evaluationPeriod" validate:"required"`
	Position             string `json:"position"`
	DepartmentID         string `json:"departmentId"`
	DirectSupervisorName string `json:"directSupervisorName"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	v.Required("evaluationPeriod", payload.EvaluationPeriod, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Directory.GetEmployee(r.Context(), payload.EmployeeID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sc, err := h.callerScope(r)
	if err != nil {
		shared.InternalError(w, r, "evaluation_create_failed", "failed to create evaluation", err)
		return
	}
	if !sc.allowsDepartment(emp.DepartmentID) {
		forbidden(w, r)
		return
	}
	if dep := strings.TrimSpace(payload.DepartmentID); dep != "" && dep != emp.DepartmentID {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "invalid request",
			map[string]string{"departmentId": "must match the employee's department"}, middleware.GetRequestID(r.Context()))
		return
	}

	user, _ := middleware.GetUser(r.Context())
	created, err := h.Service.Create(r.Context(), evaluation.CreateInput{
		EmployeeID:    emp.ID,
		EvaluatorID:   user.UserID,
		EvaluatorName: strings.TrimSpace(payload.DirectSupervisorName),
		Period:        payload.EvaluationPeriod,
		Position:      payload.Position,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.create", audit.EntityEvaluation, created.ID, nil, created)
	api.Created(w, viewEvaluation(created, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}

	var payload evaluation.UpdateInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Status != nil && (*payload.Status == evaluation.StatusApproved || *payload.Status == evaluation.StatusRejected) &&
		*payload.Status != before.Status && !h.hasPermission(r, auth.PermEvaluationsApprove) {
		forbidden(w, r)
		return
	}

	updated, err := h.Service.Update(r.Context(), before.ID, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.update", audit.EntityEvaluation, updated.ID, before, updated)
	api.Success(w, viewEvaluation(updated, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Service.Deactivate(r.Context(), before.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.deactivate", audit.EntityEvaluation, before.ID, before, nil)
	api.Success(w, map[string]string{"id": before.ID, "status": "inactive"}, middleware.GetRequestID(r.Context()))
}

type signRequest struct {
	Signer           string  `json:"signer" validate:"required,oneof=employee general_manager"`
	Signature        string  `json:"signature"`
	EmployeeComments *string `json:"employeeComments" validate:"omitempty,max=4000"`
	Revision         int     `json:"revision"`
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	before, ok := h.load(w, r)
	if !ok {
		return
	}

	var payload signRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	switch payload.Signer {
	case evaluation.SignerGeneralManager:
		if !h.hasPermission(r, auth.PermEvaluationsApprove) {
			forbidden(w, r)
			return
		}
	case evaluation.SignerEmployee:
		user, _ := middleware.GetUser(r.Context())
		employeeID, err := h.Directory.EmployeeIDByUserID(r.Context(), user.UserID)
		if err != nil && !errors.Is(err, core.ErrEmployeeNotFound) {
			shared.InternalError(w, r, "evaluation_sign_failed", "failed to sign evaluation", err)
			return
		}
		if employeeID == "" || employeeID != before.EmployeeID {
			forbidden(w, r)
			return
		}
	}

	signed, err := h.Service.Sign(r.Context(), before.ID, evaluation.SignInput{
		Signer:           payload.Signer,
		Signature:        payload.Signature,
		EmployeeComments: payload.EmployeeComments,
		Revision:         payload.Revision,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "evaluation.sign."+payload.Signer, audit.EntityEvaluation, signed.ID, before.Signatures, signed.Signatures)
	api.Success(w, viewEvaluation(signed, shared.Lang(r)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r)
	if !ok {
		return
	}

	criteria, err := h.Service.ListCriteria(r.Context(), false)
	if err != nil {
		shared.InternalError(w, r, "report_failed", "failed to build report", err)
		return
	}
	byID := make(map[string]evaluation.Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}
	employeeName := e.ExecutiveInfo.ExecutiveName
	if emp, err := h.Directory.GetEmployee(r.Context(), e.EmployeeID); err == nil {
		employeeName = emp.Name.In("en")
	}

	var buf bytes.Buffer
	if err := evaluation.WriteReport(&buf, evaluation.ReportInput{Evaluation: e, EmployeeName: employeeName, Criteria: byID}); err != nil {
		shared.InternalError(w, r, "report_failed", "failed to build report", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="evaluation-%s.pdf"`, e.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
