package evaluationhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/core"
	"hotelperf/internal/domain/evaluation"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
	"hotelperf/internal/transport/http/shared"
)

type Service interface {
	ListCriteria(ctx context.Context, activeOnly bool) ([]evaluation.Criterion, error)
	GetCriterion(ctx context.Context, criterionID string) (evaluation.Criterion, error)
	CreateCriterion(ctx context.Context, criterion evaluation.Criterion) (evaluation.Criterion, error)
	UpdateCriterion(ctx context.Context, criterionID string, patch evaluation.Criterion) (evaluation.Criterion, error)
	DeactivateCriterion(ctx context.Context, criterionID string) error
	Get(ctx context.Context, evaluationID string) (evaluation.Evaluation, error)
	List(ctx context.Context, filter evaluation.ListFilter) ([]evaluation.Evaluation, error)
	Count(ctx context.Context, filter evaluation.ListFilter) (int, error)
	Create(ctx context.Context, in evaluation.CreateInput) (evaluation.Evaluation, error)
	Update(ctx context.Context, evaluationID string, in evaluation.UpdateInput) (evaluation.Evaluation, error)
	Sign(ctx context.Context, evaluationID string, in evaluation.SignInput) (evaluation.Evaluation, error)
	Deactivate(ctx context.Context, evaluationID string) error
	Summary(ctx context.Context, filter evaluation.ListFilter) (evaluation.Summary, error)
}

// Directory resolves staff records for access scoping and reports.
type Directory interface {
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

type Handler struct {
	Service     Service
	Directory   Directory
	Permissions middleware.PermissionStore
	Audit       shared.AuditRecorder
}

func NewHandler(service Service, directory Directory, permissions middleware.PermissionStore, recorder shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Directory: directory, Permissions: permissions, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	criteriaRead := middleware.RequirePermission(auth.PermCriteriaRead, h.Permissions)
	criteriaWrite := middleware.RequirePermission(auth.PermCriteriaWrite, h.Permissions)
	read := middleware.RequirePermission(auth.PermEvaluationsRead, h.Permissions)
	write := middleware.RequirePermission(auth.PermEvaluationsWrite, h.Permissions)
	sign := middleware.RequirePermission(auth.PermEvaluationsSign, h.Permissions)

	r.Route("/evaluation/criteria", func(r chi.Router) {
		r.With(criteriaRead).Get("/", h.handleListCriteria)
		r.With(criteriaWrite).Post("/", h.handleCreateCriterion)
		r.Route("/{criterionID}", func(r chi.Router) {
			r.With(criteriaRead).Get("/", h.handleGetCriterion)
			r.With(criteriaWrite).Put("/", h.handleUpdateCriterion)
			r.With(criteriaWrite).Delete("/", h.handleDeactivateCriterion)
		})
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/summary", h.handleSummary)
		r.Route("/{evaluationID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDeactivate)
			r.With(sign).Post("/signatures", h.handleSign)
			r.With(read).Get("/report.pdf", h.handleReport)
		})
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluation.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
	case errors.Is(err, evaluation.ErrCriterionNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation criterion not found", requestID)
	case errors.Is(err, evaluation.ErrEmployeeNotFound), errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, evaluation.ErrEvaluationExists):
		api.Fail(w, http.StatusConflict, "evaluation_exists", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrRevisionConflict):
		api.Fail(w, http.StatusConflict, "revision_conflict", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrSectionLocked):
		api.Fail(w, http.StatusConflict, "section_locked", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrEvaluationInactive):
		api.Fail(w, http.StatusConflict, "evaluation_inactive", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrInvalidTransition):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrInvalidStatus),
		errors.Is(err, evaluation.ErrUnknownCriterion),
		errors.Is(err, evaluation.ErrRatingOutOfRange),
		errors.Is(err, evaluation.ErrInvalidNumber),
		errors.Is(err, evaluation.ErrUnknownSigner),
		errors.Is(err, evaluation.ErrCommentsNotAllowed),
		errors.Is(err, evaluation.ErrPeriodRequired),
		errors.Is(err, evaluation.ErrInvalidCriterion):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		shared.InternalError(w, r, "request_failed", "request failed", err)
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
}

func (h *Handler) hasPermission(r *http.Request, permission string) bool {
	return middleware.HasPermission(r, h.Permissions, permission)
}
