package corehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"hotelperf/internal/domain/audit"
	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/core"
	"hotelperf/internal/platform/i18n"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
	"hotelperf/internal/transport/http/shared"
)

type Service interface {
	ListDepartments(ctx context.Context, includeInactive bool) ([]core.Department, error)
	GetDepartment(ctx context.Context, departmentID string) (core.Department, error)
	CreateDepartment(ctx context.Context, dep core.Department) (core.Department, error)
	UpdateDepartment(ctx context.Context, departmentID string, dep core.Department) (core.Department, error)
	DeactivateDepartment(ctx context.Context, departmentID string) error
	ListEmployees(ctx context.Context, filter core.EmployeeFilter) ([]core.Employee, error)
	CountEmployees(ctx context.Context, filter core.EmployeeFilter) (int, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, emp core.Employee) (core.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID string, emp core.Employee) (core.Employee, error)
	DeactivateEmployee(ctx context.Context, employeeID string) error
	ListUsers(ctx context.Context, limit, offset int) ([]core.User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, u core.User, password string) (core.User, error)
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
	read := middleware.RequirePermission(auth.PermOrgRead, h.Permissions)
	write := middleware.RequirePermission(auth.PermOrgWrite, h.Permissions)

	r.Route("/departments", func(r chi.Router) {
		r.With(read).Get("/", h.handleListDepartments)
		r.With(write).Post("/", h.handleCreateDepartment)
		r.Route("/{departmentID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGetDepartment)
			r.With(write).Put("/", h.handleUpdateDepartment)
			r.With(write).Delete("/", h.handleDeactivateDepartment)
		})
	})
	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleListEmployees)
		r.With(write).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGetEmployee)
			r.With(write).Put("/", h.handleUpdateEmployee)
			r.With(write).Delete("/", h.handleDeactivateEmployee)
		})
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermUsersManage, h.Permissions))
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleCreateUser)
	})
}

type departmentView struct {
	core.Department
	Variance int `json:"variance"`
}

func viewDepartment(dep core.Department) departmentView {
	return departmentView{Department: dep, Variance: dep.Variance()}
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.Service.ListDepartments(r.Context(), r.URL.Query().Get("includeInactive") == "true")
	if err != nil {
		shared.InternalError(w, r, "department_list_failed", "failed to list departments", err)
		return
	}
	out := make([]departmentView, 0, len(deps))
	for _, dep := range deps {
		out = append(out, viewDepartment(dep))
	}
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	api.SuccessList(w, shared.Page(out, page), len(out), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	dep, err := h.Service.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, viewDepartment(dep), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload core.Department
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	dep, err := h.Service.CreateDepartment(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.department.create", audit.EntityDepartment, dep.ID, nil, dep)
	api.Created(w, viewDepartment(dep), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID := chi.URLParam(r, "departmentID")
	before, err := h.Service.GetDepartment(r.Context(), departmentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var payload core.Department
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	dep, err := h.Service.UpdateDepartment(r.Context(), departmentID, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.department.update", audit.EntityDepartment, departmentID, before, dep)
	api.Success(w, viewDepartment(dep), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID := chi.URLParam(r, "departmentID")
	if err := h.Service.DeactivateDepartment(r.Context(), departmentID); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.department.deactivate", audit.EntityDepartment, departmentID, nil, nil)
	api.Success(w, map[string]string{"id": departmentID, "status": "inactive"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	filter := core.EmployeeFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		IncludeAll:   r.URL.Query().Get("includeInactive") == "true",
		Limit:        page.Limit,
		Offset:       page.Offset,
	}

	total, err := h.Service.CountEmployees(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "employee_list_failed", "failed to list employees", err)
		return
	}
	employees, err := h.Service.ListEmployees(r.Context(), filter)
	if err != nil {
		shared.InternalError(w, r, "employee_list_failed", "failed to list employees", err)
		return
	}
	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user, employees[i].UserID == user.UserID)
	}
	api.SuccessList(w, employees, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.FilterEmployeeFields(&emp, user, emp.UserID == user.UserID)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type employeeRequest struct {
	EmployeeNumber string    `json:"employeeNumber"`
	UserID         string    `json:"userId"`
	Name           i18n.Text `json:"name" validate:"required"`
	Position       i18n.Text `json:"position"`
	DepartmentID   string    `json:"departmentId" validate:"required"`
	Email          string    `json:"email" validate:"omitempty,email"`
	Phone          string    `json:"phone" validate:"max=32"`
	HireDate       string    `json:"hireDate"`
}

// decodeEmployee reads and validates an employee payload. It writes the response on failure.
func decodeEmployee(w http.ResponseWriter, r *http.Request) (core.Employee, bool) {
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return core.Employee{}, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	emp := core.Employee{
		EmployeeNumber: strings.TrimSpace(payload.EmployeeNumber),
		UserID:         strings.TrimSpace(payload.UserID),
		Name:           payload.Name.Trimmed(),
		Position:       payload.Position.Trimmed(),
		DepartmentID:   strings.TrimSpace(payload.DepartmentID),
		Email:          strings.TrimSpace(payload.Email),
		Phone:          strings.TrimSpace(payload.Phone),
	}
	if strings.TrimSpace(payload.HireDate) != "" {
		if hired, ok := v.Date("hireDate", payload.HireDate); ok {
			emp.HireDate = &hired
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return core.Employee{}, false
	}
	return emp, true
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeEmployee(w, r)
	if !ok {
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.employee.create", audit.EntityEmployee, emp.ID, nil, emp)
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payload, ok := decodeEmployee(w, r)
	if !ok {
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), employeeID, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.employee.update", audit.EntityEmployee, employeeID, before, emp)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Service.DeactivateEmployee(r.Context(), employeeID); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.employee.deactivate", audit.EntityEmployee, employeeID, nil, nil)
	api.Success(w, map[string]string{"id": employeeID, "status": "inactive"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	total, err := h.Service.CountUsers(r.Context())
	if err != nil {
		shared.InternalError(w, r, "user_list_failed", "failed to list users", err)
		return
	}
	users, err := h.Service.ListUsers(r.Context(), page.Limit, page.Offset)
	if err != nil {
		shared.InternalError(w, r, "user_list_failed", "failed to list users", err)
		return
	}
	api.SuccessList(w, users, total, middleware.GetRequestID(r.Context()))
}

type createUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=admin supervisor employee"`
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if err := validatePassword(payload.Password); err != nil && payload.Password != "" {
		v.Add("password", err.Error())
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), core.User{
		Username:     strings.ToLower(strings.TrimSpace(payload.Username)),
		Name:         payload.Name,
		Email:        strings.TrimSpace(payload.Email),
		Role:         payload.Role,
		DepartmentID: payload.DepartmentID,
	}, payload.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "core.user.create", audit.EntityUser, user.ID, nil, user)
	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

var errWeakPassword = errors.New("must be at least 8 characters with upper case, lower case and a digit")

func validatePassword(password string) error {
	if len(password) < 8 {
		return errWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errWeakPassword
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrDepartmentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", requestID)
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, core.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "duplicate", "record already exists", requestID)
	case errors.Is(err, core.ErrDepartmentInUse):
		api.Fail(w, http.StatusConflict, "department_in_use", err.Error(), requestID)
	case errors.Is(err, core.ErrInvalidRole), errors.Is(err, core.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		shared.InternalError(w, r, "request_failed", "request failed", err)
	}
}
