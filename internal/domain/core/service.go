package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hotelperf/internal/domain/auth"
)

type StoreAPI interface {
	ListDepartments(ctx context.Context, includeInactive bool) ([]Department, error)
	GetDepartment(ctx context.Context, departmentID string) (Department, error)
	CreateDepartment(ctx context.Context, dep Department) (string, error)
	UpdateDepartment(ctx context.Context, departmentID string, dep Department) error
	DepartmentHasEmployees(ctx context.Context, departmentID string) (bool, error)
	DeactivateDepartment(ctx context.Context, departmentID string) error
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	CountEmployees(ctx context.Context, filter EmployeeFilter) (int, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
	CreateEmployee(ctx context.Context, emp Employee) (string, error)
	UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error
	DeactivateEmployee(ctx context.Context, employeeID string) error
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (string, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListDepartments(ctx context.Context, includeInactive bool) ([]Department, error) {
	return s.store.ListDepartments(ctx, includeInactive)
}

func (s *Service) GetDepartment(ctx context.Context, departmentID string) (Department, error) {
	return s.store.GetDepartment(ctx, departmentID)
}

func (s *Service) CreateDepartment(ctx context.Context, dep Department) (Department, error) {
	dep.Name = dep.Name.Trimmed()
	if !dep.Name.Complete() {
		return Department{}, fmt.Errorf("%w: department name is required in both languages", ErrInvalidInput)
	}
	id, err := s.store.CreateDepartment(ctx, dep)
	if err != nil {
		return Department{}, err
	}
	dep.ID = id
	dep.Active = true
	return dep, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID string, dep Department) (Department, error) {
	dep.Name = dep.Name.Trimmed()
	if !dep.Name.Complete() {
		return Department{}, fmt.Errorf("%w: department name is required in both languages", ErrInvalidInput)
	}
	if err := s.store.UpdateDepartment(ctx, departmentID, dep); err != nil {
		return Department{}, err
	}
	return s.store.GetDepartment(ctx, departmentID)
}

func (s *Service) DeactivateDepartment(ctx context.Context, departmentID string) error {
	inUse, err := s.store.DepartmentHasEmployees(ctx, departmentID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrDepartmentInUse
	}
	return s.store.DeactivateDepartment(ctx, departmentID)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	return s.store.ListEmployees(ctx, filter)
}

func (s *Service) CountEmployees(ctx context.Context, filter EmployeeFilter) (int, error) {
	return s.store.CountEmployees(ctx, filter)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}

func (s *Service) CreateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	if err := normalizeEmployee(&emp); err != nil {
		return Employee{}, err
	}
	if _, err := s.store.GetDepartment(ctx, emp.DepartmentID); err != nil {
		return Employee{}, err
	}
	id, err := s.store.CreateEmployee(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) (Employee, error) {
	current, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if strings.TrimSpace(emp.EmployeeNumber) == "" {
		emp.EmployeeNumber = current.EmployeeNumber
	}
	if err := normalizeEmployee(&emp); err != nil {
		return Employee{}, err
	}
	if _, err := s.store.GetDepartment(ctx, emp.DepartmentID); err != nil {
		return Employee{}, err
	}
	if err := s.store.UpdateEmployee(ctx, employeeID, emp); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) DeactivateEmployee(ctx context.Context, employeeID string) error {
	return s.store.DeactivateEmployee(ctx, employeeID)
}

// ListUsers pages users by username; a zero limit returns every user.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	return s.store.ListUsers(ctx, limit, offset)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.store.CountUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, u User, password string) (User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Name = strings.TrimSpace(u.Name)
	if u.Username == "" || u.Name == "" {
		return User{}, fmt.Errorf("%w: username and name are required", ErrInvalidInput)
	}
	if _, ok := auth.RolePermissions[u.Role]; !ok {
		return User{}, ErrInvalidRole
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	id, err := s.store.CreateUser(ctx, u, hash)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	u.Active = true
	return u, nil
}

// NewEmployeeNumber returns a generated staff number of the form EMP-XXXXXXXX.
func NewEmployeeNumber() string {
	return "EMP-" + strings.ToUpper(uuid.NewString()[:8])
}

func normalizeEmployee(emp *Employee) error {
	emp.Name = emp.Name.Trimmed()
	emp.Position = emp.Position.Trimmed()
	if !emp.Name.Complete() {
		return fmt.Errorf("%w: employee name is required in both languages", ErrInvalidInput)
	}
	if !emp.Position.Complete() {
		return fmt.Errorf("%w: position is required in both languages", ErrInvalidInput)
	}
	if strings.TrimSpace(emp.DepartmentID) == "" {
		return fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))
	emp.Phone = strings.TrimSpace(emp.Phone)
	emp.EmployeeNumber = strings.TrimSpace(emp.EmployeeNumber)
	if emp.EmployeeNumber == "" {
		emp.EmployeeNumber = NewEmployeeNumber()
	}
	return nil
}
