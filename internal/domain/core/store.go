package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const departmentColumns = `
    d.id, d.name_ar, d.name_en, d.description, d.manager, d.email, d.phone, d.extension, d.budget,
    (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id AND e.is_active = true),
    d.is_active, d.created_at, d.updated_at
  `

func (s *Store) ListDepartments(ctx context.Context, includeInactive bool) ([]Department, error) {
	query := "SELECT " + departmentColumns + " FROM departments d"
	if !includeInactive {
		query += " WHERE d.is_active = true"
	}
	query += " ORDER BY d.name_en"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		dep, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, departmentID string) (Department, error) {
	dep, err := scanDepartment(s.DB.QueryRow(ctx, "SELECT "+departmentColumns+" FROM departments d WHERE d.id = $1", departmentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return dep, err
}

func (s *Store) CreateDepartment(ctx context.Context, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name_ar, name_en, description, manager, email, phone, extension, budget)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, dep.Name.AR, dep.Name.EN, dep.Description, dep.Manager, dep.Email, dep.Phone, dep.Extension, dep.Budget).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID string, dep Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name_ar = $1, name_en = $2, description = $3, manager = $4, email = $5, phone = $6,
        extension = $7, budget = $8, updated_at = now()
    WHERE id = $9
  `, dep.Name.AR, dep.Name.EN, dep.Description, dep.Manager, dep.Email, dep.Phone, dep.Extension, dep.Budget, departmentID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func (s *Store) DepartmentHasEmployees(ctx context.Context, departmentID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE department_id = $1 AND is_active = true", departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeactivateDepartment(ctx context.Context, departmentID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE departments SET is_active = false, updated_at = now() WHERE id = $1", departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

const employeeColumns = `
    id, employee_number, COALESCE(user_id::text, ''), name_ar, name_en, position_ar, position_en,
    COALESCE(department_id::text, ''), email, phone, hire_date, is_active, created_at, updated_at
  `

func employeeFilterClause(filter EmployeeFilter) (string, []any) {
	var clauses []string
	var args []any
	if !filter.IncludeAll {
		clauses = append(clauses, "is_active = true")
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name_ar ILIKE $%d OR name_en ILIKE $%d OR employee_number ILIKE $%d)", n, n, n))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	where, args := employeeFilterClause(filter)
	query := "SELECT " + employeeColumns + " FROM employees" + where + " ORDER BY name_en"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// CountEmployees ignores Limit and Offset.
func (s *Store) CountEmployees(ctx context.Context, filter EmployeeFilter) (int, error) {
	where, args := employeeFilterClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return id, err
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees
      (employee_number, user_id, name_ar, name_en, position_ar, position_en, department_id, email, phone, hire_date)
    VALUES ($1, NULLIF($2,'')::uuid, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, CURRENT_DATE))
    RETURNING id
  `, emp.EmployeeNumber, emp.UserID, emp.Name.AR, emp.Name.EN, emp.Position.AR, emp.Position.EN,
		emp.DepartmentID, emp.Email, emp.Phone, emp.HireDate).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1, user_id = NULLIF($2,'')::uuid, name_ar = $3, name_en = $4,
        position_ar = $5, position_en = $6, department_id = $7, email = $8, phone = $9,
        hire_date = COALESCE($10, hire_date), updated_at = now()
    WHERE id = $11
  `, emp.EmployeeNumber, emp.UserID, emp.Name.AR, emp.Name.EN, emp.Position.AR, emp.Position.EN,
		emp.DepartmentID, emp.Email, emp.Phone, emp.HireDate, employeeID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) DeactivateEmployee(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET is_active = false, updated_at = now() WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.username, u.name, COALESCE(u.email, ''), r.name, COALESCE(u.department_id::text, ''),
           u.is_active, u.last_login, u.created_at
    FROM users u
    JOIN roles r ON u.role_id = r.id
    ORDER BY u.username
    LIMIT NULLIF($1, -1) OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Role, &u.DepartmentID, &u.Active, &u.LastLogin, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&total)
	return total, err
}

func (s *Store) CreateUser(ctx context.Context, u User, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, name, email, password_hash, role_id, department_id)
    SELECT $1, $2, NULLIF($3,''), $4, r.id, NULLIF($6,'')::uuid
    FROM roles r
    WHERE r.name = $5
    RETURNING id
  `, u.Username, u.Name, u.Email, passwordHash, u.Role, u.DepartmentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvalidRole
	}
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func scanDepartment(row pgx.Row) (Department, error) {
	var dep Department
	err := row.Scan(&dep.ID, &dep.Name.AR, &dep.Name.EN, &dep.Description, &dep.Manager, &dep.Email, &dep.Phone,
		&dep.Extension, &dep.Budget, &dep.ActualCount, &dep.Active, &dep.CreatedAt, &dep.UpdatedAt)
	return dep, err
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeNumber, &emp.UserID, &emp.Name.AR, &emp.Name.EN, &emp.Position.AR,
		&emp.Position.EN, &emp.DepartmentID, &emp.Email, &emp.Phone, &emp.HireDate, &emp.Active, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
