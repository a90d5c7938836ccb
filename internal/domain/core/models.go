package core

import (
	"time"

	"hotelperf/internal/platform/i18n"
)

type Department struct {
	ID          string    `json:"id"`
	Name        i18n.Text `json:"name" validate:"required"`
	Description string    `json:"description"`
	Manager     string    `json:"manager"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone"`
	Extension   string    `json:"extension"`
	Budget      int       `json:"budget" validate:"gte=0"`
	ActualCount int       `json:"actualCount"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variance is the head-count gap between budget and actual staff.
func (d Department) Variance() int {
	return d.ActualCount - d.Budget
}

type Employee struct {
	ID             string     `json:"id"`
	EmployeeNumber string     `json:"employeeNumber"`
	UserID         string     `json:"userId,omitempty"`
	Name           i18n.Text  `json:"name"`
	Position       i18n.Text  `json:"position"`
	DepartmentID   string     `json:"departmentId" validate:"required"`
	Email          string     `json:"email" validate:"omitempty,email"`
	Phone          string     `json:"phone"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	Active         bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Role         string     `json:"role"`
	DepartmentID string     `json:"departmentId,omitempty"`
	Active       bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type EmployeeFilter struct {
	DepartmentID string
	Search       string
	IncludeAll   bool
	Limit        int
	Offset       int
}
