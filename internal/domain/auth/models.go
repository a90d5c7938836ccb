package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID       string
	RoleID       string
	RoleName     string
	DepartmentID string
}

type AuthUser struct {
	ID           string
	Username     string
	RoleID       string
	RoleName     string
	DepartmentID string
	Password     string
}

type Profile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Role         string     `json:"role"`
	RoleLabel    string     `json:"roleLabel"`
	DepartmentID string     `json:"departmentId,omitempty"`
	Permissions  []string   `json:"permissions"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}
