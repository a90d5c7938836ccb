package core

import "errors"

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentInUse    = errors.New("department still has active employees")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrInvalidRole        = errors.New("unknown role")
	ErrInvalidInput       = errors.New("invalid input")
)
