package kpi

import "errors"

var (
	ErrKPINotFound   = errors.New("kpi not found")
	ErrInvalidKPI    = errors.New("invalid kpi")
	ErrInvalidNumber = errors.New("kpi values must be finite numbers within range")
)
