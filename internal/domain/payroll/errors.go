package payroll

import "errors"

var (
	ErrInvalidCategory  = errors.New("invalid adjustment category")
	ErrNegativeAmount   = errors.New("adjustment amount must not be negative")
	ErrEmployeeRequired = errors.New("adjustment employee is required")
	ErrEmployeeNotFound = errors.New("employee not found in the active roster")
	ErrInvalidFormat    = errors.New("invalid export format")
)
