package core

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnknownEmployee  = errors.New("employee is not on the school's active roster")
)
