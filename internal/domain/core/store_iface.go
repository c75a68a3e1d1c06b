package core

import "context"

type StoreAPI interface {
	ListActiveEmployees(ctx context.Context, schoolID string) ([]Employee, error)
	GetEmployee(ctx context.Context, schoolID, employeeID string) (*Employee, error)
}

var _ StoreAPI = (*Store)(nil)
