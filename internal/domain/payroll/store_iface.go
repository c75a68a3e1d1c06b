package payroll

import "context"

type StoreAPI interface {
	ListAdjustments(ctx context.Context, schoolID, period string) ([]Adjustment, error)
	UpsertAdjustments(ctx context.Context, schoolID string, lines []Adjustment) error
}

var _ StoreAPI = (*Store)(nil)
