package attendance

import (
	"context"
	"time"

	"schoolhr/internal/domain/calendar"
)

// StoreAPI is the read side of the attendance sources plus the two writes
// owned by the approval workflow. Ranges are half-open: [from, to).
type StoreAPI interface {
	ListHolidays(ctx context.Context, schoolID string, from, to time.Time) ([]calendar.Holiday, error)
	ListManualEntries(ctx context.Context, schoolID string, from, to time.Time) ([]ManualEntry, error)
	ListPunches(ctx context.Context, schoolID string, from, to time.Time) ([]Punch, error)
	ListCorrections(ctx context.Context, schoolID string, from, to time.Time) ([]Correction, error)
	UpsertCorrections(ctx context.Context, schoolID string, items []Correction) error
	GetApproval(ctx context.Context, schoolID, period string) (*Approval, error)
	InsertApproval(ctx context.Context, approval Approval) (Approval, error)
}

var _ StoreAPI = (*Store)(nil)
