package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
)

// Service reads the attendance sources, reconciles them and owns the month
// approval workflow. Nothing is cached between calls.
type Service struct {
	Store     StoreAPI
	Employees core.StoreAPI
	loc       *time.Location
	now       func() time.Time
}

func NewService(store StoreAPI, employees core.StoreAPI) *Service {
	return &Service{Store: store, Employees: employees, loc: time.UTC, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithLocation sets the school time zone used to date punches.
func (s *Service) WithLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// snapshot is one consistent read of a month's inputs.
type snapshot struct {
	employees []core.Employee
	sources   Sources
}

// load fetches the roster and every source for the month concurrently.
func (s *Service) load(ctx context.Context, schoolID string, period calendar.Period) (snapshot, error) {
	from := period.Start()
	to := period.End().AddDate(0, 0, 1)
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.employees, err = s.Employees.ListActiveEmployees(gctx, schoolID)
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.sources.Holidays, err = s.Store.ListHolidays(gctx, schoolID, from, to)
		if err != nil {
			return fmt.Errorf("list holidays: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.sources.Manual, err = s.Store.ListManualEntries(gctx, schoolID, from, to)
		if err != nil {
			return fmt.Errorf("list manual entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// widen by a day each side; punches are dated in school time
		var err error
		snap.sources.Punches, err = s.Store.ListPunches(gctx, schoolID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("list punches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.sources.Corrections, err = s.Store.ListCorrections(gctx, schoolID, from, to)
		if err != nil {
			return fmt.Errorf("list corrections: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// Grid reconciles the month for every active employee.
func (s *Service) Grid(ctx context.Context, schoolID string, period calendar.Period) (Grid, []core.Employee, error) {
	snap, err := s.load(ctx, schoolID, period)
	if err != nil {
		return Grid{}, nil, err
	}
	return Reconcile(period, snap.employees, snap.sources, s.loc), snap.employees, nil
}

// Review returns the reconciled grid with the month's approval state.
func (s *Service) Review(ctx context.Context, schoolID string, period calendar.Period) (Review, error) {
	approval, err := s.Store.GetApproval(ctx, schoolID, period.String())
	if err != nil {
		return Review{}, fmt.Errorf("get approval: %w", err)
	}
	grid, employees, err := s.Grid(ctx, schoolID, period)
	if err != nil {
		return Review{}, err
	}
	return Review{Grid: grid, State: StateOf(approval), Approval: approval, Employees: employees}, nil
}

// Report builds one of the monthly, late, early or absent reports. When day
// is set the period is the month containing it.
func (s *Service) Report(ctx context.Context, schoolID, mode string, period calendar.Period, day *time.Time) (Report, error) {
	if !IsReportMode(mode) {
		return Report{}, ErrInvalidReportMode
	}
	if day != nil {
		period = calendar.PeriodOf(*day)
	}
	snap, err := s.load(ctx, schoolID, period)
	if err != nil {
		return Report{}, err
	}
	grid := Reconcile(period, snap.employees, snap.sources, s.loc)
	return BuildReport(mode, grid, snap.sources.Punches, s.loc, day)
}

// Status reports the approval record for a month, nil while open.
func (s *Service) Status(ctx context.Context, schoolID string, period calendar.Period) (*Approval, error) {
	return s.Store.GetApproval(ctx, schoolID, period.String())
}

// RequireApproved fails with ErrMonthNotApproved unless the month is locked.
func (s *Service) RequireApproved(ctx context.Context, schoolID string, period calendar.Period) (Approval, error) {
	approval, err := s.Store.GetApproval(ctx, schoolID, period.String())
	if err != nil {
		return Approval{}, fmt.Errorf("get approval: %w", err)
	}
	if approval == nil {
		return Approval{}, fmt.Errorf("%w: %s", ErrMonthNotApproved, period)
	}
	return *approval, nil
}

// SaveCorrections upserts a batch of corrections for an open month. Within a
// batch the last item for an employee and date wins.
func (s *Service) SaveCorrections(ctx context.Context, schoolID string, period calendar.Period, actor string, items []Correction) ([]Correction, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, ErrActorRequired
	}
	normalized, err := s.normalize(period, actor, items)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(normalized))
	for i, item := range normalized {
		ids[i] = item.EmployeeID
	}
	if err := s.RequireRoster(ctx, schoolID, ids); err != nil {
		return nil, err
	}
	approval, err := s.Store.GetApproval(ctx, schoolID, period.String())
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	if err := CanCorrect(approval); err != nil {
		return nil, err
	}
	if err := s.Store.UpsertCorrections(ctx, schoolID, normalized); err != nil {
		return nil, fmt.Errorf("upsert corrections: %w", err)
	}
	return normalized, nil
}

// RequireRoster loads the active roster once and fails with
// core.ErrUnknownEmployee on the first id that is not on it.
func (s *Service) RequireRoster(ctx context.Context, schoolID string, ids []string) error {
	employees, err := s.Employees.ListActiveEmployees(ctx, schoolID)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	known := make(map[string]struct{}, len(employees))
	for _, emp := range employees {
		known[emp.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", core.ErrUnknownEmployee, id)
		}
	}
	return nil
}

// Approve locks the month. Trailing corrections are saved first so the
// approval observes them. Approving an approved month without corrections is
// a no-op that returns the existing record.
func (s *Service) Approve(ctx context.Context, schoolID string, period calendar.Period, actor string, trailing []Correction) (Approval, bool, error) {
	if strings.TrimSpace(actor) == "" {
		return Approval{}, false, ErrActorRequired
	}
	if len(trailing) > 0 {
		if _, err := s.SaveCorrections(ctx, schoolID, period, actor, trailing); err != nil {
			return Approval{}, false, err
		}
	}

	existing, err := s.Store.GetApproval(ctx, schoolID, period.String())
	if err != nil {
		return Approval{}, false, fmt.Errorf("get approval: %w", err)
	}
	next, changed, err := Approve(existing, schoolID, period.String(), actor, s.now())
	if err != nil || !changed {
		return next, false, err
	}
	stored, err := s.Store.InsertApproval(ctx, next)
	if err != nil {
		return Approval{}, false, fmt.Errorf("insert approval: %w", err)
	}
	// a concurrent approver may have won the insert
	return stored, stored.ApprovedBy == next.ApprovedBy && stored.ApprovedAt.Equal(next.ApprovedAt), nil
}

func (s *Service) normalize(period calendar.Period, actor string, items []Correction) ([]Correction, error) {
	now := s.now().UTC()
	order := make([]dayKey, 0, len(items))
	byKey := make(map[dayKey]Correction, len(items))
	for i, item := range items {
		item.EmployeeID = strings.TrimSpace(item.EmployeeID)
		if item.EmployeeID == "" {
			return nil, fmt.Errorf("item %d: %w", i, ErrEmployeeRequired)
		}
		if !IsRecordedStatus(item.Status) {
			return nil, fmt.Errorf("item %d: %w: %q", i, ErrInvalidStatus, item.Status)
		}
		item.Date = calendar.Truncate(item.Date)
		if !period.Contains(item.Date) {
			return nil, fmt.Errorf("item %d: %w: %s", i, ErrOutsidePeriod, calendar.DateKey(item.Date))
		}
		if err := validClock(item.InTime); err != nil {
			return nil, fmt.Errorf("item %d inTime: %w", i, err)
		}
		if err := validClock(item.OutTime); err != nil {
			return nil, fmt.Errorf("item %d outTime: %w", i, err)
		}
		item.CorrectedBy = actor
		item.UpdatedAt = now

		key := dayKey{item.EmployeeID, calendar.DateKey(item.Date)}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = item
	}
	out := make([]Correction, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out, nil
}

func validClock(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(clockLayout, value); err != nil {
		return ErrInvalidClock
	}
	return nil
}
