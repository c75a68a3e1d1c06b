package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
)

// AttendanceSource is the slice of the attendance service payroll depends on.
type AttendanceSource interface {
	RequireApproved(ctx context.Context, schoolID string, period calendar.Period) (attendance.Approval, error)
	Grid(ctx context.Context, schoolID string, period calendar.Period) (attendance.Grid, []core.Employee, error)
	RequireRoster(ctx context.Context, schoolID string, ids []string) error
}

type Service struct {
	Store      StoreAPI
	Attendance AttendanceSource
	Workers    int
	Title      string
	Currency   string
	now        func() time.Time
}

func NewService(store StoreAPI, source AttendanceSource) *Service {
	return &Service{
		Store:      store,
		Attendance: source,
		Workers:    4,
		Title:      "Salary Bank Transfer",
		now:        time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Derive computes payroll for every active employee of an approved month, or
// for a single employee when employeeID is set. It never derives anything for
// an open month.
func (s *Service) Derive(ctx context.Context, schoolID string, period calendar.Period, employeeID string) (Run, error) {
	approval, err := s.Attendance.RequireApproved(ctx, schoolID, period)
	if err != nil {
		return Run{}, err
	}

	var grid attendance.Grid
	var employees []core.Employee
	var lines []Adjustment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		grid, employees, err = s.Attendance.Grid(gctx, schoolID, period)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.Store.ListAdjustments(gctx, schoolID, period.String())
		if err != nil {
			return fmt.Errorf("list adjustments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Run{}, err
	}

	summaries := make(map[string]attendance.Summary, len(grid.Rows))
	for _, row := range grid.Rows {
		summaries[row.EmployeeID] = row.Summary
	}
	byEmployee := make(map[string][]Adjustment)
	for _, line := range lines {
		byEmployee[line.EmployeeID] = append(byEmployee[line.EmployeeID], line)
	}

	if employeeID != "" {
		var match []core.Employee
		for _, emp := range employees {
			if emp.ID == employeeID {
				match = append(match, emp)
			}
		}
		if len(match) == 0 {
			return Run{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		employees = match
	}

	rows := make([]Row, len(employees))
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	fan, fanCtx := errgroup.WithContext(ctx)
	fan.SetLimit(workers)
	for i, emp := range employees {
		fan.Go(func() error {
			if err := fanCtx.Err(); err != nil {
				return err
			}
			summary, ok := summaries[emp.ID]
			if !ok {
				summary = attendance.Summary{WorkingDays: grid.WorkingDays}
			}
			rows[i] = DeriveRow(period.String(), emp, summary, byEmployee[emp.ID])
			return nil
		})
	}
	if err := fan.Wait(); err != nil {
		return Run{}, fmt.Errorf("derive rows: %w", err)
	}

	return Run{
		Period:      period.String(),
		WorkingDays: grid.WorkingDays,
		Approval:    approval,
		Currency:    s.Currency,
		Rows:        rows,
	}, nil
}

// Payslips returns every row, payable or not, so callers can see why someone
// would be excluded from the transfer.
func (s *Service) Payslips(ctx context.Context, schoolID string, period calendar.Period, employeeID string) (Run, error) {
	return s.Derive(ctx, schoolID, period, employeeID)
}

// BankFile builds the transfer file; payable plus skipped always equals the roster.
func (s *Service) BankFile(ctx context.Context, schoolID string, period calendar.Period) (BankFile, error) {
	run, err := s.Derive(ctx, schoolID, period, "")
	if err != nil {
		return BankFile{}, err
	}
	payable, skipped, totals := SplitBankFile(run.Rows)
	return BankFile{
		Title:       s.Title,
		Period:      run.Period,
		GeneratedAt: generatedAt(s.now()),
		Currency:    s.Currency,
		Payable:     payable,
		Skipped:     skipped,
		Totals:      totals,
	}, nil
}

func (s *Service) Adjustments(ctx context.Context, schoolID string, period calendar.Period) ([]Adjustment, error) {
	lines, err := s.Store.ListAdjustments(ctx, schoolID, period.String())
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []Adjustment{}
	}
	return lines, nil
}

// SaveAdjustments upserts lines for a month. Within a batch, and against
// stored lines, the last write for an employee and category wins.
func (s *Service) SaveAdjustments(ctx context.Context, schoolID string, period calendar.Period, actor string, lines []Adjustment) ([]Adjustment, error) {
	now := s.now().UTC()
	type key struct{ employeeID, category string }
	order := make([]key, 0, len(lines))
	latest := make(map[key]Adjustment, len(lines))
	for i, line := range lines {
		line.EmployeeID = strings.TrimSpace(line.EmployeeID)
		if line.EmployeeID == "" {
			return nil, fmt.Errorf("line %d: %w", i, ErrEmployeeRequired)
		}
		if !IsCategory(line.Category) {
			return nil, fmt.Errorf("line %d: %w: %q", i, ErrInvalidCategory, line.Category)
		}
		if line.Amount.IsNegative() {
			return nil, fmt.Errorf("line %d: %w", i, ErrNegativeAmount)
		}
		line.Period = period.String()
		line.Amount = Round(line.Amount)
		line.UpdatedBy = actor
		line.UpdatedAt = now
		k := key{line.EmployeeID, line.Category}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = describe(line)
	}
	out := make([]Adjustment, 0, len(order))
	ids := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
		ids = append(ids, k.employeeID)
	}
	if err := s.Attendance.RequireRoster(ctx, schoolID, ids); err != nil {
		return nil, err
	}
	if err := s.Store.UpsertAdjustments(ctx, schoolID, out); err != nil {
		return nil, fmt.Errorf("upsert adjustments: %w", err)
	}
	return out, nil
}

// describe fills the derived label and type of a line.
func describe(line Adjustment) Adjustment {
	line.Label = CategoryLabel(line.Category)
	line.Type = CategoryType(line.Category)
	return line
}

func parseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
