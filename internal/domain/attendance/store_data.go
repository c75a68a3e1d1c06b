package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhr/internal/domain/calendar"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListHolidays(ctx context.Context, schoolID string, from, to time.Time) ([]calendar.Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT holiday_date, name
    FROM holidays
    WHERE school_id = $1 AND holiday_date >= $2 AND holiday_date < $3
    ORDER BY holiday_date
  `, schoolID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, err
		}
		h.Date = calendar.Truncate(h.Date)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) ListManualEntries(ctx context.Context, schoolID string, from, to time.Time) ([]ManualEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, entry_date, status, COALESCE(in_time, ''), COALESCE(out_time, '')
    FROM attendance_entries
    WHERE school_id = $1 AND entry_date >= $2 AND entry_date < $3
  `, schoolID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ManualEntry
	for rows.Next() {
		var m ManualEntry
		if err := rows.Scan(&m.EmployeeID, &m.Date, &m.Status, &m.InTime, &m.OutTime); err != nil {
			return nil, err
		}
		m.Date = calendar.Truncate(m.Date)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListPunches(ctx context.Context, schoolID string, from, to time.Time) ([]Punch, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, punched_at, punch_type, is_late, is_early
    FROM attendance_punches
    WHERE school_id = $1 AND punched_at >= $2 AND punched_at < $3
    ORDER BY punched_at
  `, schoolID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Punch
	for rows.Next() {
		var p Punch
		if err := rows.Scan(&p.EmployeeID, &p.At, &p.Type, &p.Late, &p.Early); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListCorrections(ctx context.Context, schoolID string, from, to time.Time) ([]Correction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, correction_date, status,
           COALESCE(in_time, ''), COALESCE(out_time, ''),
           COALESCE(corrected_by::text, ''), updated_at
    FROM attendance_corrections
    WHERE school_id = $1 AND correction_date >= $2 AND correction_date < $3
  `, schoolID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var c Correction
		if err := rows.Scan(&c.EmployeeID, &c.Date, &c.Status, &c.InTime, &c.OutTime, &c.CorrectedBy, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Date = calendar.Truncate(c.Date)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCorrections replaces the correction for each employee and date in one transaction.
func (s *Store) UpsertCorrections(ctx context.Context, schoolID string, items []Correction) error {
	if len(items) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range items {
			batch.Queue(`
        INSERT INTO attendance_corrections (school_id, employee_id, correction_date, status, in_time, out_time, corrected_by, updated_at)
        VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''),$7,$8)
        ON CONFLICT (school_id, employee_id, correction_date)
        DO UPDATE SET status = EXCLUDED.status,
                      in_time = EXCLUDED.in_time,
                      out_time = EXCLUDED.out_time,
                      corrected_by = EXCLUDED.corrected_by,
                      updated_at = EXCLUDED.updated_at
      `, schoolID, c.EmployeeID, c.Date, c.Status, c.InTime, c.OutTime, c.CorrectedBy, c.UpdatedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *Store) GetApproval(ctx context.Context, schoolID, period string) (*Approval, error) {
	var a Approval
	err := s.DB.QueryRow(ctx, `
    SELECT school_id, period, approved_by::text, approved_at
    FROM attendance_month_approvals
    WHERE school_id = $1 AND period = $2
  `, schoolID, period).Scan(&a.SchoolID, &a.Period, &a.ApprovedBy, &a.ApprovedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertApproval writes the record unless one already exists and returns
// whichever record is stored, so concurrent approvals converge.
func (s *Store) InsertApproval(ctx context.Context, approval Approval) (Approval, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_month_approvals (school_id, period, approved_by, approved_at)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (school_id, period) DO NOTHING
  `, approval.SchoolID, approval.Period, approval.ApprovedBy, approval.ApprovedAt); err != nil {
		return Approval{}, err
	}
	stored, err := s.GetApproval(ctx, approval.SchoolID, approval.Period)
	if err != nil {
		return Approval{}, err
	}
	if stored == nil {
		return Approval{}, pgx.ErrNoRows
	}
	return *stored, nil
}
