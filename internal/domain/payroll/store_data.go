package payroll

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListAdjustments(ctx context.Context, schoolID, period string) ([]Adjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, period, category, amount::text, COALESCE(updated_by::text, ''), updated_at
    FROM salary_adjustments
    WHERE school_id = $1 AND period = $2
    ORDER BY employee_id, category
  `, schoolID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		var line Adjustment
		var amount string
		if err := rows.Scan(&line.EmployeeID, &line.Period, &line.Category, &amount, &line.UpdatedBy, &line.UpdatedAt); err != nil {
			return nil, err
		}
		line.Amount = parseAmount(amount)
		out = append(out, describe(line))
	}
	return out, rows.Err()
}

// UpsertAdjustments replaces the line for each employee, month and category.
func (s *Store) UpsertAdjustments(ctx context.Context, schoolID string, lines []Adjustment) error {
	if len(lines) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, line := range lines {
			batch.Queue(`
        INSERT INTO salary_adjustments (school_id, employee_id, period, category, amount, updated_by, updated_at)
        VALUES ($1,$2,$3,$4,$5::numeric,$6,$7)
        ON CONFLICT (school_id, employee_id, period, category)
        DO UPDATE SET amount = EXCLUDED.amount,
                      updated_by = EXCLUDED.updated_by,
                      updated_at = EXCLUDED.updated_at
      `, schoolID, line.EmployeeID, line.Period, line.Category, line.Amount.String(), line.UpdatedBy, line.UpdatedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
