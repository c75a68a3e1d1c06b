package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	cryptoutil "schoolhr/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `
    SELECT id, full_name, status,
           COALESCE(salary, 0)::text,
           salary_enc,
           COALESCE(designation, ''),
           COALESCE(department, ''),
           joining_date
    FROM employees`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEmployee(row rowScanner) (Employee, error) {
	var emp Employee
	var salaryPlain string
	var salaryEnc []byte
	var joining *time.Time
	if err := row.Scan(&emp.ID, &emp.FullName, &emp.Status, &salaryPlain, &salaryEnc,
		&emp.Designation, &emp.Department, &joining); err != nil {
		return Employee{}, err
	}
	emp.Salary = decryptDecimalFallback(s.Crypto, salaryEnc, salaryPlain)
	emp.JoiningDate = joining
	return emp, nil
}

// ListActiveEmployees loads the active roster and attaches each employee's
// primary bank account with a single batched read.
func (s *Store) ListActiveEmployees(ctx context.Context, schoolID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, employeeColumns+`
    WHERE school_id = $1 AND status = $2
    ORDER BY full_name, id
  `, schoolID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	var ids []string
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
		ids = append(ids, emp.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	accounts, err := s.bankAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].BankAccount = PickBankAccount(accounts[out[i].ID])
	}
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, schoolID, employeeID string) (*Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, employeeColumns+`
    WHERE school_id = $1 AND id = $2
  `, schoolID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	if err != nil {
		return nil, err
	}
	accounts, err := s.bankAccounts(ctx, []string{emp.ID})
	if err != nil {
		return nil, err
	}
	emp.BankAccount = PickBankAccount(accounts[emp.ID])
	return &emp, nil
}

func (s *Store) bankAccounts(ctx context.Context, employeeIDs []string) (map[string][]BankAccount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id,
           COALESCE(account_number, ''),
           account_number_enc,
           COALESCE(routing_code, ''),
           COALESCE(holder_name, ''),
           COALESCE(bank_name, ''),
           is_primary
    FROM employee_bank_accounts
    WHERE employee_id = ANY($1)
    ORDER BY is_primary DESC, created_at
  `, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]BankAccount, len(employeeIDs))
	for rows.Next() {
		var employeeID, numberPlain string
		var numberEnc []byte
		var acct BankAccount
		if err := rows.Scan(&employeeID, &numberPlain, &numberEnc, &acct.RoutingCode, &acct.HolderName, &acct.BankName, &acct.Primary); err != nil {
			return nil, err
		}
		acct.AccountNumber = decryptStringFallback(s.Crypto, numberEnc, numberPlain)
		out[employeeID] = append(out[employeeID], acct)
	}
	return out, rows.Err()
}

func decryptStringFallback(crypto *cryptoutil.Service, encrypted []byte, plain string) string {
	if crypto == nil || !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}

func decryptDecimalFallback(crypto *cryptoutil.Service, encrypted []byte, plain string) decimal.Decimal {
	value := decryptStringFallback(crypto, encrypted, plain)
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
