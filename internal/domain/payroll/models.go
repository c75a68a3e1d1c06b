package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/core"
)

// Adjustment is one typed allowance or deduction line for an employee and month.
type Adjustment struct {
	EmployeeID string          `json:"employeeId"`
	Period     string          `json:"period"`
	Category   string          `json:"category"`
	Label      string          `json:"label"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	UpdatedBy  string          `json:"updatedBy,omitempty"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type LineItem struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
}

// Row is the derived payroll for one employee in one month.
type Row struct {
	EmployeeID      string            `json:"employeeId"`
	FullName        string            `json:"fullName"`
	Designation     string            `json:"designation"`
	Department      string            `json:"department"`
	JoiningDate     *time.Time        `json:"joiningDate,omitempty"`
	Period          string            `json:"period"`
	WorkingDays     int               `json:"workingDays"`
	PresentDays     int               `json:"presentDays"`
	MonthlySalary   decimal.Decimal   `json:"monthlySalary"`
	BasePay         decimal.Decimal   `json:"basePay"`
	Allowances      []LineItem        `json:"allowances"`
	TotalAllowances decimal.Decimal   `json:"totalAllowances"`
	Gross           decimal.Decimal   `json:"gross"`
	Deductions      []LineItem        `json:"deductions"`
	TotalDeductions decimal.Decimal   `json:"totalDeductions"`
	Net             decimal.Decimal   `json:"net"`
	BankAccount     *core.BankAccount `json:"bankAccount,omitempty"`
	Payable         bool              `json:"payable"`
	Warnings        []string          `json:"warnings,omitempty"`
}

// Run is the payroll for every active employee of an approved month.
type Run struct {
	Period      string              `json:"period"`
	WorkingDays int                 `json:"workingDays"`
	Approval    attendance.Approval `json:"approval"`
	Currency    string              `json:"currency"`
	Rows        []Row               `json:"rows"`
}

type BankFileTotals struct {
	PayableCount int             `json:"payableCount"`
	SkippedCount int             `json:"skippedCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// BankFile splits a run into payable transfer lines and skipped rows.
type BankFile struct {
	Title       string         `json:"title"`
	Period      string         `json:"period"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Currency    string         `json:"currency"`
	Payable     []Row          `json:"payable"`
	Skipped     []Row          `json:"skipped"`
	Totals      BankFileTotals `json:"totals"`
}
