package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/core"
)

const moneyPlaces = 2

type InputLine struct {
	Type   string
	Amount decimal.Decimal
}

// Round applies half-away-from-zero rounding to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ProratedBase is salary / workingDays * presentDays, zero when there are no working days.
func ProratedBase(salary decimal.Decimal, workingDays, presentDays int) decimal.Decimal {
	if workingDays <= 0 || presentDays <= 0 {
		return decimal.Zero
	}
	return Round(salary.Mul(decimal.NewFromInt(int64(presentDays))).Div(decimal.NewFromInt(int64(workingDays))))
}

func ComputePayroll(base decimal.Decimal, inputs []InputLine) (gross, deductions, net decimal.Decimal) {
	gross = base
	deductions = decimal.Zero
	for _, input := range inputs {
		switch input.Type {
		case ElementTypeAllowance:
			gross = gross.Add(input.Amount)
		case ElementTypeDeduction:
			deductions = deductions.Add(input.Amount)
		}
	}
	gross = Round(gross)
	deductions = Round(deductions)
	net = Round(gross.Sub(deductions))
	return gross, deductions, net
}

// DeriveRow computes one employee's payroll from the attendance summary and
// that employee's adjustment lines for the month.
func DeriveRow(period string, emp core.Employee, summary attendance.Summary, lines []Adjustment) Row {
	row := Row{
		EmployeeID:    emp.ID,
		FullName:      emp.FullName,
		Designation:   emp.Designation,
		Department:    emp.Department,
		JoiningDate:   emp.JoiningDate,
		Period:        period,
		WorkingDays:   summary.WorkingDays,
		PresentDays:   summary.PresentDays,
		MonthlySalary: emp.Salary,
		BasePay:       ProratedBase(emp.Salary, summary.WorkingDays, summary.PresentDays),
		Allowances:    []LineItem{},
		Deductions:    []LineItem{},
		BankAccount:   emp.BankAccount,
	}

	sorted := append([]Adjustment(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return categoryRank(sorted[i].Category) < categoryRank(sorted[j].Category)
	})
	inputs := make([]InputLine, 0, len(sorted))
	for _, line := range sorted {
		kind := CategoryType(line.Category)
		if kind == "" {
			continue
		}
		item := LineItem{Category: line.Category, Label: CategoryLabel(line.Category), Amount: Round(line.Amount)}
		if kind == ElementTypeAllowance {
			row.Allowances = append(row.Allowances, item)
		} else {
			row.Deductions = append(row.Deductions, item)
		}
		inputs = append(inputs, InputLine{Type: kind, Amount: item.Amount})
	}

	row.Gross, row.TotalDeductions, row.Net = ComputePayroll(row.BasePay, inputs)
	row.TotalAllowances = Round(row.Gross.Sub(row.BasePay))

	if !emp.BankAccount.Usable() {
		row.Warnings = append(row.Warnings, WarningMissingBank)
	}
	if !row.Net.IsPositive() {
		row.Warnings = append(row.Warnings, WarningNegativeNet)
	}
	row.Payable = len(row.Warnings) == 0
	return row
}

func categoryRank(name string) int {
	for i, c := range CategoryOrder {
		if c == name {
			return i
		}
	}
	return len(CategoryOrder)
}

// SplitBankFile partitions rows into payable and skipped. Every row lands in
// exactly one of the two lists.
func SplitBankFile(rows []Row) (payable, skipped []Row, totals BankFileTotals) {
	payable = []Row{}
	skipped = []Row{}
	totals.TotalAmount = decimal.Zero
	for _, row := range rows {
		if row.Payable {
			payable = append(payable, row)
			totals.TotalAmount = totals.TotalAmount.Add(row.Net)
			continue
		}
		skipped = append(skipped, row)
	}
	totals.PayableCount = len(payable)
	totals.SkippedCount = len(skipped)
	totals.TotalAmount = Round(totals.TotalAmount)
	return payable, skipped, totals
}
