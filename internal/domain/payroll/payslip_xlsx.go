package payroll

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const payslipSheet = "Payslips"

// WritePayslipWorkbook renders one row per employee with each adjustment
// category in its own column.
func WritePayslipWorkbook(w io.Writer, run Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payslipSheet); err != nil {
		return err
	}

	header := []any{"Employee ID", "Name", "Designation", "Department", "Joining Date", "Working Days", "Present Days", "Monthly Salary", "Base Pay"}
	for _, c := range CategoryOrder {
		header = append(header, CategoryLabel(c))
	}
	header = append(header, "Gross", "Total Deductions", "Net", "Account Number", "Payable", "Warnings")
	if err := f.SetSheetRow(payslipSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(payslipSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	for i, row := range run.Rows {
		byCategory := map[string]decimal.Decimal{}
		for _, item := range append(append([]LineItem{}, row.Allowances...), row.Deductions...) {
			byCategory[item.Category] = item.Amount
		}
		joining := ""
		if row.JoiningDate != nil {
			joining = row.JoiningDate.Format("2006-01-02")
		}
		account := ""
		if row.BankAccount != nil {
			account = row.BankAccount.AccountNumber
		}
		values := []any{row.EmployeeID, row.FullName, row.Designation, row.Department, joining,
			row.WorkingDays, row.PresentDays, row.MonthlySalary.InexactFloat64(), row.BasePay.InexactFloat64()}
		for _, c := range CategoryOrder {
			values = append(values, byCategory[c].InexactFloat64())
		}
		values = append(values, row.Gross.InexactFloat64(), row.TotalDeductions.InexactFloat64(), row.Net.InexactFloat64(),
			account, row.Payable, strings.Join(row.Warnings, ","))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(payslipSheet, cell, &values); err != nil {
			return err
		}
	}

	if len(run.Rows) > 0 {
		// monthly salary through net
		end, err := excelize.CoordinatesToCellName(len(header)-3, len(run.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(payslipSheet, "H2", end, money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(payslipSheet, "A", lastCol, 16); err != nil {
		return err
	}
	return f.Write(w)
}

// WorkbookName is the attachment name for a month's payslip workbook.
func WorkbookName(period string) string {
	return "payslips-" + period + ".xlsx"
}
