package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePayslipPDF renders a single payslip.
func WritePayslipPDF(w io.Writer, schoolName, currency string, row Row) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, schoolName)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Payslip "+row.Period)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	detail := func(label, value string) {
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	detail("Employee", row.FullName)
	detail("Designation", row.Designation)
	detail("Department", row.Department)
	if row.JoiningDate != nil {
		detail("Joining date", row.JoiningDate.Format("2006-01-02"))
	}
	detail("Working days", fmt.Sprintf("%d", row.WorkingDays))
	detail("Present days", fmt.Sprintf("%d", row.PresentDays))
	if row.BankAccount != nil {
		detail("Bank", row.BankAccount.BankName)
		detail("Account", row.BankAccount.AccountNumber)
	}
	pdf.Ln(5)

	amount := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(110, 7, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, value, "B", 1, "R", false, 0, "")
	}
	amount("Monthly salary", DisplayAmount(row.MonthlySalary, currency), false)
	amount("Base pay (prorated)", DisplayAmount(row.BasePay, currency), false)
	for _, item := range row.Allowances {
		amount(item.Label, DisplayAmount(item.Amount, currency), false)
	}
	amount("Gross pay", DisplayAmount(row.Gross, currency), true)
	for _, item := range row.Deductions {
		amount(item.Label, "-"+DisplayAmount(item.Amount, currency), false)
	}
	amount("Total deductions", DisplayAmount(row.TotalDeductions, currency), false)
	amount("Net pay", DisplayAmount(row.Net, currency), true)

	return pdf.Output(w)
}
