package payroll

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"schoolhr/internal/domain/core"
)

func sampleRun() Run {
	joined := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	return Run{
		Period:      "2024-03",
		WorkingDays: 20,
		Currency:    "INR",
		Rows: []Row{
			{
				EmployeeID:    "e1",
				FullName:      "Jane Doe",
				Designation:   "Teacher",
				Department:    "Science",
				JoiningDate:   &joined,
				Period:        "2024-03",
				WorkingDays:   20,
				PresentDays:   20,
				MonthlySalary: dec("22000"),
				BasePay:       dec("22000"),
				Allowances:    []LineItem{{Category: CategoryHousing, Label: "Housing Allowance", Amount: dec("3000")}},
				Deductions:    []LineItem{{Category: CategoryProvidentFund, Label: "Provident Fund", Amount: dec("1200")}},
				Gross:         dec("25000"),
				Net:           dec("23800"),
				BankAccount:   &core.BankAccount{AccountNumber: "001234567890", RoutingCode: "R1"},
				Payable:       true,
			},
			{EmployeeID: "e2", FullName: "No Bank", Period: "2024-03", Warnings: []string{WarningMissingBank}},
		},
	}
}

func TestDisplayAmountGroupsDigits(t *testing.T) {
	assert.Equal(t, "20,000.00 INR", DisplayAmount(dec("20000"), "INR"))
	assert.Equal(t, "476.19", DisplayAmount(dec("476.19047"), ""))
	assert.Equal(t, "0.00", DisplayAmount(decimal.Zero, ""))
	assert.Equal(t, "-1,234.50", DisplayAmount(dec("-1234.495"), ""))
}

func TestDisplayAmountKeepsDigitsBeyondFloatPrecision(t *testing.T) {
	assert.Equal(t, "9,007,199,254,740,993.01", DisplayAmount(dec("9007199254740993.005"), ""))
}

func TestWritePayslipPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePayslipPDF(&buf, "Green Valley School", "INR", sampleRun().Rows[0]))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePayslipWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePayslipWorkbook(&buf, sampleRun()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(payslipSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, "Housing Allowance", rows[0][9])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "No Bank", rows[2][1])
}
