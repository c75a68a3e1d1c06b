package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/audit"
	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
	"schoolhr/internal/platform/memstore"
	"schoolhr/internal/transport/http/middleware"
)

const (
	secret = "test-secret"
	school = "school-1"
)

var july = calendar.Period{Year: 2024, Month: time.July}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type fixture struct {
	store      *memstore.Store
	attendance *attendance.Service
	router     http.Handler
}

// newFixture seeds July 2024 with a Tuesday holiday: Jane is present on 20 of
// 22 working days and has a bank account, Amit is present every day without one.
func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memstore.New()
	holiday := calendar.Holiday{Date: time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), Name: "Founders Day"}
	store.AddHoliday(school, holiday)
	store.AddEmployee(school, core.Employee{
		ID:          "e1",
		FullName:    "Jane Doe",
		Salary:      decimal.NewFromInt(22000),
		BankAccount: &core.BankAccount{AccountNumber: "001234567890", RoutingCode: "SCHL0000123", HolderName: "Jane Doe"},
	})
	store.AddEmployee(school, core.Employee{ID: "e2", FullName: "Amit Rao", Salary: decimal.NewFromInt(15000)})

	present := 0
	for _, d := range calendar.Month(july, []calendar.Holiday{holiday}) {
		if !d.Working() {
			continue
		}
		if present < 20 {
			store.AddManualEntry(school, attendance.ManualEntry{EmployeeID: "e1", Date: d.Date, Status: attendance.StatusPresent})
			present++
		}
		store.AddManualEntry(school, attendance.ManualEntry{EmployeeID: "e2", Date: d.Date, Status: attendance.StatusPresent})
	}

	now := func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }
	att := attendance.NewService(store, store)
	att.WithNow(now)
	pay := payroll.NewService(store, att)
	pay.Title = "Salary Bank Transfer"
	pay.Currency = "INR"
	pay.WithNow(now)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	NewHandler(pay, store, auth.StaticPermissions{}, nil, "Greenfield School").RegisterRoutes(r)
	return fixture{store: store, attendance: att, router: r}
}

func (f fixture) approve(t *testing.T) {
	t.Helper()
	_, _, err := f.attendance.Approve(context.Background(), school, july, "u-principal", nil)
	require.NoError(t, err)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(secret, auth.Claims{UserID: "u-" + role, SchoolID: school, RoleName: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, router http.Handler, method, target, tok, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestPayrollRejectsOpenMonth(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{
		"/payroll/payslips?month=2024-07",
		"/payroll/bank-file?month=2024-07",
		"/payroll/bank-file?month=2024-07&format=bank",
	} {
		rec := do(t, f.router, http.MethodGet, target, token(t, auth.RoleAdmin), "")
		require.Equal(t, http.StatusConflict, rec.Code, target)
		assert.Equal(t, "month_not_approved", decode(t, rec).Error.Code)
	}
}

func TestPayslipsProrateAndMaskAccounts(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07", token(t, auth.RolePrincipal), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var run payroll.Run
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &run))
	require.Len(t, run.Rows, 2)
	assert.Equal(t, 22, run.WorkingDays)

	byID := map[string]payroll.Row{}
	for _, row := range run.Rows {
		byID[row.EmployeeID] = row
	}
	assert.True(t, decimal.NewFromInt(20000).Equal(byID["e1"].Net), byID["e1"].Net.String())
	assert.True(t, decimal.NewFromInt(15000).Equal(byID["e2"].Net), byID["e2"].Net.String())
	require.NotNil(t, byID["e1"].BankAccount)
	assert.Equal(t, "********7890", byID["e1"].BankAccount.AccountNumber)
	assert.False(t, byID["e2"].Payable)
}

func TestPayslipsShowFullAccountToExporters(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07&employeeId=e1", token(t, auth.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run payroll.Run
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &run))
	require.Len(t, run.Rows, 1)
	assert.Equal(t, "001234567890", run.Rows[0].BankAccount.AccountNumber)
}

func TestPayslipsUnknownEmployee(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07&employeeId=e9", token(t, auth.RoleAdmin), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "employee_not_found", decode(t, rec).Error.Code)
}

func TestPayslipsRejectUnknownFormat(t *testing.T) {
	f := newFixture(t)
	rec := do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07&format=csv", token(t, auth.RoleAdmin), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec).Error.Code)
}

func TestPayslipWorkbookAndPDF(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07&format=xlsx", token(t, auth.RoleAdmin), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), payroll.WorkbookName("2024-07"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, f.router, http.MethodGet, "/payroll/payslips/e1/pdf?month=2024-07", token(t, auth.RoleAdmin), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypePDF, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestBankFileSplitsRoster(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/bank-file?month=2024-07", token(t, auth.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var file payroll.BankFile
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &file))
	assert.Equal(t, 1, file.Totals.PayableCount)
	assert.Equal(t, 1, file.Totals.SkippedCount)
	require.Len(t, file.Skipped, 1)
	assert.Equal(t, "e2", file.Skipped[0].EmployeeID)
}

func TestBankFileDownload(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	rec := do(t, f.router, http.MethodGet, "/payroll/bank-file?month=2024-07&format=bank", token(t, auth.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="bank-transfer-2024-07.txt"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Salary Bank Transfer", lines[0])
	assert.Equal(t, "Month: 2024-07", lines[2])
	assert.Equal(t, payroll.BankFileColumns, lines[3])
	assert.Equal(t, "001234567890|SCHL0000123|Jane Doe|20000.00|Salary 2024-07 - Jane Doe", lines[4])

	events, err := f.store.List(context.Background(), school, audit.Filter{Action: audit.ActionBankFileExport}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestBankFileRequiresExportPermission(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	rec := do(t, f.router, http.MethodGet, "/payroll/bank-file?month=2024-07", token(t, auth.RolePrincipal), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveAdjustmentsFeedsPayroll(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	accountant := token(t, auth.RoleAccountant)

	body := `{"month":"2024-07","lines":[
		{"employeeId":"e1","category":"housing","amount":"1000"},
		{"employeeId":"e1","category":"provident_fund","amount":"400"},
		{"employeeId":"e1","category":"housing","amount":"1500"}
	]}`
	rec := do(t, f.router, http.MethodPut, "/payroll/adjustments", accountant, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved adjustmentsResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &saved))
	require.Len(t, saved.Lines, 2)
	assert.Len(t, saved.Categories, len(payroll.CategoryOrder))

	rec = do(t, f.router, http.MethodGet, "/payroll/adjustments?month=2024-07", accountant, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed adjustmentsResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &listed))
	assert.Len(t, listed.Lines, 2)

	rec = do(t, f.router, http.MethodGet, "/payroll/payslips?month=2024-07&employeeId=e1", accountant, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run payroll.Run
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &run))
	require.Len(t, run.Rows, 1)
	assert.True(t, decimal.NewFromInt(21100).Equal(run.Rows[0].Net), run.Rows[0].Net.String())
}

func TestSaveAdjustmentsValidation(t *testing.T) {
	f := newFixture(t)
	accountant := token(t, auth.RoleAccountant)

	cases := []string{
		`{"month":"2024-07","lines":[]}`,
		`{"month":"2024-13","lines":[{"employeeId":"e1","category":"housing","amount":"1"}]}`,
		`{"month":"2024-07","lines":[{"employeeId":"e1","category":"bonus","amount":"1"}]}`,
		`{"month":"2024-07","lines":[{"employeeId":"e1","category":"housing","amount":"-5"}]}`,
		`{"month":"2024-07","lines":[{"employeeId":" ","category":"housing","amount":"5"}]}`,
		`{"month":"2024-07","lines":[{"employeeId":"ghost","category":"housing","amount":"5"}]}`,
	}
	for _, body := range cases {
		rec := do(t, f.router, http.MethodPut, "/payroll/adjustments", accountant, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := do(t, f.router, http.MethodPut, "/payroll/adjustments", token(t, auth.RolePrincipal), `{"month":"2024-07","lines":[{"employeeId":"e1","category":"housing","amount":"5"}]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
