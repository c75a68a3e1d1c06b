package payrollhandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/audit"
	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
	"schoolhr/internal/platform/metrics"
	"schoolhr/internal/transport/http/api"
	"schoolhr/internal/transport/http/middleware"
	"schoolhr/internal/transport/http/shared"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Handler struct {
	Service    *payroll.Service
	Audit      audit.Recorder
	Perms      middleware.PermissionStore
	Metrics    *metrics.Collector
	SchoolName string
}

func NewHandler(service *payroll.Service, recorder audit.Recorder, perms middleware.PermissionStore, collector *metrics.Collector, schoolName string) *Handler {
	return &Handler{Service: service, Audit: recorder, Perms: perms, Metrics: collector, SchoolName: schoolName}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollExport, h.Perms)).Get("/bank-file", h.handleBankFile)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips", h.handlePayslips)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{employeeID}/pdf", h.handlePayslipPDF)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/adjustments", h.handleListAdjustments)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Put("/adjustments", h.handleSaveAdjustments)
	})
}

type adjustmentPayload struct {
	EmployeeID string          `json:"employeeId" validate:"required,notblank"`
	Category   string          `json:"category" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type adjustmentsRequest struct {
	Month string              `json:"month" validate:"required,month"`
	Lines []adjustmentPayload `json:"lines" validate:"required,min=1,dive"`
}

type adjustmentsResponse struct {
	Period     string               `json:"period"`
	Categories []categoryInfo       `json:"categories"`
	Lines      []payroll.Adjustment `json:"lines"`
}

type categoryInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// monthAndFormat reads the month and format query parameters shared by the
// export routes.
func monthAndFormat(w http.ResponseWriter, r *http.Request, allowed ...string) (calendar.Period, string, bool) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, _ := v.Month("month", r.URL.Query().Get("month"))
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = payroll.FormatJSON
	}
	v.Enum("format", format, allowed, "must be one of "+strings.Join(allowed, ", "))
	if v.Reject(w, requestID) {
		return calendar.Period{}, "", false
	}
	return period, format, true
}

// handleBankFile serves GET /payroll/bank-file?month=&format=json|bank.
func (h *Handler) handleBankFile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	period, format, ok := monthAndFormat(w, r, payroll.FormatJSON, payroll.FormatBank)
	if !ok {
		return
	}

	file, err := h.Service.BankFile(r.Context(), user.SchoolID, period)
	h.Metrics.Derived("bankfile", err)
	if err != nil {
		shared.WriteError(w, requestID, "bank_file_failed", err)
		return
	}
	h.Metrics.BankFileRows(file.Totals.PayableCount, file.Totals.SkippedCount)
	h.record(r, user, audit.ActionBankFileExport, period, map[string]any{"format": format, "totals": file.Totals})

	if format == payroll.FormatBank {
		var buf bytes.Buffer
		if err := payroll.WriteBankFile(&buf, file); err != nil {
			shared.WriteError(w, requestID, "bank_file_failed", err)
			return
		}
		api.Attachment(w, contentTypeText, payroll.BankFileName(file.Period), buf.Bytes())
		return
	}
	api.Success(w, file, requestID)
}

// handlePayslips serves GET /payroll/payslips?month=&employeeId=&format=json|xlsx.
// Account numbers are masked for callers who cannot export bank files.
func (h *Handler) handlePayslips(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	period, format, ok := monthAndFormat(w, r, payroll.FormatJSON, payroll.FormatXLSX)
	if !ok {
		return
	}
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))

	run, err := h.Service.Payslips(r.Context(), user.SchoolID, period, employeeID)
	h.Metrics.Derived("payslips", err)
	if err != nil {
		shared.WriteError(w, requestID, "payslips_failed", err)
		return
	}
	h.redact(r, &run)

	if format == payroll.FormatXLSX {
		var buf bytes.Buffer
		if err := payroll.WritePayslipWorkbook(&buf, run); err != nil {
			shared.WriteError(w, requestID, "payslips_failed", err)
			return
		}
		api.Attachment(w, contentTypeXLSX, payroll.WorkbookName(run.Period), buf.Bytes())
		return
	}
	api.Success(w, run, requestID)
}

// handlePayslipPDF serves GET /payroll/payslips/{employeeID}/pdf?month=.
func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	v := shared.NewValidator()
	period, _ := v.Month("month", r.URL.Query().Get("month"))
	v.Required("employeeID", employeeID, "is required")
	if v.Reject(w, requestID) {
		return
	}

	run, err := h.Service.Payslips(r.Context(), user.SchoolID, period, employeeID)
	h.Metrics.Derived("payslip_pdf", err)
	if err != nil {
		shared.WriteError(w, requestID, "payslip_pdf_failed", err)
		return
	}
	if len(run.Rows) == 0 {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	h.redact(r, &run)

	var buf bytes.Buffer
	if err := payroll.WritePayslipPDF(&buf, h.SchoolName, run.Currency, run.Rows[0]); err != nil {
		shared.WriteError(w, requestID, "payslip_pdf_failed", err)
		return
	}
	api.Attachment(w, contentTypePDF, "payslip-"+run.Period+"-"+employeeID+".pdf", buf.Bytes())
}

// handleListAdjustments serves GET /payroll/adjustments?month=.
func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, _ := v.Month("month", r.URL.Query().Get("month"))
	if v.Reject(w, requestID) {
		return
	}

	lines, err := h.Service.Adjustments(r.Context(), user.SchoolID, period)
	if err != nil {
		shared.WriteError(w, requestID, "adjustments_failed", err)
		return
	}
	api.Success(w, adjustmentsResponse{Period: period.String(), Categories: categories(), Lines: lines}, requestID)
}

// handleSaveAdjustments serves PUT /payroll/adjustments. Lines are upserted
// per employee and category; approved months still accept them.
func (h *Handler) handleSaveAdjustments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload adjustmentsRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	for i, line := range payload.Lines {
		if line.Category != "" && !payroll.IsCategory(line.Category) {
			v.Add("lines["+strconv.Itoa(i)+"].category", "must be a known adjustment category")
		}
		if line.Amount.IsNegative() {
			v.Add("lines["+strconv.Itoa(i)+"].amount", "must not be negative")
		}
	}
	if v.Reject(w, requestID) {
		return
	}
	period, err := shared.ParseMonth(payload.Month)
	if err != nil {
		shared.WriteError(w, requestID, "adjustments_save_failed", err)
		return
	}

	lines := make([]payroll.Adjustment, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, payroll.Adjustment{EmployeeID: line.EmployeeID, Category: line.Category, Amount: line.Amount})
	}
	saved, err := h.Service.SaveAdjustments(r.Context(), user.SchoolID, period, user.UserID, lines)
	if err != nil {
		shared.WriteError(w, requestID, "adjustments_save_failed", err)
		return
	}
	h.record(r, user, audit.ActionAdjustmentsSave, period, saved)
	api.Success(w, adjustmentsResponse{Period: period.String(), Categories: categories(), Lines: saved}, requestID)
}

func (h *Handler) redact(r *http.Request, run *payroll.Run) {
	canExport := middleware.Can(r, h.Perms, auth.PermPayrollExport)
	for i := range run.Rows {
		run.Rows[i].BankAccount = core.RedactBankAccount(run.Rows[i].BankAccount, canExport)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action string, period calendar.Period, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.SchoolID, user.UserID, action, audit.EntityPayrollMonth, period.String(), requestID, shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err, "requestId", requestID)
	}
}

func categories() []categoryInfo {
	out := make([]categoryInfo, 0, len(payroll.CategoryOrder))
	for _, name := range payroll.CategoryOrder {
		out = append(out, categoryInfo{Name: name, Label: payroll.CategoryLabel(name), Type: payroll.CategoryType(name)})
	}
	return out
}
