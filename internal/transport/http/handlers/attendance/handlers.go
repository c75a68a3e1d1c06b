package attendancehandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/audit"
	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/platform/idempotency"
	"schoolhr/internal/platform/metrics"
	"schoolhr/internal/transport/http/api"
	"schoolhr/internal/transport/http/middleware"
	"schoolhr/internal/transport/http/shared"
)

const (
	actionSave    = "save"
	actionApprove = "approve"
)

type Handler struct {
	Service     *attendance.Service
	Audit       audit.Recorder
	Perms       middleware.PermissionStore
	Idempotency idempotency.Store
	Metrics     *metrics.Collector
}

func NewHandler(service *attendance.Service, recorder audit.Recorder, perms middleware.PermissionStore, idem idempotency.Store, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: recorder, Perms: perms, Idempotency: idem, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/report", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/review", h.handleReview)
		r.With(
			middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms),
			middleware.Idempotency(h.Idempotency),
		).Post("/review", h.handleReviewCommand)
	})
}

type correctionPayload struct {
	EmployeeID string `json:"employeeId" validate:"required,notblank"`
	Date       string `json:"date" validate:"required,day"`
	Status     string `json:"status" validate:"required,oneof=present absent half_day leave"`
	InTime     string `json:"inTime" validate:"omitempty,clock"`
	OutTime    string `json:"outTime" validate:"omitempty,clock"`
}

type reviewCommand struct {
	Action      string              `json:"action" validate:"required,oneof=save approve"`
	Month       string              `json:"month" validate:"required,month"`
	Corrections []correctionPayload `json:"corrections" validate:"dive"`
}

type reportResponse struct {
	attendance.Report
	Degraded bool `json:"degraded,omitempty"`
}

type reviewResponse struct {
	attendance.Review
	Degraded bool `json:"degraded,omitempty"`
}

type saveResponse struct {
	Period      string                  `json:"period"`
	State       string                  `json:"state"`
	Saved       int                     `json:"saved"`
	Corrections []attendance.Correction `json:"corrections"`
}

type approveResponse struct {
	Period   string              `json:"period"`
	State    string              `json:"state"`
	Changed  bool                `json:"changed"`
	Approval attendance.Approval `json:"approval"`
	Saved    int                 `json:"saved"`
}

// handleReport serves GET /attendance/report?mode=&month=|date=. A date
// selects its month and narrows late, early and absent events to that day.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	mode := strings.ToLower(strings.TrimSpace(query.Get("mode")))
	if mode == "" {
		mode = attendance.ReportMonthly
	}
	v := shared.NewValidator()
	v.Enum("mode", mode, []string{attendance.ReportMonthly, attendance.ReportLate, attendance.ReportEarly, attendance.ReportAbsent}, "must be one of monthly, late, early, absent")

	var period calendar.Period
	var day *time.Time
	rawDate := strings.TrimSpace(query.Get("date"))
	switch {
	case rawDate != "":
		if parsed, ok := v.Date("date", rawDate); ok {
			d := calendar.Truncate(parsed)
			day = &d
			period = calendar.PeriodOf(d)
		}
	default:
		period, _ = v.Month("month", query.Get("month"))
	}
	if v.Reject(w, requestID) {
		return
	}

	report, err := h.Service.Report(r.Context(), user.SchoolID, mode, period, day)
	if err != nil {
		slog.Warn("attendance report degraded", "err", err, "mode", mode, "period", period.String(), "requestId", requestID)
		empty := attendance.Report{Mode: mode, Period: period.String()}
		if day != nil {
			empty.Date = calendar.DateKey(*day)
		}
		api.Success(w, reportResponse{Report: empty, Degraded: true}, requestID)
		return
	}
	h.Metrics.Reconciled(mode)
	api.Success(w, reportResponse{Report: report}, requestID)
}

// handleReview serves GET /attendance/review?month=.
func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	period, _ := v.Month("month", r.URL.Query().Get("month"))
	if v.Reject(w, requestID) {
		return
	}

	review, err := h.Service.Review(r.Context(), user.SchoolID, period)
	if err != nil {
		slog.Warn("attendance review degraded", "err", err, "period", period.String(), "requestId", requestID)
		empty := attendance.Review{
			Grid:  attendance.Grid{Period: period.String(), Days: []calendar.Day{}, Rows: []attendance.EmployeeRow{}},
			State: attendance.MonthOpen,
		}
		api.Success(w, reviewResponse{Review: empty, Degraded: true}, requestID)
		return
	}
	h.Metrics.Reconciled("review")
	api.Success(w, reviewResponse{Review: review}, requestID)
}

// handleReviewCommand serves POST /attendance/review with action save or
// approve. Approve saves any corrections in the same body first.
func (h *Handler) handleReviewCommand(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	if !ok || strings.TrimSpace(user.UserID) == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload reviewCommand
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	payload.Action = strings.ToLower(strings.TrimSpace(payload.Action))
	if payload.Month == "" {
		payload.Month = r.URL.Query().Get("month")
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if payload.Action == actionSave && len(payload.Corrections) == 0 {
		v.Add("corrections", "must contain at least one correction")
	}
	if v.Reject(w, requestID) {
		return
	}
	period, err := shared.ParseMonth(payload.Month)
	if err != nil {
		shared.WriteError(w, requestID, "review_failed", err)
		return
	}
	corrections, err := toCorrections(payload.Corrections)
	if err != nil {
		shared.WriteError(w, requestID, "review_failed", err)
		return
	}

	switch payload.Action {
	case actionSave:
		h.save(w, r, user, period, corrections)
	case actionApprove:
		if !middleware.Can(r, h.Perms, auth.PermAttendanceApprove) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
			return
		}
		h.approve(w, r, user, period, corrections)
	}
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, user auth.UserContext, period calendar.Period, items []attendance.Correction) {
	requestID := middleware.GetRequestID(r.Context())
	saved, err := h.Service.SaveCorrections(r.Context(), user.SchoolID, period, user.UserID, items)
	if err != nil {
		shared.WriteError(w, requestID, "corrections_save_failed", err)
		return
	}
	h.record(r, user, audit.ActionCorrectionsSave, period, saved)
	api.Success(w, saveResponse{
		Period:      period.String(),
		State:       attendance.MonthOpen,
		Saved:       len(saved),
		Corrections: saved,
	}, requestID)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request, user auth.UserContext, period calendar.Period, trailing []attendance.Correction) {
	requestID := middleware.GetRequestID(r.Context())
	approval, changed, err := h.Service.Approve(r.Context(), user.SchoolID, period, user.UserID, trailing)
	if err != nil {
		shared.WriteError(w, requestID, "month_approve_failed", err)
		return
	}
	h.Metrics.Approved(changed)
	if len(trailing) > 0 {
		h.record(r, user, audit.ActionCorrectionsSave, period, trailing)
	}
	if changed {
		h.record(r, user, audit.ActionMonthApprove, period, approval)
	}
	api.Success(w, approveResponse{
		Period:   period.String(),
		State:    attendance.MonthApproved,
		Changed:  changed,
		Approval: approval,
		Saved:    len(trailing),
	}, requestID)
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action string, period calendar.Period, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.SchoolID, user.UserID, action, audit.EntityAttendanceMonth, period.String(), requestID, shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err, "requestId", requestID)
	}
}

func toCorrections(items []correctionPayload) ([]attendance.Correction, error) {
	out := make([]attendance.Correction, 0, len(items))
	for _, item := range items {
		date, err := shared.ParseDate(strings.TrimSpace(item.Date))
		if err != nil {
			return nil, err
		}
		out = append(out, attendance.Correction{
			EmployeeID: item.EmployeeID,
			Date:       date,
			Status:     item.Status,
			InTime:     item.InTime,
			OutTime:    item.OutTime,
		})
	}
	return out, nil
}
