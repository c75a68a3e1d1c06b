package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
	"schoolhr/internal/transport/http/api"
)

var validationErrors = []error{
	calendar.ErrInvalidPeriod,
	attendance.ErrInvalidStatus,
	attendance.ErrInvalidReportMode,
	attendance.ErrOutsidePeriod,
	attendance.ErrEmployeeRequired,
	attendance.ErrInvalidClock,
	core.ErrUnknownEmployee,
	payroll.ErrInvalidCategory,
	payroll.ErrNegativeAmount,
	payroll.ErrEmployeeRequired,
	payroll.ErrInvalidFormat,
}

// WriteError maps domain errors onto the response taxonomy. Anything it does
// not recognise is logged and reported as a 500 with the given code.
func WriteError(w http.ResponseWriter, requestID, internalCode string, err error) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
			return
		}
	}
	switch {
	case errors.Is(err, attendance.ErrActorRequired):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", err.Error(), requestID)
	case errors.Is(err, attendance.ErrMonthNotApproved):
		api.Fail(w, http.StatusConflict, "month_not_approved", err.Error(), requestID)
	case errors.Is(err, attendance.ErrMonthLocked):
		api.Fail(w, http.StatusConflict, "month_locked", err.Error(), requestID)
	case errors.Is(err, attendance.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, payroll.ErrEmployeeNotFound), errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", err.Error(), requestID)
	default:
		slog.Error("request failed", "err", err, "code", internalCode, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, internalCode, "internal error", requestID)
	}
}
