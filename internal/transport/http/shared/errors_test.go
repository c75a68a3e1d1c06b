package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
)

func TestWriteErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("item 0: %w", attendance.ErrInvalidStatus), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("line 2: %w", payroll.ErrInvalidCategory), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("%w: ghost", core.ErrUnknownEmployee), http.StatusBadRequest, "validation_error"},
		{attendance.ErrActorRequired, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("%w: 2024-07", attendance.ErrMonthNotApproved), http.StatusConflict, "month_not_approved"},
		{attendance.ErrMonthLocked, http.StatusConflict, "month_locked"},
		{fmt.Errorf("%w: e9", payroll.ErrEmployeeNotFound), http.StatusNotFound, "employee_not_found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "payroll_failed"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, "req-1", "payroll_failed", tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.True(t, strings.Contains(rec.Body.String(), `"code":"`+tc.code+`"`), rec.Body.String())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "req-1", "review_failed", errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}
