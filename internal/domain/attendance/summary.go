package attendance

import (
	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/calendar"
)

// Summarize aggregates one employee's reconciled days. Only working days are
// counted; flagged punches are expected to be pre-filtered to working days.
func Summarize(statuses []DayStatus, days []calendar.Day, punches []Punch) Summary {
	working := make(map[string]bool, len(days))
	for _, d := range days {
		working[calendar.DateKey(d.Date)] = d.Working()
	}

	summary := Summary{WorkingDays: calendar.WorkingDays(days)}
	for _, st := range statuses {
		if !working[st.Date] {
			continue
		}
		switch st.Status {
		case StatusPresent:
			summary.PresentDays++
		case StatusHalfDay:
			summary.HalfDays++
			summary.PresentDays += HalfDayWeight
		case StatusLeave:
			summary.LeaveDays++
		case StatusAbsent:
			summary.AbsentDays++
		}
	}
	for _, p := range punches {
		if p.Type == PunchIn && p.Late {
			summary.LateCount++
		}
		if p.Type == PunchOut && p.Early {
			summary.EarlyCount++
		}
	}
	summary.Percentage = Percentage(summary.PresentDays, summary.WorkingDays)
	return summary
}

// Percentage is present over working days times 100, 0 when there are no working days.
func Percentage(present, workingDays int) float64 {
	if workingDays <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(present)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(workingDays))).
		Round(2)
	return pct.InexactFloat64()
}
