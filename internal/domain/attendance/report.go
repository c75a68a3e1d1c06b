package attendance

import (
	"sort"
	"time"

	"schoolhr/internal/domain/calendar"
)

// BuildReport derives a report from a reconciled grid. When day is set the
// late, early and absent listings are limited to that date.
func BuildReport(mode string, grid Grid, punches []Punch, loc *time.Location, day *time.Time) (Report, error) {
	if !IsReportMode(mode) {
		return Report{}, ErrInvalidReportMode
	}
	if loc == nil {
		loc = time.UTC
	}
	report := Report{Mode: mode, Period: grid.Period, WorkingDays: grid.WorkingDays}
	dayFilter := ""
	if day != nil {
		dayFilter = calendar.DateKey(*day)
		report.Date = dayFilter
	}

	names := make(map[string]string, len(grid.Rows))
	for _, row := range grid.Rows {
		names[row.EmployeeID] = row.FullName
	}
	working := make(map[string]bool, len(grid.Days))
	for _, d := range grid.Days {
		working[calendar.DateKey(d.Date)] = d.Working()
	}

	switch mode {
	case ReportMonthly:
		report.Counts = make([]MonthlyCount, 0, len(grid.Rows))
		for _, row := range grid.Rows {
			report.Counts = append(report.Counts, MonthlyCount{EmployeeID: row.EmployeeID, FullName: row.FullName, Summary: row.Summary})
		}
	case ReportLate, ReportEarly:
		report.Events = []Event{}
		for _, p := range punches {
			if !flagged(mode, p) {
				continue
			}
			name, active := names[p.EmployeeID]
			local := p.At.In(loc)
			date := calendar.DateKey(local)
			if !active || !working[date] || (dayFilter != "" && date != dayFilter) {
				continue
			}
			report.Events = append(report.Events, Event{EmployeeID: p.EmployeeID, FullName: name, Date: date, Time: local.Format(clockLayout)})
		}
	case ReportAbsent:
		report.Events = []Event{}
		for _, row := range grid.Rows {
			for _, st := range row.Days {
				if st.Status != StatusAbsent || (dayFilter != "" && st.Date != dayFilter) {
					continue
				}
				report.Events = append(report.Events, Event{EmployeeID: row.EmployeeID, FullName: row.FullName, Date: st.Date})
			}
		}
	}
	sortEvents(report.Events)
	return report, nil
}

func flagged(mode string, p Punch) bool {
	if mode == ReportLate {
		return p.Type == PunchIn && p.Late
	}
	return p.Type == PunchOut && p.Early
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		if events[i].FullName != events[j].FullName {
			return events[i].FullName < events[j].FullName
		}
		return events[i].Time < events[j].Time
	})
}
