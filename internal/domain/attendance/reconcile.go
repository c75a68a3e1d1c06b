package attendance

import (
	"time"

	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
)

// DayFacts is everything known about one employee on one day.
type DayFacts struct {
	Day        calendar.Day
	Correction *Correction
	Manual     *ManualEntry
	Punches    []Punch
}

// rule resolves a day when its source applies.
type rule struct {
	source string
	apply  func(DayFacts) (DayStatus, bool)
}

// precedence is evaluated top to bottom; the first rule that applies wins.
var precedence = []rule{
	{SourceHoliday, func(f DayFacts) (DayStatus, bool) {
		return DayStatus{Status: StatusHoliday}, f.Day.Holiday
	}},
	{SourceWeekend, func(f DayFacts) (DayStatus, bool) {
		return DayStatus{Status: StatusWeekOff}, f.Day.Weekend
	}},
	{SourceCorrection, func(f DayFacts) (DayStatus, bool) {
		if f.Correction == nil {
			return DayStatus{}, false
		}
		return DayStatus{Status: f.Correction.Status, InTime: f.Correction.InTime, OutTime: f.Correction.OutTime}, true
	}},
	{SourceManual, func(f DayFacts) (DayStatus, bool) {
		if f.Manual == nil {
			return DayStatus{}, false
		}
		return DayStatus{Status: f.Manual.Status, InTime: f.Manual.InTime, OutTime: f.Manual.OutTime}, true
	}},
	{SourcePunch, resolvePunches},
	{SourceDefault, func(DayFacts) (DayStatus, bool) {
		return DayStatus{Status: StatusAbsent}, true
	}},
}

// ResolveDay applies the precedence table to one employee-day.
func ResolveDay(employeeID string, facts DayFacts) DayStatus {
	for _, r := range precedence {
		status, ok := r.apply(facts)
		if !ok {
			continue
		}
		status.EmployeeID = employeeID
		status.Date = calendar.DateKey(facts.Day.Date)
		status.Source = r.source
		return status
	}
	// unreachable: the default rule always applies
	return DayStatus{EmployeeID: employeeID, Date: calendar.DateKey(facts.Day.Date), Status: StatusAbsent, Source: SourceDefault}
}

// resolvePunches marks the day present when an IN punch exists. The earliest
// IN gives the in-time and the latest OUT at or after it gives the out-time.
func resolvePunches(f DayFacts) (DayStatus, bool) {
	var in, out *Punch
	for i := range f.Punches {
		p := &f.Punches[i]
		if p.Type == PunchIn && (in == nil || p.At.Before(in.At)) {
			in = p
		}
	}
	if in == nil {
		return DayStatus{}, false
	}
	for i := range f.Punches {
		p := &f.Punches[i]
		if p.Type != PunchOut || p.At.Before(in.At) {
			continue
		}
		if out == nil || p.At.After(out.At) {
			out = p
		}
	}
	status := DayStatus{Status: StatusPresent, InTime: in.At.Format(clockLayout)}
	if out != nil {
		status.OutTime = out.At.Format(clockLayout)
	}
	return status, true
}

type dayKey struct {
	employeeID string
	date       string
}

// index groups month sources by employee and calendar date.
type index struct {
	loc         *time.Location
	corrections map[dayKey]Correction
	manual      map[dayKey]ManualEntry
	punches     map[dayKey][]Punch
}

func newIndex(src Sources, loc *time.Location) *index {
	if loc == nil {
		loc = time.UTC
	}
	idx := &index{
		loc:         loc,
		corrections: make(map[dayKey]Correction, len(src.Corrections)),
		manual:      make(map[dayKey]ManualEntry, len(src.Manual)),
		punches:     make(map[dayKey][]Punch),
	}
	for _, c := range src.Corrections {
		idx.corrections[dayKey{c.EmployeeID, calendar.DateKey(c.Date)}] = c
	}
	for _, m := range src.Manual {
		idx.manual[dayKey{m.EmployeeID, calendar.DateKey(m.Date)}] = m
	}
	for _, p := range src.Punches {
		local := p
		local.At = p.At.In(loc)
		key := dayKey{p.EmployeeID, calendar.DateKey(local.At)}
		idx.punches[key] = append(idx.punches[key], local)
	}
	return idx
}

func (idx *index) facts(employeeID string, day calendar.Day) DayFacts {
	key := dayKey{employeeID, calendar.DateKey(day.Date)}
	facts := DayFacts{Day: day, Punches: idx.punches[key]}
	if c, ok := idx.corrections[key]; ok {
		facts.Correction = &c
	}
	if m, ok := idx.manual[key]; ok {
		facts.Manual = &m
	}
	return facts
}

// reconcileEmployee produces exactly one status per calendar day for emp.
func (idx *index) reconcileEmployee(emp core.Employee, days []calendar.Day) EmployeeRow {
	row := EmployeeRow{EmployeeID: emp.ID, FullName: emp.FullName, Days: make([]DayStatus, 0, len(days))}
	for _, day := range days {
		row.Days = append(row.Days, ResolveDay(emp.ID, idx.facts(emp.ID, day)))
	}
	row.Summary = Summarize(row.Days, days, idx.flaggedPunches(emp.ID, days))
	return row
}

// flaggedPunches returns the employee's punches falling on working days.
func (idx *index) flaggedPunches(employeeID string, days []calendar.Day) []Punch {
	var out []Punch
	for _, day := range days {
		if !day.Working() {
			continue
		}
		out = append(out, idx.punches[dayKey{employeeID, calendar.DateKey(day.Date)}]...)
	}
	return out
}

// Reconcile builds the full month grid. It is a pure function of its inputs
// and never fails: missing source rows resolve to absent.
func Reconcile(period calendar.Period, employees []core.Employee, src Sources, loc *time.Location) Grid {
	days := calendar.Month(period, src.Holidays)
	idx := newIndex(src, loc)
	grid := Grid{
		Period:      period.String(),
		WorkingDays: calendar.WorkingDays(days),
		Days:        days,
		Rows:        make([]EmployeeRow, 0, len(employees)),
	}
	for _, emp := range employees {
		grid.Rows = append(grid.Rows, idx.reconcileEmployee(emp, days))
	}
	return grid
}
