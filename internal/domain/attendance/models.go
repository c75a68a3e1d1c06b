package attendance

import (
	"time"

	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
)

// ManualEntry is a hand-recorded status for one employee on one day.
type ManualEntry struct {
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	InTime     string    `json:"inTime,omitempty"`
	OutTime    string    `json:"outTime,omitempty"`
}

// Punch is one IN or OUT swipe with lateness flags computed upstream.
type Punch struct {
	EmployeeID string    `json:"employeeId"`
	At         time.Time `json:"at"`
	Type       string    `json:"type"`
	Late       bool      `json:"late"`
	Early      bool      `json:"early"`
}

// Correction is an approved human override for one employee on one day.
type Correction struct {
	EmployeeID  string    `json:"employeeId"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	InTime      string    `json:"inTime,omitempty"`
	OutTime     string    `json:"outTime,omitempty"`
	CorrectedBy string    `json:"correctedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Approval is the month approval record; its presence locks the month.
type Approval struct {
	SchoolID   string    `json:"schoolId"`
	Period     string    `json:"period"`
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// Sources are the raw inputs for one month.
type Sources struct {
	Holidays    []calendar.Holiday
	Manual      []ManualEntry
	Punches     []Punch
	Corrections []Correction
}

// DayStatus is the reconciled status of one employee on one day.
type DayStatus struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	InTime     string `json:"inTime,omitempty"`
	OutTime    string `json:"outTime,omitempty"`
	Source     string `json:"source"`
}

type Summary struct {
	WorkingDays int     `json:"workingDays"`
	PresentDays int     `json:"presentDays"`
	HalfDays    int     `json:"halfDays"`
	LeaveDays   int     `json:"leaveDays"`
	AbsentDays  int     `json:"absentDays"`
	LateCount   int     `json:"lateCount"`
	EarlyCount  int     `json:"earlyCount"`
	Percentage  float64 `json:"percentage"`
}

type EmployeeRow struct {
	EmployeeID string      `json:"employeeId"`
	FullName   string      `json:"fullName"`
	Days       []DayStatus `json:"days"`
	Summary    Summary     `json:"summary"`
}

// Grid is the reconciled month: one row per employee, one status per day.
type Grid struct {
	Period      string         `json:"period"`
	WorkingDays int            `json:"workingDays"`
	Days        []calendar.Day `json:"days"`
	Rows        []EmployeeRow  `json:"rows"`
}

// Review is the grid together with the month's approval state.
type Review struct {
	Grid
	State     string          `json:"state"`
	Approval  *Approval       `json:"approval,omitempty"`
	Employees []core.Employee `json:"-"`
}

// Event is a flagged punch or absent day listed by the late, early and absent reports.
type Event struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Date       string `json:"date"`
	Time       string `json:"time,omitempty"`
}

type MonthlyCount struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Summary
}

type Report struct {
	Mode        string         `json:"mode"`
	Period      string         `json:"period"`
	Date        string         `json:"date,omitempty"`
	WorkingDays int            `json:"workingDays"`
	Counts      []MonthlyCount `json:"counts,omitempty"`
	Events      []Event        `json:"events,omitempty"`
}
