package attendance

import "errors"

var (
	ErrActorRequired     = errors.New("an authenticated approver is required")
	ErrMonthLocked       = errors.New("month is approved; corrections are locked")
	ErrMonthNotApproved  = errors.New("month must be approved before payroll can be generated")
	ErrInvalidStatus     = errors.New("invalid attendance status")
	ErrInvalidReportMode = errors.New("report mode must be monthly, late, early or absent")
	ErrOutsidePeriod     = errors.New("correction date is outside the month")
	ErrEmployeeRequired  = errors.New("correction employee is required")
	ErrInvalidClock      = errors.New("time must be HH:MM")
	ErrInvalidTransition = errors.New("invalid month state transition")
)
