package attendance

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half_day"
	StatusLeave   = "leave"
	StatusHoliday = "holiday"
	StatusWeekOff = "week_off"
)

// Provenance of a reconciled day.
const (
	SourceHoliday    = "holiday"
	SourceWeekend    = "weekend"
	SourceCorrection = "correction"
	SourceManual     = "manual"
	SourcePunch      = "punch"
	SourceDefault    = "default"
)

const (
	PunchIn  = "IN"
	PunchOut = "OUT"
)

const (
	MonthOpen     = "open"
	MonthApproved = "approved"
)

const (
	ReportMonthly = "monthly"
	ReportLate    = "late"
	ReportEarly   = "early"
	ReportAbsent  = "absent"
)

// HalfDayWeight is how many present days a half-day contributes.
// Changing it changes paid amounts.
const HalfDayWeight = 1

const clockLayout = "15:04"

// RecordedStatuses are the statuses a manual entry or correction may carry.
var RecordedStatuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave}

func IsRecordedStatus(status string) bool {
	for _, s := range RecordedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsReportMode(mode string) bool {
	switch mode {
	case ReportMonthly, ReportLate, ReportEarly, ReportAbsent:
		return true
	}
	return false
}
