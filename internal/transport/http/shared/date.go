package shared

import (
	"strings"
	"time"

	"schoolhr/internal/domain/calendar"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// ParseMonth parses the month query parameter shared by attendance and payroll routes.
func ParseMonth(value string) (calendar.Period, error) {
	return calendar.ParsePeriod(strings.TrimSpace(value))
}
