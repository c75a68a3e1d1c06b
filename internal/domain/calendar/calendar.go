package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	periodLayout = "2006-01"
	dateLayout   = "2006-01-02"
)

var ErrInvalidPeriod = errors.New("month period must be in YYYY-MM format")

// Period identifies one calendar month, the unit of attendance and payroll computation.
type Period struct {
	Year  int
	Month time.Month
}

// Holiday is a declared non-working date.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Day is a single calendar day of a period.
type Day struct {
	Date      time.Time `json:"date"`
	Weekday   string    `json:"weekday"`
	Weekend   bool      `json:"weekend"`
	Holiday   bool      `json:"holiday"`
	HolidayOf string    `json:"holidayName,omitempty"`
}

// Working reports whether the day counts toward attendance and proration.
func (d Day) Working() bool {
	return !d.Weekend && !d.Holiday
}

// ParsePeriod accepts "YYYY-MM".
func ParsePeriod(value string) (Period, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Period{}, ErrInvalidPeriod
	}
	parsed, err := time.Parse(periodLayout, value)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	return Period{Year: parsed.Year(), Month: parsed.Month()}, nil
}

// PeriodOf returns the month period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start is the first day of the month at UTC midnight.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month at UTC midnight.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) DaysInMonth() int {
	return p.End().Day()
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// DateKey normalises a timestamp to its YYYY-MM-DD calendar date.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// Truncate drops the time-of-day component, keeping the wall-clock date in UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports Saturday and Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Month lays out every day of the period and tags weekends and holidays.
// Holidays outside the period are ignored.
func Month(p Period, holidays []Holiday) []Day {
	names := make(map[string]string, len(holidays))
	for _, h := range holidays {
		if !p.Contains(h.Date) {
			continue
		}
		names[DateKey(h.Date)] = h.Name
	}

	n := p.DaysInMonth()
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		date := p.Start().AddDate(0, 0, i)
		name, isHoliday := names[DateKey(date)]
		days = append(days, Day{
			Date:      date,
			Weekday:   date.Weekday().String(),
			Weekend:   IsWeekend(date),
			Holiday:   isHoliday,
			HolidayOf: name,
		})
	}
	return days
}

// WorkingDays is the proration denominator: days that are neither weekend nor holiday.
func WorkingDays(days []Day) int {
	count := 0
	for _, d := range days {
		if d.Working() {
			count++
		}
	}
	return count
}

// CountWorkingDays lays out the month and counts its working days.
func CountWorkingDays(p Period, holidays []Holiday) int {
	return WorkingDays(Month(p, holidays))
}
