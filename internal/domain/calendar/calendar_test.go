package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, time.March, p.Month)
	assert.Equal(t, "2024-03", p.String())
	assert.Equal(t, date(2024, 3, 1), p.Start())
	assert.Equal(t, date(2024, 3, 31), p.End())
}

func TestParsePeriodRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "2024", "2024-13", "03-2024", "2024-03-01", "abcd-ef"} {
		_, err := ParsePeriod(raw)
		assert.ErrorIs(t, err, ErrInvalidPeriod, raw)
	}
}

func TestMonthTagsWeekendsAndHolidays(t *testing.T) {
	p := Period{Year: 2024, Month: time.March}
	days := Month(p, []Holiday{
		{Date: date(2024, 3, 5), Name: "Founders Day"},
		{Date: date(2024, 4, 1), Name: "Next month"},
	})

	require.Len(t, days, 31)
	assert.True(t, days[1].Weekend, "2024-03-02 is a Saturday")
	assert.True(t, days[2].Weekend, "2024-03-03 is a Sunday")
	assert.True(t, days[4].Holiday)
	assert.Equal(t, "Founders Day", days[4].HolidayOf)
	assert.False(t, days[4].Working())
	assert.True(t, days[0].Working())
}

func TestWorkingDaysIsCalendarMinusWeekendMinusWeekdayHolidays(t *testing.T) {
	// March 2024 starts on a Friday: 5 Saturdays and 5 Sundays.
	march := Period{Year: 2024, Month: time.March}
	assert.Equal(t, 21, CountWorkingDays(march, nil))
	assert.Equal(t, 20, CountWorkingDays(march, []Holiday{{Date: date(2024, 3, 5)}}))

	// July 2024 has 4 Saturdays and 4 Sundays; one Tuesday holiday leaves 22.
	july := Period{Year: 2024, Month: time.July}
	assert.Equal(t, 22, CountWorkingDays(july, []Holiday{{Date: date(2024, 7, 2)}}))
}

func TestHolidayOnWeekendDoesNotReduceWorkingDays(t *testing.T) {
	july := Period{Year: 2024, Month: time.July}
	assert.Equal(t, 23, CountWorkingDays(july, []Holiday{{Date: date(2024, 7, 6)}}))
}

func TestWorkingDaysNeverNegative(t *testing.T) {
	feb := Period{Year: 2026, Month: time.February}
	var holidays []Holiday
	for _, d := range Month(feb, nil) {
		holidays = append(holidays, Holiday{Date: d.Date})
	}
	assert.Equal(t, 0, CountWorkingDays(feb, holidays))
}
