package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture() (Grid, []Punch) {
	punches := []Punch{
		{EmployeeID: "e2", Type: PunchIn, At: at(time.March, 7, 9, 25), Late: true},
		{EmployeeID: "e1", Type: PunchIn, At: at(time.March, 7, 9, 15), Late: true},
		{EmployeeID: "e1", Type: PunchOut, At: at(time.March, 7, 14, 0), Early: true},
		{EmployeeID: "e1", Type: PunchIn, At: at(time.March, 8, 8, 55)},
		{EmployeeID: "ghost", Type: PunchIn, At: at(time.March, 8, 9, 30), Late: true},
	}
	grid := Reconcile(march, roster(), Sources{Punches: punches}, time.UTC)
	return grid, punches
}

func TestLateReport(t *testing.T) {
	grid, punches := reportFixture()
	report, err := BuildReport(ReportLate, grid, punches, time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, report.Events, 2)
	assert.Equal(t, Event{EmployeeID: "e2", FullName: "Amit Rao", Date: "2024-03-07", Time: "09:25"}, report.Events[0])
	assert.Equal(t, "Jane Doe", report.Events[1].FullName)
}

func TestEarlyReport(t *testing.T) {
	grid, punches := reportFixture()
	report, err := BuildReport(ReportEarly, grid, punches, time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	assert.Equal(t, "14:00", report.Events[0].Time)
}

func TestAbsentReportForDay(t *testing.T) {
	grid, punches := reportFixture()
	day := date(time.March, 8)
	report, err := BuildReport(ReportAbsent, grid, punches, time.UTC, &day)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", report.Date)
	require.Len(t, report.Events, 1)
	assert.Equal(t, "e2", report.Events[0].EmployeeID)
}

func TestMonthlyReportCounts(t *testing.T) {
	grid, punches := reportFixture()
	report, err := BuildReport(ReportMonthly, grid, punches, time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, report.Counts, 2)
	assert.Equal(t, 2, report.Counts[0].PresentDays)
	assert.Equal(t, 1, report.Counts[0].LateCount)
	assert.Equal(t, 1, report.Counts[0].EarlyCount)
}

func TestReportRejectsUnknownMode(t *testing.T) {
	grid, punches := reportFixture()
	_, err := BuildReport("weekly", grid, punches, time.UTC, nil)
	assert.ErrorIs(t, err, ErrInvalidReportMode)
}
