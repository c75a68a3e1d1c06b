package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveOpenMonth(t *testing.T) {
	now := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	rec, changed, err := Approve(nil, "s1", "2024-03", "u-principal", now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Approval{SchoolID: "s1", Period: "2024-03", ApprovedBy: "u-principal", ApprovedAt: now}, rec)
	assert.Equal(t, MonthApproved, StateOf(&rec))
}

func TestApproveTwiceKeepsFirstRecord(t *testing.T) {
	first := Approval{SchoolID: "s1", Period: "2024-03", ApprovedBy: "u-1", ApprovedAt: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)}
	rec, changed, err := Approve(&first, "s1", "2024-03", "u-2", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, rec)
}

func TestApproveRequiresActor(t *testing.T) {
	_, _, err := Approve(nil, "s1", "2024-03", "  ", time.Now())
	assert.ErrorIs(t, err, ErrActorRequired)
}

func TestCorrectionsLockedAfterApproval(t *testing.T) {
	assert.NoError(t, CanCorrect(nil))
	assert.ErrorIs(t, CanCorrect(&Approval{Period: "2024-03"}), ErrMonthLocked)
	assert.Equal(t, MonthOpen, StateOf(nil))
}
