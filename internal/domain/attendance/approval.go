package attendance

import (
	"strings"
	"time"
)

// StateOf maps an approval record to the month state.
func StateOf(a *Approval) string {
	if a == nil {
		return MonthOpen
	}
	return MonthApproved
}

// Approve is the single transition of the month state machine, Open to
// Approved. Approving an approved month returns the existing record unchanged
// and reports changed=false.
func Approve(existing *Approval, schoolID, period, actor string, now time.Time) (Approval, bool, error) {
	if strings.TrimSpace(actor) == "" {
		return Approval{}, false, ErrActorRequired
	}
	switch StateOf(existing) {
	case MonthApproved:
		return *existing, false, nil
	case MonthOpen:
		return Approval{
			SchoolID:   schoolID,
			Period:     period,
			ApprovedBy: actor,
			ApprovedAt: now.UTC(),
		}, true, nil
	}
	return Approval{}, false, ErrInvalidTransition
}

// CanCorrect reports whether corrections may still be written.
func CanCorrect(existing *Approval) error {
	if StateOf(existing) == MonthApproved {
		return ErrMonthLocked
	}
	return nil
}
