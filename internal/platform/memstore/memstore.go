// Package memstore is a process-local implementation of every domain store,
// used by the memory driver and by tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/audit"
	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/calendar"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
)

var (
	_ core.StoreAPI       = (*Store)(nil)
	_ attendance.StoreAPI = (*Store)(nil)
	_ payroll.StoreAPI    = (*Store)(nil)
	_ auth.StoreAPI       = (*Store)(nil)
	_ audit.Store         = (*Store)(nil)
)

type correctionKey struct {
	schoolID, employeeID, date string
}

type adjustmentKey struct {
	schoolID, employeeID, period, category string
}

type approvalKey struct {
	schoolID, period string
}

type Store struct {
	mu          sync.RWMutex
	employees   map[string][]core.Employee
	holidays    map[string][]calendar.Holiday
	manual      map[string][]attendance.ManualEntry
	punches     map[string][]attendance.Punch
	corrections map[correctionKey]attendance.Correction
	approvals   map[approvalKey]attendance.Approval
	adjustments map[adjustmentKey]payroll.Adjustment
	users       map[string]auth.User
	events      map[string][]audit.Event
}

func New() *Store {
	return &Store{
		employees:   map[string][]core.Employee{},
		holidays:    map[string][]calendar.Holiday{},
		manual:      map[string][]attendance.ManualEntry{},
		punches:     map[string][]attendance.Punch{},
		corrections: map[correctionKey]attendance.Correction{},
		approvals:   map[approvalKey]attendance.Approval{},
		adjustments: map[adjustmentKey]payroll.Adjustment{},
		users:       map[string]auth.User{},
		events:      map[string][]audit.Event{},
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) AddEmployee(schoolID string, emp core.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emp.Status == "" {
		emp.Status = core.StatusActive
	}
	s.employees[schoolID] = append(s.employees[schoolID], emp)
}

func (s *Store) AddHoliday(schoolID string, h calendar.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Date = calendar.Truncate(h.Date)
	s.holidays[schoolID] = append(s.holidays[schoolID], h)
}

func (s *Store) AddManualEntry(schoolID string, m attendance.ManualEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.Date = calendar.Truncate(m.Date)
	s.manual[schoolID] = append(s.manual[schoolID], m)
}

func (s *Store) AddPunch(schoolID string, p attendance.Punch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.punches[schoolID] = append(s.punches[schoolID], p)
}

func (s *Store) AddUser(user auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(user.Email)] = user
}

func (s *Store) ListActiveEmployees(_ context.Context, schoolID string) ([]core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Employee
	for _, emp := range s.employees[schoolID] {
		if emp.Status == core.StatusActive {
			out = append(out, emp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, schoolID, employeeID string) (*core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, emp := range s.employees[schoolID] {
		if emp.ID == employeeID {
			out := emp
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrEmployeeNotFound, employeeID)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *Store) ListHolidays(_ context.Context, schoolID string, from, to time.Time) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []calendar.Holiday
	for _, h := range s.holidays[schoolID] {
		if inRange(h.Date, from, to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) ListManualEntries(_ context.Context, schoolID string, from, to time.Time) ([]attendance.ManualEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.ManualEntry
	for _, m := range s.manual[schoolID] {
		if inRange(m.Date, from, to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ListPunches(_ context.Context, schoolID string, from, to time.Time) ([]attendance.Punch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Punch
	for _, p := range s.punches[schoolID] {
		if inRange(p.At, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListCorrections(_ context.Context, schoolID string, from, to time.Time) ([]attendance.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Correction
	for key, c := range s.corrections {
		if key.schoolID == schoolID && inRange(c.Date, from, to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpsertCorrections(_ context.Context, schoolID string, items []attendance.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range items {
		s.corrections[correctionKey{schoolID, c.EmployeeID, calendar.DateKey(c.Date)}] = c
	}
	return nil
}

func (s *Store) GetApproval(_ context.Context, schoolID, period string) (*attendance.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approvals[approvalKey{schoolID, period}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) InsertApproval(_ context.Context, approval attendance.Approval) (attendance.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := approvalKey{approval.SchoolID, approval.Period}
	if existing, ok := s.approvals[key]; ok {
		return existing, nil
	}
	s.approvals[key] = approval
	return approval, nil
}

func (s *Store) ListAdjustments(_ context.Context, schoolID, period string) ([]payroll.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payroll.Adjustment
	for key, line := range s.adjustments {
		if key.schoolID == schoolID && key.period == period {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) UpsertAdjustments(_ context.Context, schoolID string, lines []payroll.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		s.adjustments[adjustmentKey{schoolID, line.EmployeeID, line.Period, line.Category}] = line
	}
	return nil
}

func (s *Store) FindActiveUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) UpdateLastLogin(context.Context, string) error {
	return nil
}

func (s *Store) Record(_ context.Context, schoolID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	beforeJSON, afterJSON, err := audit.Marshal(before, after)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[schoolID] = append(s.events[schoolID], audit.Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		IP:         ip,
		CreatedAt:  time.Now().UTC(),
		Before:     beforeJSON,
		After:      afterJSON,
	})
	return nil
}

// List returns matching events newest first.
func (s *Store) List(_ context.Context, schoolID string, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[schoolID]
	var out []audit.Event
	for i := len(events) - 1; i >= 0; i-- {
		evt := events[i]
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && evt.EntityID != filter.EntityID {
			continue
		}
		out = append(out, evt)
	}
	if offset >= len(out) {
		return []audit.Event{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
