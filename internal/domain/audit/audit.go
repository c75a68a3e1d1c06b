package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionCorrectionsSave = "attendance.corrections.save"
	ActionMonthApprove    = "attendance.month.approve"
	ActionAdjustmentsSave = "payroll.adjustments.save"
	ActionBankFileExport  = "payroll.bankfile.export"

	EntityAttendanceMonth = "attendance_month"
	EntityPayrollMonth    = "payroll_month"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
}

// Recorder writes audit events. Callers treat failures as best effort.
type Recorder interface {
	Record(ctx context.Context, schoolID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Store interface {
	Recorder
	List(ctx context.Context, schoolID string, filter Filter, limit, offset int) ([]Event, error)
}

var _ Store = (*Service)(nil)

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Marshal encodes before/after snapshots, leaving nil values empty.
func Marshal(before, after any) (json.RawMessage, json.RawMessage, error) {
	var beforeJSON, afterJSON json.RawMessage
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return nil, nil, err
		}
		beforeJSON = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return nil, nil, err
		}
		afterJSON = payload
	}
	return beforeJSON, afterJSON, nil
}

func (s *Service) Record(ctx context.Context, schoolID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	beforeJSON, afterJSON, err := Marshal(before, after)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (school_id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,NULLIF($2,'')::uuid,$3,$4,$5,$6,$7,$8,$9)
  `, schoolID, actorID, action, entityType, entityID, []byte(beforeJSON), []byte(afterJSON), requestID, ip)
	return err
}

func (s *Service) List(ctx context.Context, schoolID string, filter Filter, limit, offset int) ([]Event, error) {
	query := `SELECT id::text, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id,
    COALESCE(request_id, ''), COALESCE(ip, ''), created_at, before_json, after_json
    FROM audit_events WHERE school_id = $1`
	args := []any{schoolID}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &before, &after); err != nil {
			return nil, err
		}
		evt.Before = before
		evt.After = after
		out = append(out, evt)
	}
	return out, rows.Err()
}
