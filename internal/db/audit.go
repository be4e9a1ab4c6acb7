package db

import (
	"context"
	"encoding/json"
)

const insertAuditEvent = `
INSERT INTO audit_events (
    workspace_id, actor_id, actor_name, event_type, target_type, target_id,
    before_state, after_state, reason, reason_category
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, workspace_id, actor_id, actor_name, event_type, target_type,
          target_id, before_state, after_state, reason, reason_category, created_at
`

type InsertAuditEventParams struct {
	WorkspaceID    *int64
	ActorID        string
	ActorName      string
	EventType      string
	TargetType     *string
	TargetID       *string
	BeforeState    json.RawMessage
	AfterState     json.RawMessage
	Reason         *string
	ReasonCategory *string
}

// InsertAuditEvent appends to the audit sink. There is deliberately no update
// or delete counterpart.
func (q *Queries) InsertAuditEvent(ctx context.Context, arg InsertAuditEventParams) (AuditEvent, error) {
	row := q.db.QueryRow(ctx, insertAuditEvent,
		arg.WorkspaceID, arg.ActorID, arg.ActorName, arg.EventType,
		arg.TargetType, arg.TargetID, arg.BeforeState, arg.AfterState,
		arg.Reason, arg.ReasonCategory,
	)
	var e AuditEvent
	err := row.Scan(
		&e.ID, &e.WorkspaceID, &e.ActorID, &e.ActorName, &e.EventType,
		&e.TargetType, &e.TargetID, &e.BeforeState, &e.AfterState,
		&e.Reason, &e.ReasonCategory, &e.CreatedAt,
	)
	return e, err
}

const listAuditEvents = `
SELECT id, workspace_id, actor_id, actor_name, event_type, target_type,
       target_id, before_state, after_state, reason, reason_category, created_at
FROM audit_events
WHERE workspace_id = $1
  AND ($2 = '' OR event_type = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3
`

type ListAuditEventsParams struct {
	WorkspaceID int64
	EventType   string
	Limit       int32
}

func (q *Queries) ListAuditEvents(ctx context.Context, arg ListAuditEventsParams) ([]AuditEvent, error) {
	rows, err := q.db.Query(ctx, listAuditEvents, arg.WorkspaceID, arg.EventType, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(
			&e.ID, &e.WorkspaceID, &e.ActorID, &e.ActorName, &e.EventType,
			&e.TargetType, &e.TargetID, &e.BeforeState, &e.AfterState,
			&e.Reason, &e.ReasonCategory, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
