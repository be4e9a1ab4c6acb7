// Package audit writes the engine's immutable trail. The relational row is
// the durable record; every row is additionally fanned out to the external
// sink's queue on a best-effort basis.
package audit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/clausewise/backend/internal/db"
)

// Event types emitted by the engine.
const (
	EventGraphSync        = "GRAPH_SYNC"
	EventDriftOverride    = "DRIFT_OVERRIDE"
	EventDriftRevert      = "DRIFT_REVERT"
	EventDriftApprove     = "DRIFT_APPROVE"
	EventExportJSON       = "EXPORT_JSON"
	EventPublish          = "PUBLISH"
	EventVariableEdit     = "VARIABLE_EDIT"
	EventClauseEdit       = "CLAUSE_EDIT"
	EventGovernanceUpdate = "GOVERNANCE_UPDATE"
)

// Target types referenced by events.
const (
	TargetWorkspace  = "workspace"
	TargetClause     = "clause"
	TargetVariable   = "variable"
	TargetDriftItem  = "drift_item"
	TargetGovernance = "governance_rules"
)

// Actor is who performed the mutation.
type Actor struct {
	ID   int64
	Name string
}

// Entry is one audit record before persistence. Before/After are marshaled
// as-is; nil means no state snapshot.
type Entry struct {
	WorkspaceID    int64
	EventType      string
	TargetType     string
	TargetID       string
	Before         any
	After          any
	Reason         string
	ReasonCategory string
}

// Record appends one event through the supplied queries handle, so it joins
// whatever transaction the caller is running.
func Record(ctx context.Context, q *db.Queries, actor Actor, e Entry) (db.AuditEvent, error) {
	params := db.InsertAuditEventParams{
		ActorID:   strconv.FormatInt(actor.ID, 10),
		ActorName: actor.Name,
		EventType: e.EventType,
	}
	if e.WorkspaceID != 0 {
		params.WorkspaceID = &e.WorkspaceID
	}
	if e.TargetType != "" {
		params.TargetType = &e.TargetType
	}
	if e.TargetID != "" {
		params.TargetID = &e.TargetID
	}
	if e.Reason != "" {
		params.Reason = &e.Reason
	}
	if e.ReasonCategory != "" {
		params.ReasonCategory = &e.ReasonCategory
	}

	var err error
	if e.Before != nil {
		params.BeforeState, err = json.Marshal(e.Before)
		if err != nil {
			return db.AuditEvent{}, err
		}
	}
	if e.After != nil {
		params.AfterState, err = json.Marshal(e.After)
		if err != nil {
			return db.AuditEvent{}, err
		}
	}

	return q.InsertAuditEvent(ctx, params)
}
