package db

import (
	"context"
	"time"
)

const driftItemColumns = `
id, public_id, workspace_id, clause_id, variable_id, baseline_value,
baseline_approved_at, current_value, current_modified_at, current_modified_by,
severity, status, approved_by, approved_at, approval_reason, reason_category, created_at
`

func scanDriftItem(row interface{ Scan(dest ...any) error }) (DriftItem, error) {
	var d DriftItem
	err := row.Scan(
		&d.ID, &d.PublicID, &d.WorkspaceID, &d.ClauseID, &d.VariableID,
		&d.BaselineValue, &d.BaselineApprovedAt, &d.CurrentValue,
		&d.CurrentModifiedAt, &d.CurrentModifiedBy, &d.Severity, &d.Status,
		&d.ApprovedBy, &d.ApprovedAt, &d.ApprovalReason, &d.ReasonCategory, &d.CreatedAt,
	)
	return d, err
}

const getDriftItemByID = `
SELECT ` + driftItemColumns + `
FROM drift_items
WHERE id = $1
`

func (q *Queries) GetDriftItemByID(ctx context.Context, id int64) (DriftItem, error) {
	return scanDriftItem(q.db.QueryRow(ctx, getDriftItemByID, id))
}

const listDriftItems = `
SELECT ` + driftItemColumns + `
FROM drift_items d
WHERE d.workspace_id = $1
  AND ($2 = '' OR d.severity = $2)
  AND ($3 = '' OR d.status = $3)
  AND ($4 = '' OR EXISTS (
        SELECT 1 FROM variables v WHERE v.id = d.variable_id AND v.category = $4
  ))
  AND ($5 = '' OR d.current_value ILIKE '%' || $5 || '%'
       OR d.baseline_value ILIKE '%' || $5 || '%'
       OR EXISTS (
            SELECT 1 FROM variables v WHERE v.id = d.variable_id AND v.name ILIKE '%' || $5 || '%'
       ))
ORDER BY d.created_at DESC, d.id DESC
`

type ListDriftItemsParams struct {
	WorkspaceID int64
	Severity    string
	Status      string
	Category    string
	Keyword     string
}

func (q *Queries) ListDriftItems(ctx context.Context, arg ListDriftItemsParams) ([]DriftItem, error) {
	rows, err := q.db.Query(ctx, listDriftItems,
		arg.WorkspaceID, arg.Severity, arg.Status, arg.Category, arg.Keyword,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DriftItem
	for rows.Next() {
		d, err := scanDriftItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const getDriftItemsForVariable = `
SELECT ` + driftItemColumns + `
FROM drift_items
WHERE variable_id = $1
ORDER BY created_at DESC
`

func (q *Queries) GetDriftItemsForVariable(ctx context.Context, variableID int64) ([]DriftItem, error) {
	rows, err := q.db.Query(ctx, getDriftItemsForVariable, variableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DriftItem
	for rows.Next() {
		d, err := scanDriftItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const createDriftItem = `
INSERT INTO drift_items (
    public_id, workspace_id, clause_id, variable_id, baseline_value,
    baseline_approved_at, current_value, current_modified_by, severity
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + driftItemColumns

type CreateDriftItemParams struct {
	PublicID           string
	WorkspaceID        int64
	ClauseID           int64
	VariableID         *int64
	BaselineValue      string
	BaselineApprovedAt *time.Time
	CurrentValue       string
	CurrentModifiedBy  string
	Severity           string
}

func (q *Queries) CreateDriftItem(ctx context.Context, arg CreateDriftItemParams) (DriftItem, error) {
	return scanDriftItem(q.db.QueryRow(ctx, createDriftItem,
		arg.PublicID, arg.WorkspaceID, arg.ClauseID, arg.VariableID,
		arg.BaselineValue, arg.BaselineApprovedAt, arg.CurrentValue,
		arg.CurrentModifiedBy, arg.Severity,
	))
}

const resolveDriftItem = `
UPDATE drift_items
SET status = $2,
    approved_by = $3,
    approved_at = now(),
    approval_reason = $4,
    reason_category = $5
WHERE id = $1 AND status = 'unresolved'
RETURNING ` + driftItemColumns

type ResolveDriftItemParams struct {
	ID             int64
	Status         string
	ApprovedBy     string
	ApprovalReason string
	ReasonCategory *string
}

// ResolveDriftItem moves an unresolved item into a terminal state. The status
// guard makes concurrent resolutions race safely: the loser scans no row.
func (q *Queries) ResolveDriftItem(ctx context.Context, arg ResolveDriftItemParams) (DriftItem, error) {
	return scanDriftItem(q.db.QueryRow(ctx, resolveDriftItem,
		arg.ID, arg.Status, arg.ApprovedBy, arg.ApprovalReason, arg.ReasonCategory,
	))
}

const countUnresolvedHighDrift = `
SELECT count(*)
FROM drift_items
WHERE workspace_id = $1 AND status = 'unresolved' AND severity = 'HIGH'
`

func (q *Queries) CountUnresolvedHighDrift(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countUnresolvedHighDrift, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countUnresolvedDrift = `
SELECT count(*)
FROM drift_items
WHERE workspace_id = $1 AND status = 'unresolved'
`

func (q *Queries) CountUnresolvedDrift(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countUnresolvedDrift, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
