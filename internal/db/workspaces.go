package db

import "context"

const getWorkspaceByID = `
SELECT id, public_id, name, last_sync_at, baseline_approved_at, created_at
FROM workspaces
WHERE id = $1
`

func (q *Queries) GetWorkspaceByID(ctx context.Context, id int64) (Workspace, error) {
	row := q.db.QueryRow(ctx, getWorkspaceByID, id)
	var w Workspace
	err := row.Scan(&w.ID, &w.PublicID, &w.Name, &w.LastSyncAt, &w.BaselineApprovedAt, &w.CreatedAt)
	return w, err
}

const isActiveMember = `
SELECT count(*)
FROM workspace_members
WHERE workspace_id = $1 AND user_id = $2 AND active
`

type IsActiveMemberParams struct {
	WorkspaceID int64
	UserID      int64
}

func (q *Queries) IsActiveMember(ctx context.Context, arg IsActiveMemberParams) (int64, error) {
	row := q.db.QueryRow(ctx, isActiveMember, arg.WorkspaceID, arg.UserID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const touchWorkspaceSync = `
UPDATE workspaces
SET last_sync_at = now()
WHERE id = $1
`

func (q *Queries) TouchWorkspaceSync(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, touchWorkspaceSync, id)
	return err
}

const countClauses = `
SELECT count(*) FROM clauses WHERE workspace_id = $1
`

func (q *Queries) CountClauses(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countClauses, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countVariables = `
SELECT count(*) FROM variables WHERE workspace_id = $1
`

func (q *Queries) CountVariables(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countVariables, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
